package config

// defaultCourseIDs lists the course calendar feeds known for the
// Friedrichshafen campus. The set is fixed per semester; unknown ids
// simply fail to fetch and drop out of the aggregation.
func defaultCourseIDs() []string {
	return []string{
		"FN-TEA22", "FN-TEA23", "FN-TEA23A", "FN-TEA23B", "FN-TEA24A", "FN-TEA24B",
		"FN-TEA25", "FN-TEA25A", "FN-TEA25B",
		"FN-TEU22", "FN-TEU23", "FN-TEU24", "FN-TEU25",
		"FN-TFE22-1", "FN-TFE22-2", "FN-TFE23-1", "FN-TFE23-2", "FN-TFE24-1",
		"FN-TFE24-2", "FN-TFE25-1", "FN-TFE25-2",
		"FN-TEN22", "FN-TEN23", "FN-TEN24", "FN-TEN25",
		"FN-TEK22", "FN-TEK23", "FN-TEK24", "FN-TEK25",
		"FN-TSL22", "FN-TSL23", "FN-TSL24", "FN-TSL25",
		"FN-TSA22", "FN-TSA23", "FN-TSA24", "FN-TSA25",
		"FN-TIA25",
		"FN-TIT22", "FN-TIT23", "FN-TIT24",
		"FN-TIS22", "FN-TIS23", "FN-TIS24", "FN-TIS25",
		"FN-TIK22", "FN-TIK23", "FN-TIK24", "FN-TIK25",
		"FN-TIM20", "FN-TIM22", "FN-TIM23", "FN-TIM24",
		"FN-TLE22", "FN-TLE23", "FN-TLE24", "FN-TLE25",
		"FN-TLS22", "FN-TLS24", "FN-TLS25",
		"FN-TMA23", "FN-TMA24", "FN-TMA25",
		"FN-TFS22", "FN-TFS23", "FN-TFS24", "FN-TFS25",
		"FN-TMK22-1", "FN-TMK22-2", "FN-TMK23-1", "FN-TMK23-2", "FN-TMK24-1",
		"FN-TMK24-2", "FN-TMK25-1", "FN-TMK25-2",
		"FN-TML22", "FN-TML23",
		"FN-TMM22", "FN-TMM23",
		"FN-TMP22", "FN-TMP23", "FN-TMP24", "FN-TMP25",
		"FN-TMT24", "FN-TMT25",
		"FN-TWE22", "FN-TWE23", "FN-TWE24", "FN-TWE25",
		"FN-TWI22-1", "FN-TWI22-2", "FN-TWI23-1", "FN-TWI23-2", "FN-TWI24-1",
		"FN-TWI24-2", "FN-TWI25-1", "FN-TWI25-2",
	}
}
