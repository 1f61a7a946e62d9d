package lineage

// goTypes maps pipeline column data types to Go types.
var goTypes = map[string]string{
	"i1":                "int8",
	"i2":                "int16",
	"i4":                "int32",
	"i8":                "int64",
	"ui1":               "uint8",
	"ui2":               "uint16",
	"ui4":               "uint32",
	"ui8":               "uint64",
	"r4":                "float32",
	"r8":                "float64",
	"cy":                "float64",
	"numeric":           "float64",
	"decimal":           "float64",
	"bool":              "bool",
	"str":               "string",
	"wstr":              "string",
	"text":              "string",
	"ntext":             "string",
	"guid":              "string",
	"date":              "time.Time",
	"dbDate":            "time.Time",
	"dbTime":            "time.Time",
	"dbTime2":           "time.Time",
	"dbTimeStamp":       "time.Time",
	"dbTimeStamp2":      "time.Time",
	"dbTimeStampOffset": "time.Time",
	"bytes":             "[]byte",
	"image":             "[]byte",
}

// GoType returns the Go type for a pipeline data type. Unknown types map to
// "any" with ok false.
func GoType(dataType string) (goType string, ok bool) {
	if t, ok := goTypes[dataType]; ok {
		return t, true
	}
	return "any", false
}
