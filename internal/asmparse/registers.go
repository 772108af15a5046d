package asmparse

import "strings"

// registerWidths maps every register alias (case folded to upper) to whether it names a whole
// 16-bit register (true) or an 8-bit half (false).
var registerWidths = map[string]bool{
	"AX": true, "BX": true, "CX": true, "DX": true, "EX": true,
	"AH": false, "AL": false,
	"BH": false, "BL": false,
	"CH": false, "CL": false,
	"DH": false, "DL": false,
	"EH": false, "EL": false,
}

// IsRegister reports whether name (any case) is one of the fifteen register aliases.
func IsRegister(name string) bool {
	_, ok := registerWidths[strings.ToUpper(name)]
	return ok
}

// Is16Bit reports whether name is a whole-register alias rather than an 8-bit half. Callers must
// check IsRegister first.
func Is16Bit(name string) bool {
	return registerWidths[strings.ToUpper(name)]
}
