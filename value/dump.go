package value

import "github.com/davecgh/go-spew/spew"

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump renders v's internal structure for diagnostic logging and test failure
// messages. It is never used on the hot evaluation path.
func Dump(v Value) string {
	return dumpConfig.Sdump(v)
}
