package debug

import (
	"os"
	"strconv"
)

type debug struct {
	Events bool
	Query  bool
	File   bool
	Load   bool
}

var d *debug

func init() {
	d = &debug{}
	d.Events = boolEnv("ITEMSCRIPT_DEBUG_EVENTS")
	d.Query = boolEnv("ITEMSCRIPT_DEBUG_QUERY")
	d.File = boolEnv("ITEMSCRIPT_DEBUG_FILE")
	d.Load = boolEnv("ITEMSCRIPT_DEBUG_LOAD")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Events() bool {
	return d.Events
}
func Query() bool {
	return d.Query
}
func File() bool {
	return d.File
}
func Load() bool {
	return d.Load
}
