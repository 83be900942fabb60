package debug

import (
	"encoding/json"
	"fmt"
	"os"
)

// Logf writes to stderr. Arguments implementing json.Marshaler, maps and
// slices are rendered as JSON.
func Logf(msg string, args ...any) {
	for i := range args {
		a := args[i]
		switch a.(type) {
		case json.Marshaler, map[string]any, []any:
			d, err := json.Marshal(a)
			if err != nil {
				args[i] = fmt.Sprintf("%v", a)
				continue
			}
			args[i] = string(d)
		case bool, string, float64, int:

		default:
		}
	}
	fmt.Fprintf(os.Stderr, msg, args...)
}
