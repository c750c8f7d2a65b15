//go:build debug

package visual

import "fmt"

// assertf panics with the formatted message when cond is false. Only active with -tags debug.
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
