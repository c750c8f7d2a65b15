//go:build !debug

package visual

func assertf(bool, string, ...any) {}
