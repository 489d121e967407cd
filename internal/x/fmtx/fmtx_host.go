//go:build !mcu

package fmtx

import "fmt"

// Sprintf just forwards to fmt on a host build, where fmt is already linked.
func Sprintf(format string, args ...any) string { return fmt.Sprintf(format, args...) }
