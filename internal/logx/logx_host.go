//go:build !mcu

package logx

import (
	"fmt"
	"os"
	"sync"
	"time"
)

var mu sync.Mutex

// Log writes one structured line: "<level> <ts_ms> <msg> k=v k=v...".
// Grounded on the teacher's x/fmtx host variant, which is a thin wrapper
// around fmt rather than a hand-rolled formatter -- fine on a host build
// where fmt is already linked.
func Log(lvl Level, msg string, fields ...Field) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(os.Stderr, "%s %d %s", lvl, time.Now().UnixMilli(), msg)
	for _, f := range fields {
		fmt.Fprintf(os.Stderr, " %s=%s", f.Key, f.Val)
	}
	fmt.Fprintln(os.Stderr)
}

func Infof(format string, args ...any)  { Log(Info, fmt.Sprintf(format, args...)) }
func Warnf(format string, args ...any)  { Log(Warn, fmt.Sprintf(format, args...)) }
func Errorf(format string, args ...any) { Log(Error, fmt.Sprintf(format, args...)) }
