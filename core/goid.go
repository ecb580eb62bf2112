package core

import (
	"bytes"
	"runtime"
	"strconv"
)

// goroutineID returns the numeric ID of the calling goroutine, parsed from
// the header line of a runtime stack trace ("goroutine N [running]:").
//
// The ID is used only for lock-ownership bookkeeping: it is stored, compared
// value-wise, and never used to reach into the runtime. Returns 0 if the
// header cannot be parsed, which no live goroutine ever has.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.ParseUint(string(fields[1]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
