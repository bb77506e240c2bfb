package pipeline

import (
	"os"
	"sync"
)

const probeDumpPath = "/root/probe.ts"

var probeDumpMu sync.Mutex

// appendProbeDump appends buf to the debug transport-stream dump file
// (spec.md §4.4 step 6). Failures are swallowed: dumping is a debug aid
// and must never interrupt the muxer's source pad.
func appendProbeDump(buf []byte) {
	if len(buf) == 0 {
		return
	}
	probeDumpMu.Lock()
	defer probeDumpMu.Unlock()

	f, err := os.OpenFile(probeDumpPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	f.Write(buf) //nolint:errcheck
}
