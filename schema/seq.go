package schema

import "sync/atomic"

var seqCounter atomic.Uint64

// nextSeq returns a process-wide monotonically increasing counter,
// used to break ties between GenerateKeyBytes calls landing in the
// same nanosecond.
func nextSeq() uint64 {
	return seqCounter.Add(1)
}
