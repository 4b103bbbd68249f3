// Package trace records the nodes an evaluation visits.  The record is
// the basis of run determinism checks: two runs of the same program with
// the same options produce the same entries and so the same hash.
package trace

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Entry notes that the node with the given Sid was evaluated.  Note is
// the node kind.
type Entry struct {
	Sid  string `json:"sid"`
	Note string `json:"note"`
}

type Recorder struct {
	entries []Entry
	digest  *xxhash.Digest
}

func NewRecorder() *Recorder {
	return &Recorder{digest: xxhash.New()}
}

func (r *Recorder) Record(sid, note string) {
	r.entries = append(r.entries, Entry{sid, note})
	r.digest.WriteString(sid)
	r.digest.Write([]byte{0})
	r.digest.WriteString(note)
	r.digest.Write([]byte{'\n'})
}

// Entries returns the entries in evaluation order.  The slice is shared
// with the recorder.
func (r *Recorder) Entries() []Entry {
	return r.entries
}

func (r *Recorder) Len() int {
	return len(r.entries)
}

// Hash returns the xxhash64 of the entries, each serialized as
// sid NUL note NL, as 16 hex digits.
func (r *Recorder) Hash() string {
	return fmt.Sprintf("%016x", r.digest.Sum64())
}

// Hash computes the hash a Recorder holding entries would return.
func Hash(entries []Entry) string {
	r := NewRecorder()
	for _, e := range entries {
		r.Record(e.Sid, e.Note)
	}
	return r.Hash()
}
