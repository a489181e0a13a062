// Package navigation publishes navigation requests made by the session
// coordinator so the UI shell can follow them.
package navigation

import (
	"sync"

	"github.com/rs/zerolog"
)

// Request is a single navigation instruction.
type Request struct {
	Path    string `json:"path"`
	Replace bool   `json:"replace"`
	Seq     uint64 `json:"seq"`
}

// Recorder keeps the latest navigation request. The UI shell reads it from
// the session snapshot and compares Seq to detect new instructions.
type Recorder struct {
	log zerolog.Logger

	mu   sync.Mutex
	last Request
}

func NewRecorder(log zerolog.Logger) *Recorder {
	return &Recorder{log: log}
}

func (r *Recorder) Navigate(path string, replace bool) {
	r.mu.Lock()
	r.last = Request{Path: path, Replace: replace, Seq: r.last.Seq + 1}
	seq := r.last.Seq
	r.mu.Unlock()
	r.log.Debug().Str("path", path).Bool("replace", replace).Uint64("seq", seq).Msg("navigate")
}

// Last returns the most recent request; Seq is zero if none was made.
func (r *Recorder) Last() Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// LastPath returns the path of the most recent request.
func (r *Recorder) LastPath() string {
	return r.Last().Path
}
