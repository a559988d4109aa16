package stream

import (
	"bytes"
	"encoding/json"
	"strings"
)

// maxPending bounds how much of an unterminated line is kept between writes.
const maxPending = 1 << 20

// Accumulator collects the text of newline-delimited {"chunk": "..."} envelopes
// as raw bytes pass through it. Lines that do not parse are skipped. A line
// split across two writes is joined before parsing.
type Accumulator struct {
	pending []byte
	text    strings.Builder
	chunks  int
}

// Write never fails; it exists so the accumulator can sit behind an io.MultiWriter.
func (a *Accumulator) Write(p []byte) (int, error) {
	a.pending = append(a.pending, p...)
	for {
		i := bytes.IndexByte(a.pending, '\n')
		if i < 0 {
			break
		}
		a.consume(a.pending[:i])
		a.pending = a.pending[i+1:]
	}
	if len(a.pending) > maxPending {
		a.pending = a.pending[:0]
	}
	return len(p), nil
}

// Flush parses whatever trailing line is left without a newline.
func (a *Accumulator) Flush() {
	if len(a.pending) > 0 {
		a.consume(a.pending)
		a.pending = nil
	}
}

func (a *Accumulator) Text() string { return a.text.String() }

// Chunks reports how many envelopes were decoded.
func (a *Accumulator) Chunks() int { return a.chunks }

func (a *Accumulator) consume(line []byte) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return
	}
	var env struct {
		Chunk *string `json:"chunk"`
	}
	if err := json.Unmarshal(line, &env); err != nil || env.Chunk == nil {
		return
	}
	a.text.WriteString(*env.Chunk)
	a.chunks++
}
