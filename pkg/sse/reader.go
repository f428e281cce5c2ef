package sse

import (
	"bufio"
	"io"
	"strings"

	"github.com/haven-labs/mindhaven/backend/internal/model/chat"
)

// Reader decodes frames from an event-stream body. It implements the
// client-side half of the framing: data lines accumulate until a blank line
// terminates the event, multi-line payloads rejoin with "\n".
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader wraps a response body.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	return &Reader{scanner: scanner}
}

// Next returns the next decoded frame. It returns io.EOF when the stream
// ends; an abrupt end without a done or error sentinel surfaces as io.EOF
// and callers must treat it as an implicit failure.
func (r *Reader) Next() (chat.Frame, error) {
	var data []string
	seen := false

	for r.scanner.Scan() {
		line := r.scanner.Text()
		if line == "" {
			if seen {
				return chat.ParseFrame(strings.Join(data, "\n")), nil
			}
			continue
		}
		if payload, ok := strings.CutPrefix(line, "data:"); ok {
			data = append(data, strings.TrimPrefix(payload, " "))
			seen = true
		}
		// Other field lines (event:, id:, comments) are ignored.
	}

	if err := r.scanner.Err(); err != nil {
		return chat.Frame{}, err
	}
	if seen {
		return chat.ParseFrame(strings.Join(data, "\n")), nil
	}
	return chat.Frame{}, io.EOF
}
