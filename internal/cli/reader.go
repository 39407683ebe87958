package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when a prompt is abandoned before an answer arrives.
var ErrInputCancelled = errors.New("input canceled")

// lineReader reads answers to prompts. A read blocked on the terminal can be
// abandoned through its context; the background read keeps its line for the
// next caller.
type lineReader struct {
	src     *bufio.Reader
	pending chan answer
	mu      sync.Mutex
}

type answer struct {
	err  error
	line string
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{src: bufio.NewReader(r)}
}

// ReadLine returns the next line with surrounding whitespace removed. A final
// line without a newline is returned as is; io.EOF only ends an empty read.
func (r *lineReader) ReadLine(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInputCancelled
	}

	r.mu.Lock()
	if r.pending == nil {
		ch := make(chan answer, 1)
		r.pending = ch
		go func() {
			line, err := r.src.ReadString('\n')
			ch <- answer{line: line, err: err}
		}()
	}
	ch := r.pending
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case a := <-ch:
		r.mu.Lock()
		r.pending = nil
		r.mu.Unlock()

		if a.err != nil && (!errors.Is(a.err, io.EOF) || a.line == "") {
			return "", a.err
		}
		return strings.TrimSpace(a.line), nil
	}
}
