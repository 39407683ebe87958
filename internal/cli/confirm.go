package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Confirmer asks yes/no questions on a terminal.
type Confirmer struct {
	reader *lineReader
	writer io.Writer
}

// NewConfirmer creates a confirmer reading answers from r and writing prompts to w.
func NewConfirmer(r io.Reader, w io.Writer) *Confirmer {
	return &Confirmer{reader: newLineReader(r), writer: w}
}

// Confirm prints question and waits for an answer. Anything other than
// y or yes is a no; end of input is a no as well.
func (c *Confirmer) Confirm(ctx context.Context, question string) (bool, error) {
	if _, err := fmt.Fprint(c.writer, FormatPrompt(question+" [y/N]")); err != nil {
		return false, err
	}

	answer, err := c.reader.ReadLine(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}

	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
