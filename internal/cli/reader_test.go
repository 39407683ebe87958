package cli

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineReader_ReadLine(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "answer", input: "yes\n", want: "yes"},
		{name: "padded answer", input: "  y \r\n", want: "y"},
		{name: "blank line", input: "\n", want: ""},
		{name: "no trailing newline", input: "n", want: "n"},
		{name: "closed input", input: "", wantErr: io.EOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newLineReader(strings.NewReader(tt.input)).ReadLine(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLineReader_Sequential(t *testing.T) {
	r := newLineReader(strings.NewReader("n\ny\n"))

	for _, want := range []string{"n", "y"} {
		got, err := r.ReadLine(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestLineReader_Cancelled(t *testing.T) {
	t.Run("before read", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newLineReader(strings.NewReader("y\n")).ReadLine(ctx)
		assert.ErrorIs(t, err, ErrInputCancelled)
	})

	t.Run("answer arrives after abandoned prompt", func(t *testing.T) {
		pr, pw := io.Pipe()
		defer func() { _ = pr.Close() }()

		r := newLineReader(pr)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := r.ReadLine(ctx)
		require.ErrorIs(t, err, ErrInputCancelled)

		go func() { _, _ = pw.Write([]byte("yes\n")) }()

		got, err := r.ReadLine(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "yes", got)
	})
}
