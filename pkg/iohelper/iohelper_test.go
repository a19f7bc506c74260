package iohelper

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		r       io.Reader
		limit   int64
		want    string
		tooLong bool
	}{
		{"nil reader", nil, 10, "", false},
		{"under limit", strings.NewReader("small"), 10, "small", false},
		{"exactly limit", strings.NewReader("0123456789"), 10, "0123456789", false},
		{"over limit", strings.NewReader("0123456789x"), 10, "0123456789", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			body, err := ReadBody(tt.r, tt.limit)
			if tt.tooLong {
				assert.ErrorIs(t, err, ErrTooLarge)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, string(body))
		})
	}
}

func TestReadSnippet(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", ReadSnippet(nil, 4))
	assert.Equal(t, "abcd", ReadSnippet(strings.NewReader("abcdef"), 4))
	assert.Equal(t, "ab", ReadSnippet(strings.NewReader("ab"), 4))
}

type closeRecorder struct {
	io.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestDrainAndClose(t *testing.T) {
	t.Parallel()

	assert.NoError(t, DrainAndClose(nil))

	r := bytes.NewReader(bytes.Repeat([]byte("x"), 100))
	rc := &closeRecorder{Reader: r}
	assert.NoError(t, DrainAndClose(rc))
	assert.True(t, rc.closed)
	assert.Zero(t, r.Len())

	big := bytes.NewReader(make([]byte, drainLimit*2))
	assert.NoError(t, DrainAndClose(big))
	assert.Equal(t, int(drainLimit), big.Len())
}
