package streams_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simforth/streams"
)

func readAll(t *testing.T, s *streams.Streams) string {
	t.Helper()
	var sb strings.Builder
	for {
		r, err := s.ReadRune()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		sb.WriteRune(r)
	}
	return sb.String()
}

func TestPopOnEOFContinuesInCaller(t *testing.T) {
	s := streams.New(0)
	require.NoError(t, s.PushString("outer", "AB"))
	require.NoError(t, s.PushString("inner", "12"))

	assert.Equal(t, "12AB", readAll(t, s))
}

func TestLineColumnTracking(t *testing.T) {
	s := streams.New(0)
	require.NoError(t, s.PushString("t", "ab\ncd"))

	s.ReadRune() // a
	s.ReadRune() // b
	loc := s.Loc()
	assert.Equal(t, 1, loc.Line)
	assert.Equal(t, 3, loc.Column)

	s.ReadRune() // \n
	loc = s.Loc()
	assert.Equal(t, 2, loc.Line)
	assert.Equal(t, 1, loc.Column)
}

func TestDepthExceeded(t *testing.T) {
	s := streams.New(1)
	require.NoError(t, s.PushString("a", "x"))
	err := s.PushString("b", "y")
	var derr streams.DepthExceededError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, 1, s.Depth())
}

func TestDiscardLineStopsAtCurrentSourceBoundary(t *testing.T) {
	s := streams.New(0)
	require.NoError(t, s.PushString("outer", "XYZ"))
	require.NoError(t, s.PushString("inner", "garbage rest"))

	s.DiscardLine() // inner has no newline; should exhaust inner only
	assert.Equal(t, "XYZ", readAll(t, s))
}
