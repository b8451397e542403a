package tokenizer_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simforth/streams"
	"simforth/tokenizer"
)

func TestWordSkipsLeadingDelims(t *testing.T) {
	s := streams.New(0)
	require.NoError(t, s.PushString("t", "   DUP  DROP\n"))

	w, err := tokenizer.Word(s)
	require.NoError(t, err)
	assert.Equal(t, "DUP", w)

	w, err = tokenizer.Word(s)
	require.NoError(t, err)
	assert.Equal(t, "DROP", w)
}

func TestWordEOF(t *testing.T) {
	s := streams.New(0)
	require.NoError(t, s.PushString("t", "  "))
	_, err := tokenizer.Word(s)
	assert.ErrorIs(t, err, io.EOF)
}

func TestParseStopsAtDelimWithEscapes(t *testing.T) {
	s := streams.New(0)
	require.NoError(t, s.PushString("t", `hello\nworld" rest`))

	text, ok := tokenizer.Parse(s, '"')
	require.True(t, ok)
	assert.Equal(t, "hello\nworld", text)

	w, err := tokenizer.Word(s)
	require.NoError(t, err)
	assert.Equal(t, "rest", w)
}

func TestParseUnterminated(t *testing.T) {
	s := streams.New(0)
	require.NoError(t, s.PushString("t", "no closing quote"))
	text, ok := tokenizer.Parse(s, '"')
	assert.False(t, ok)
	assert.Equal(t, "no closing quote", text)
}
