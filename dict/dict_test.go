package dict_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simforth/dict"
	"simforth/token"
)

func defineWord(t *testing.T, d *dict.Dictionary, name string, immediate bool, body ...token.Token) token.Token {
	t.Helper()
	tok, err := d.Create(name, immediate)
	require.NoError(t, err)
	for _, b := range body {
		require.NoError(t, d.CompileToken(b))
	}
	require.NoError(t, d.CompileToken(token.Exit))
	d.Finalize()
	return tok
}

func TestCreateFindCaseInsensitive(t *testing.T) {
	d := dict.New(4096)
	defineWord(t, d, "DUP", false, token.Dup)

	tok1, imm1, ok1 := d.Find("DUP")
	tok2, imm2, ok2 := d.Find("dup")
	tok3, imm3, ok3 := d.Find("DuP")
	require.True(t, ok1 && ok2 && ok3)
	assert.Equal(t, tok1, tok2)
	assert.Equal(t, tok1, tok3)
	assert.Equal(t, imm1, imm2)
	assert.Equal(t, imm1, imm3)
	assert.False(t, imm1)
}

func TestSmudgeHidesDuringDefinition(t *testing.T) {
	d := dict.New(4096)
	tok, err := d.Create("FOO", false)
	require.NoError(t, err)
	require.NoError(t, d.CompileToken(token.Exit))

	_, _, ok := d.Find("FOO")
	assert.False(t, ok, "smudged entry must be invisible to Find")

	d.Finalize()
	found, _, ok := d.Find("FOO")
	require.True(t, ok)
	assert.Equal(t, tok, found)
}

func TestAbortDefinitionRewinds(t *testing.T) {
	d := dict.New(4096)
	hereBefore := d.Here()
	latestBefore := d.Latest()

	_, err := d.Create("BAD", false)
	require.NoError(t, err)
	require.NoError(t, d.CompileToken(token.Lit))
	require.NoError(t, d.CompileRaw(0))

	d.AbortDefinition()
	assert.Equal(t, hereBefore, d.Here())
	assert.Equal(t, latestBefore, d.Latest())
	_, _, ok := d.Find("BAD")
	assert.False(t, ok)
}

func TestForgetRestoresHereByteExact(t *testing.T) {
	d := dict.New(4096)
	hereBefore := d.Here()
	defineWord(t, d, "ONE", false, token.Lit)
	hereAfterOne := d.Here()
	defineWord(t, d, "TWO", false, token.Dup)
	require.Greater(t, d.Here(), hereAfterOne)

	require.NoError(t, d.Forget("ONE"))
	assert.Equal(t, hereBefore, d.Here())
	assert.Equal(t, uint16(0), d.Latest())

	_, _, ok := d.Find("ONE")
	assert.False(t, ok)
	_, _, ok = d.Find("TWO")
	assert.False(t, ok)
}

func TestForgetUnknownWord(t *testing.T) {
	d := dict.New(4096)
	err := d.Forget("NOPE")
	var uerr dict.UnknownWordError
	require.ErrorAs(t, err, &uerr)
}

func TestNameTooLong(t *testing.T) {
	d := dict.New(4096)
	_, err := d.Create("THIS_NAME_IS_WAY_TOO_LONG_TO_FIT_IN_A_HEADER", false)
	var nerr dict.NameTooLongError
	require.ErrorAs(t, err, &nerr)
}

func TestOutOfSpace(t *testing.T) {
	d := dict.New(16)
	_, err := d.Create("TOOBIG_FOR_16_BYTES", false)
	var oerr dict.OutOfSpaceError
	require.ErrorAs(t, err, &oerr)
}

func TestAutocompleteEnumeratesNewestFirstOnce(t *testing.T) {
	d := dict.New(4096)
	defineWord(t, d, "DUP", false, token.Dup)
	defineWord(t, d, "DROP", false, token.Drop)
	defineWord(t, d, "DUMP", false, token.Dup)
	defineWord(t, d, "SWAP", false, token.Swap)

	var got []string
	cursor := d.Latest()
	for {
		name, next, ok := d.Autocomplete("DU", cursor)
		if !ok {
			break
		}
		got = append(got, name)
		cursor = next
	}
	assert.Equal(t, []string{"DUMP", "DUP"}, got)
}

func TestImageRoundTrip(t *testing.T) {
	d := dict.New(4096)
	defineWord(t, d, "DUP", false, token.Dup)
	defineWord(t, d, "SQUARE", true, token.Dup, token.Mul)

	var buf bytes.Buffer
	require.NoError(t, d.Serialize(&buf))

	loaded := dict.New(4096)
	require.NoError(t, loaded.Deserialize(bytes.NewReader(buf.Bytes())))

	assert.Equal(t, d.Here(), loaded.Here())
	assert.Equal(t, d.Latest(), loaded.Latest())

	tok1, imm1, ok1 := d.Find("SQUARE")
	tok2, imm2, ok2 := loaded.Find("SQUARE")
	require.True(t, ok1 && ok2)
	assert.Equal(t, tok1, tok2)
	assert.Equal(t, imm1, imm2)

	var completions1, completions2 []string
	for cursor := d.Latest(); ; {
		name, next, ok := d.Autocomplete("", cursor)
		if !ok {
			break
		}
		completions1 = append(completions1, name)
		cursor = next
	}
	for cursor := loaded.Latest(); ; {
		name, next, ok := loaded.Autocomplete("", cursor)
		if !ok {
			break
		}
		completions2 = append(completions2, name)
		cursor = next
	}
	assert.Equal(t, completions1, completions2)
}

func TestImageInvalidMagic(t *testing.T) {
	d := dict.New(4096)
	err := d.Deserialize(bytes.NewReader([]byte("not an image at all")))
	require.ErrorIs(t, err, dict.ErrImageInvalid)
}

func TestImageCorruptCRC(t *testing.T) {
	d := dict.New(4096)
	defineWord(t, d, "DUP", false, token.Dup)
	var buf bytes.Buffer
	require.NoError(t, d.Serialize(&buf))

	corrupted := buf.Bytes()
	corrupted[len(corrupted)-1] ^= 0xFF

	loaded := dict.New(4096)
	err := loaded.Deserialize(bytes.NewReader(corrupted))
	require.ErrorIs(t, err, dict.ErrImageCorrupt)
}

func TestPartialLoadLeavesDictionaryUntouched(t *testing.T) {
	d := dict.New(4096)
	defineWord(t, d, "KEEP", false, token.Dup)
	hereBefore := d.Here()

	err := d.Deserialize(bytes.NewReader([]byte("garbage")))
	require.Error(t, err)
	assert.Equal(t, hereBefore, d.Here())
	_, _, ok := d.Find("KEEP")
	assert.True(t, ok)
}
