package concurrent_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simforth/concurrent"
	"simforth/dict"
	"simforth/token"
)

func populated(t *testing.T) *dict.Dictionary {
	t.Helper()
	d := dict.New(dict.DefaultMaxSize)
	for _, name := range []string{"DUP", "DROP", "DOUBLE", "DOUBLER"} {
		_, err := d.Create(name, false)
		require.NoError(t, err)
		require.NoError(t, d.CompileToken(token.Exit))
		d.Finalize()
	}
	return d
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	d := populated(t)
	snap, err := concurrent.Snapshot(d)
	require.NoError(t, err)

	_, err = d.Create("LATER", false)
	require.NoError(t, err)
	d.Finalize()

	_, _, found := snap.Find("LATER")
	assert.False(t, found, "snapshot must not see words defined on the live dictionary afterward")

	_, _, found = d.Find("LATER")
	assert.True(t, found)
}

func TestBatchFind(t *testing.T) {
	d := populated(t)
	snap, err := concurrent.Snapshot(d)
	require.NoError(t, err)

	results, err := concurrent.BatchFind(context.Background(), snap, []string{"DUP", "NOSUCH", "dup"})
	require.NoError(t, err)
	require.Len(t, results, 3)

	byName := make(map[string]concurrent.FindResult)
	for _, r := range results {
		byName[r.Name] = r
	}

	assert.True(t, byName["DUP"].Found)
	assert.False(t, byName["NOSUCH"].Found)
	assert.True(t, byName["dup"].Found, "lookup is case-insensitive")
}

func TestBatchAutocomplete(t *testing.T) {
	d := populated(t)
	snap, err := concurrent.Snapshot(d)
	require.NoError(t, err)

	results, err := concurrent.BatchAutocomplete(context.Background(), snap, []string{"DO", "DROP", "Z"})
	require.NoError(t, err)
	require.Len(t, results, 3)

	byPrefix := make(map[string]concurrent.AutocompleteResult)
	for _, r := range results {
		byPrefix[r.Prefix] = r
	}

	assert.ElementsMatch(t, []string{"DOUBLE", "DOUBLER"}, byPrefix["DO"].Matches)
	assert.ElementsMatch(t, []string{"DROP"}, byPrefix["DROP"].Matches)
	assert.Empty(t, byPrefix["Z"].Matches)
}
