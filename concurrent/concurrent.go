// Package concurrent lets a host query a dictionary from multiple
// goroutines at once without racing the interpreter that owns it, per
// spec.md §5: "a background reader (an autocomplete UI, a remote inspector)
// must either synchronize externally or operate on a snapshot". Snapshot
// takes the latter route, handing back an independent, read-only copy a
// pool of goroutines can then fan out over with golang.org/x/sync/errgroup.
package concurrent

import (
	"bytes"
	"context"

	"golang.org/x/sync/errgroup"

	"simforth/dict"
	"simforth/token"
)

// Snapshot returns an independent copy of d, safe to query concurrently
// from other goroutines while d itself continues to be mutated by its
// owning interpreter.
func Snapshot(d *dict.Dictionary) (*dict.Dictionary, error) {
	var buf bytes.Buffer
	if err := d.Serialize(&buf); err != nil {
		return nil, err
	}
	cp := dict.New(d.Size())
	if err := cp.Deserialize(&buf); err != nil {
		return nil, err
	}
	return cp, nil
}

// FindResult is one BatchFind outcome, reported positionally so callers can
// zip it back up against the names they asked for.
type FindResult struct {
	Name      string
	Addr      token.Token
	Immediate bool
	Found     bool
}

// BatchFind resolves every name against snap concurrently. Since
// dict.Dictionary.Find never mutates its receiver, this is safe even
// without Snapshot's isolation, but running it against a frozen snapshot
// additionally lets the caller keep using a stable view across the whole
// batch while the live dictionary moves on underneath it.
func BatchFind(ctx context.Context, snap *dict.Dictionary, names []string) ([]FindResult, error) {
	results := make([]FindResult, len(names))
	g, _ := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			tok, immediate, found := snap.Find(name)
			results[i] = FindResult{Name: name, Addr: tok, Immediate: immediate, Found: found}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// AutocompleteResult is one prefix's full match set from BatchAutocomplete.
type AutocompleteResult struct {
	Prefix  string
	Matches []string
}

// BatchAutocomplete walks snap's whole chain for each prefix concurrently,
// one goroutine per prefix, used by a host offering multi-field completion
// (e.g. completing several REPL panes at once) without serializing on a
// single dictionary walk per keystroke.
func BatchAutocomplete(ctx context.Context, snap *dict.Dictionary, prefixes []string) ([]AutocompleteResult, error) {
	results := make([]AutocompleteResult, len(prefixes))
	g, _ := errgroup.WithContext(ctx)
	for i, prefix := range prefixes {
		i, prefix := i, prefix
		g.Go(func() error {
			var matches []string
			cursor := snap.Latest()
			for {
				name, next, ok := snap.Autocomplete(prefix, cursor)
				if !ok {
					break
				}
				matches = append(matches, name)
				cursor = next
			}
			results[i] = AutocompleteResult{Prefix: prefix, Matches: matches}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
