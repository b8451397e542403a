// Package tokenizer extracts whitespace-delimited words (and delimited,
// escape-aware string literals) from a streams.Streams, per spec.md §4.4.
// It is grounded on the teacher's memcore.go `scan` method, split out of the
// VM into its own reusable, stream-agnostic component and extended with the
// `parse(delim)` string-literal mode spec.md §9 calls out as a distinct
// tokenizer mode (the source's own handling was left FIXME).
package tokenizer

import (
	"io"
	"strings"
	"unicode"

	"simforth/streams"
)

func isWordDelim(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }

// Word scans forward, skipping leading delimiter runes (whitespace or
// control characters), collecting up to the next delimiter or end of input.
// Returns io.EOF if no word could be scanned because every source is
// exhausted.
func Word(s *streams.Streams) (string, error) {
	return WordFunc(s, isWordDelim)
}

// WordFunc is Word generalized to a caller-supplied delimiter predicate.
func WordFunc(s *streams.Streams, isDelim func(rune) bool) (string, error) {
	var r rune
	var err error
	for {
		r, err = s.ReadRune()
		if err != nil {
			return "", err
		}
		if !isDelim(r) {
			break
		}
	}

	var sb strings.Builder
	sb.WriteRune(r)
	for {
		r, err = s.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if isDelim(r) {
			break
		}
		sb.WriteRune(r)
	}
	return sb.String(), nil
}

// Parse scans *including* escapes, without skipping leading delimiters: it
// collects runes up to (but not including) the next occurrence of delim,
// processing backslash escapes along the way: \n \t \r \a and \0 map to their
// control characters, and any other escaped rune (including \\ and \") stands
// for itself. \xHH hex escapes are not decoded.
// Used for string words like S" and ." per spec.md §9. Returns the
// unescaped text and true if delim was found before end of input; ok is
// false (text holds whatever was collected) if the source ran out first,
// since spec.md leaves unterminated/embedded-quote behavior to the
// implementer.
func Parse(s *streams.Streams, delim rune) (text string, ok bool) {
	var sb strings.Builder
	for {
		r, err := s.ReadRune()
		if err != nil {
			return sb.String(), false
		}
		if r == delim {
			return sb.String(), true
		}
		if r == '\\' {
			r2, err := s.ReadRune()
			if err != nil {
				sb.WriteRune(r)
				return sb.String(), false
			}
			sb.WriteRune(unescape(r2))
			continue
		}
		sb.WriteRune(r)
	}
}

func unescape(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case 'a':
		return '\a'
	case '0':
		return 0
	default:
		return r
	}
}
