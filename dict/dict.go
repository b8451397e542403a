// Package dict implements the append-only dictionary memory described by
// spec.md §3-4.3: a contiguous byte buffer threading a singly-linked list of
// word headers, grown the way the teacher's memcore.go/first.go grow and walk
// its own flat `mem []int` dictionary, but laid out as the variable-length
// byte headers spec.md §3 specifies instead of gothird's fixed four-int
// FIRST header.
package dict

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"simforth/token"
)

// DefaultMaxSize is the default dictionary capacity. It is capped at 64KiB
// because a header's previous_offset field and the image format's use of token.ForOffset
// both require every in-chain byte offset to fit in 16 bits (spec.md §3's
// header layout, §3's Token "dictionary offsets in units of tokens").
const DefaultMaxSize = 1 << 16

const maxNameLen = 31 // spec.md §4.3 create() NAME_TOO_LONG contract

// NameTooLongError reports a name exceeding maxNameLen bytes.
type NameTooLongError struct{ Name string }

func (e NameTooLongError) Error() string {
	return fmt.Sprintf("name too long: %q (max %d bytes)", e.Name, maxNameLen)
}

// OutOfSpaceError reports that the dictionary has no room for a requested
// append.
type OutOfSpaceError struct{ Requested, Available int }

func (e OutOfSpaceError) Error() string {
	return fmt.Sprintf("out of dictionary space: need %d, have %d", e.Requested, e.Available)
}

// UnknownWordError reports a Forget of an undefined name.
type UnknownWordError struct{ Name string }

func (e UnknownWordError) Error() string { return fmt.Sprintf("unknown word: %q", e.Name) }

// ErrNestedDefinition reports a Create issued while another definition is
// still outstanding.
var ErrNestedDefinition = fmt.Errorf("nested definition")

// Dictionary is the append-only word/body memory. It holds no stacks and no
// program counter; those belong to the interpreter that drives it.
//
// Per spec.md §3: "during definition the entry being built is smudged
// (invisible to lookup) until a finalizer clears the bit". Because
// NESTED_DEFINITION is forbidden (spec.md §4.8), at most one entry is ever
// smudged at a time, and it is always the most recently created one — so we
// track it as dictionary-level transient state (`smudged`) rather than a
// persisted per-entry bit. This keeps the on-disk header to exactly one flag
// byte (name length + immediate) as laid out below, and needs no
// serialization: a smudged, unfinished definition is never present when
// Serialize is called (it is either finalized or aborted first).
type Dictionary struct {
	buf     []byte
	here    uint16
	latest  uint16
	smudged uint16 // header offset of the entry under construction, or 0

	savedHere   uint16
	savedLatest uint16
}

// New constructs an empty Dictionary with the given byte capacity. The first
// token slot is left unused so that no entry sits at offset 0, the value that
// terminates the previous_offset chain.
func New(maxSize int) *Dictionary {
	if maxSize <= 0 || maxSize > DefaultMaxSize {
		maxSize = DefaultMaxSize
	}
	return &Dictionary{buf: make([]byte, maxSize), here: 2}
}

// Here returns the current write pointer.
func (d *Dictionary) Here() uint16 { return d.here }

// Latest returns the offset of the most recently created entry (possibly
// still smudged).
func (d *Dictionary) Latest() uint16 { return d.latest }

// Size returns the dictionary's fixed byte capacity.
func (d *Dictionary) Size() int { return len(d.buf) }

func foldByte(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if foldByte(a[i]) != foldByte(b[i]) {
			return false
		}
	}
	return true
}

func hasPrefixFold(name, prefix string) bool {
	if len(name) < len(prefix) {
		return false
	}
	return equalFold(name[:len(prefix)], prefix)
}

func alignToken(off uint16) uint16 { return (off + 1) &^ 1 }

// header describes one parsed entry, read out of dictionary memory.
type header struct {
	prev       uint16
	nameLen    uint8
	immediate  bool
	name       string
	bodyOffset uint16
}

func (d *Dictionary) readHeader(off uint16) header {
	prev := binary.LittleEndian.Uint16(d.buf[off:])
	flags := d.buf[off+2]
	nameLen := flags & 0x7f
	immediate := flags&0x80 != 0
	name := string(d.buf[off+3 : off+3+uint16(nameLen)])
	body := alignToken(off + 3 + uint16(nameLen))
	return header{prev: prev, nameLen: nameLen, immediate: immediate, name: name, bodyOffset: body}
}

// Create appends a new header with smudge set and the given immediate flag,
// per spec.md §4.3. It fails NAME_TOO_LONG or OUT_OF_SPACE without mutating
// the dictionary.
func (d *Dictionary) Create(name string, immediate bool) (token.Token, error) {
	if d.smudged != 0 {
		return 0, ErrNestedDefinition
	}
	if len(name) > maxNameLen {
		return 0, NameTooLongError{name}
	}
	need := 3 + len(name)
	start := int(d.here)
	bodyStart := int(alignToken(uint16(start + need)))
	if bodyStart > len(d.buf) {
		return 0, OutOfSpaceError{bodyStart - start, len(d.buf) - start}
	}

	d.savedHere = d.here
	d.savedLatest = d.latest

	binary.LittleEndian.PutUint16(d.buf[start:], d.latest)
	flags := byte(len(name)) & 0x7f
	if immediate {
		flags |= 0x80
	}
	d.buf[start+2] = flags
	copy(d.buf[start+3:], name)

	entryOff := uint16(start)
	d.latest = entryOff
	d.smudged = entryOff
	d.here = uint16(bodyStart)
	return token.ForOffset(uint16(bodyStart)), nil
}

// Finalize clears the smudge bit on LATEST, making it visible to Find and
// Autocomplete.
func (d *Dictionary) Finalize() { d.smudged = 0 }

// AbortDefinition rewinds HERE and LATEST to the values saved before the
// last Create, discarding the in-progress (smudged) entry and any tokens
// compiled into its body.
func (d *Dictionary) AbortDefinition() {
	if d.smudged == 0 {
		return
	}
	d.here = d.savedHere
	d.latest = d.savedLatest
	d.smudged = 0
}

// Defining reports whether a Create is outstanding (awaiting Finalize or
// AbortDefinition).
func (d *Dictionary) Defining() bool { return d.smudged != 0 }

// MarkImmediate sets the immediate flag on LATEST, used by the IMMEDIATE
// word (spec.md §4.3), whether or not that entry is still smudged.
func (d *Dictionary) MarkImmediate() {
	if d.latest == 0 {
		return
	}
	d.buf[d.latest+2] |= 0x80
}

// LatestBody returns the body offset of LATEST, used by CREATE/DOES> to
// locate the parameter field of the word just created.
func (d *Dictionary) LatestBody() uint16 {
	if d.latest == 0 {
		return 0
	}
	return d.readHeader(d.latest).bodyOffset
}

// CompileToken appends one Token at HERE and advances it.
func (d *Dictionary) CompileToken(t token.Token) error {
	if int(d.here)+2 > len(d.buf) {
		return OutOfSpaceError{2, len(d.buf) - int(d.here)}
	}
	binary.LittleEndian.PutUint16(d.buf[d.here:], uint16(t))
	d.here += 2
	return nil
}

// CompileRaw appends the raw 8-byte pattern of a Cell (spec.md §4.3
// compile_cell, "may span multiple tokens" -- here, four).
func (d *Dictionary) CompileRaw(bits uint64) error {
	if int(d.here)+8 > len(d.buf) {
		return OutOfSpaceError{8, len(d.buf) - int(d.here)}
	}
	binary.LittleEndian.PutUint64(d.buf[d.here:], bits)
	d.here += 8
	return nil
}

// CompileBytes appends raw, possibly-odd-length bytes at HERE, padding with
// a single zero byte if needed so HERE stays Token-aligned afterward, used
// by string literals like ." and S" that embed text directly in a body.
func (d *Dictionary) CompileBytes(data []byte) error {
	need := len(data)
	if need%2 == 1 {
		need++
	}
	if int(d.here)+need > len(d.buf) {
		return OutOfSpaceError{need, len(d.buf) - int(d.here)}
	}
	copy(d.buf[d.here:], data)
	d.here += uint16(need)
	return nil
}

// StoreRaw overwrites the 8-byte Cell pattern at an arbitrary offset, used
// by the ! primitive (unlike CompileRaw, this does not touch HERE).
func (d *Dictionary) StoreRaw(off uint16, bits uint64) error {
	if int(off)+8 > len(d.buf) {
		return OutOfSpaceError{8, len(d.buf) - int(off)}
	}
	binary.LittleEndian.PutUint64(d.buf[off:], bits)
	return nil
}

// ScratchWriteRaw stores data at HERE without a length prefix and without
// advancing HERE, returning its offset; used by S" to make an
// interpret-time string literal addressable.
func (d *Dictionary) ScratchWriteRaw(data []byte) (uint16, error) {
	if int(d.here)+len(data) > len(d.buf) {
		return 0, OutOfSpaceError{len(data), len(d.buf) - int(d.here)}
	}
	off := d.here
	copy(d.buf[off:], data)
	return off, nil
}

// LoadToken reads the Token at the given byte offset.
func (d *Dictionary) LoadToken(off uint16) token.Token {
	return token.Token(binary.LittleEndian.Uint16(d.buf[off:]))
}

// LoadRaw reads the raw 8-byte Cell pattern at the given byte offset.
func (d *Dictionary) LoadRaw(off uint16) uint64 {
	return binary.LittleEndian.Uint64(d.buf[off:])
}

// ReadBytes returns a copy of n bytes starting at off, used by TYPE and by
// counted-string words like WORD/FIND to read dictionary memory as raw text.
func (d *Dictionary) ReadBytes(off uint16, n int) []byte {
	out := make([]byte, n)
	copy(out, d.buf[off:int(off)+n])
	return out
}

// WriteByte stores a single byte at off, used by C!.
func (d *Dictionary) WriteByte(off uint16, b byte) { d.buf[off] = b }

// ReadByte loads a single byte at off, used by C@.
func (d *Dictionary) ReadByte(off uint16) byte { return d.buf[off] }

// ScratchWrite stores a Pascal-style counted string (one length byte
// followed by the bytes themselves) at HERE without advancing it, returning
// HERE's offset; used by WORD to hand back a reusable scratch buffer the way
// the teacher's `scan` leaves its result sitting just past the dictionary's
// live entries. Fails OUT_OF_SPACE without mutating the dictionary.
func (d *Dictionary) ScratchWrite(data []byte) (uint16, error) {
	need := 1 + len(data)
	if int(d.here)+need > len(d.buf) {
		return 0, OutOfSpaceError{need, len(d.buf) - int(d.here)}
	}
	off := d.here
	d.buf[off] = byte(len(data))
	copy(d.buf[off+1:], data)
	return off, nil
}

// PatchToken overwrites the Token at off; used by control-flow primitives to
// back-patch BRANCH/0BRANCH offsets once the jump target is known.
func (d *Dictionary) PatchToken(off uint16, t token.Token) {
	binary.LittleEndian.PutUint16(d.buf[off:], uint16(t))
}

// Find walks the chain from LATEST looking for the first non-smudged entry
// whose name matches case-insensitively, per spec.md §4.3. O(n) in chain
// length.
func (d *Dictionary) Find(name string) (token.Token, bool, bool) {
	for off := d.latest; off != 0; {
		h := d.readHeader(off)
		if off != d.smudged && equalFold(h.name, name) {
			return token.ForOffset(h.bodyOffset), h.immediate, true
		}
		off = h.prev
	}
	return 0, false, false
}

// Autocomplete returns the next non-smudged entry, starting the walk from
// cursor (pass Latest() to begin), whose name begins with prefix
// case-insensitively. newCursor lets the caller repeat the call to walk the
// whole chain newest-first; ok is false once the chain is exhausted.
func (d *Dictionary) Autocomplete(prefix string, cursor uint16) (name string, newCursor uint16, ok bool) {
	for off := cursor; off != 0; {
		h := d.readHeader(off)
		next := h.prev
		if off != d.smudged && hasPrefixFold(h.name, prefix) {
			return h.name, next, true
		}
		off = next
	}
	return "", 0, false
}

// Forget locates name and rewinds HERE/LATEST to the state that existed
// just before it (and everything defined after it) was created, per
// spec.md §4.3. Fails UNKNOWN_WORD if name is not found.
func (d *Dictionary) Forget(name string) error {
	for off := d.latest; off != 0; {
		h := d.readHeader(off)
		if equalFold(h.name, name) {
			d.latest = h.prev
			d.here = off
			if d.smudged != 0 && d.smudged >= off {
				d.smudged = 0
			}
			return nil
		}
		off = h.prev
	}
	return UnknownWordError{name}
}

// WordOf returns the name and offset-within-body of the entry whose body
// contains the given token address, used for trace/dump diagnostics
// (gothird's dumper.go `wordOf`/`formatCode`).
func (d *Dictionary) WordOf(addr uint16) (name string, offset uint16, ok bool) {
	for off := d.latest; off != 0; {
		h := d.readHeader(off)
		if h.bodyOffset <= addr {
			return h.name, addr - h.bodyOffset, true
		}
		off = h.prev
	}
	return "", 0, false
}

// --- image I/O (spec.md §6) ---

var magic = [8]byte{'S', 'I', 'M', 'F', 'O', 'R', 'T', 'H'}

const imageVersion = 1

// ErrImageInvalid reports a magic/version mismatch.
var ErrImageInvalid = fmt.Errorf("image invalid")

// ErrImageCorrupt reports a CRC mismatch.
var ErrImageCorrupt = fmt.Errorf("image corrupt")

// Serialize writes the bit-exact image format documented in spec.md §6.
func (d *Dictionary) Serialize(w io.Writer) error {
	bw := bufio.NewWriter(w)

	var hdr [20]byte
	copy(hdr[0:8], magic[:])
	binary.LittleEndian.PutUint16(hdr[8:10], imageVersion)
	hdr[10] = 0 // little-endian
	hdr[11] = 0 // reserved
	binary.LittleEndian.PutUint32(hdr[12:16], uint32(d.here))
	binary.LittleEndian.PutUint32(hdr[16:20], uint32(d.latest))

	if _, err := bw.Write(hdr[:]); err != nil {
		return err
	}
	body := d.buf[:d.here]
	if _, err := bw.Write(body); err != nil {
		return err
	}

	crc := crc32.ChecksumIEEE(hdr[:])
	crc = crc32.Update(crc, crc32.IEEETable, body)
	var crcBuf [4]byte
	binary.LittleEndian.PutUint32(crcBuf[:], crc)
	if _, err := bw.Write(crcBuf[:]); err != nil {
		return err
	}
	return bw.Flush()
}

// Deserialize reads and validates an image per spec.md §6. A file whose
// magic or version mismatches fails ErrImageInvalid; one whose CRC
// mismatches fails ErrImageCorrupt. Partial or failed loads leave the
// dictionary untouched.
func (d *Dictionary) Deserialize(r io.Reader) error {
	all, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if len(all) < 24 {
		return ErrImageInvalid
	}
	if string(all[0:8]) != string(magic[:]) {
		return ErrImageInvalid
	}
	version := binary.LittleEndian.Uint16(all[8:10])
	if version != imageVersion {
		return ErrImageInvalid
	}
	here := binary.LittleEndian.Uint32(all[12:16])
	latest := binary.LittleEndian.Uint32(all[16:20])
	bodyEnd := 20 + int(here)
	if len(all) != bodyEnd+4 || here > uint32(len(d.buf)) {
		return ErrImageInvalid
	}

	crc := crc32.ChecksumIEEE(all[:20])
	crc = crc32.Update(crc, crc32.IEEETable, all[20:bodyEnd])
	wantCRC := binary.LittleEndian.Uint32(all[bodyEnd : bodyEnd+4])
	if crc != wantCRC {
		return ErrImageCorrupt
	}

	candidate := &Dictionary{
		buf:    make([]byte, len(d.buf)),
		here:   uint16(here),
		latest: uint16(latest),
	}
	copy(candidate.buf, all[20:bodyEnd])
	if err := candidate.checkAcyclic(); err != nil {
		return err
	}

	*d = *candidate
	return nil
}

// checkAcyclic walks the LATEST chain verifying it terminates at 0 and that
// every previous_offset is strictly less than the referencing entry's own
// offset, per spec.md §3's invariants.
func (d *Dictionary) checkAcyclic() error {
	seen := make(map[uint16]bool)
	for off := d.latest; off != 0; {
		if off >= d.here || int(off)+3 > len(d.buf) {
			return ErrImageInvalid
		}
		if seen[off] {
			return ErrImageInvalid
		}
		seen[off] = true
		h := d.readHeader(off)
		if h.prev != 0 && h.prev >= off {
			return ErrImageInvalid
		}
		off = h.prev
	}
	return nil
}
