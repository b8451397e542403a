package dict

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

// Dump renders a diagnostic summary of the dictionary's occupancy and
// defined words, grounded on the teacher's dumper.go `vmDumper.dump`. Word
// listing walks newest-first, matching Autocomplete's enumeration order.
func (d *Dictionary) Dump(w io.Writer) {
	fmt.Fprintf(w, "# Dictionary Dump\n")
	fmt.Fprintf(w, "  here:   %s / %s (%d%%)\n",
		humanize.Bytes(uint64(d.here)), humanize.Bytes(uint64(len(d.buf))),
		int(float64(d.here)/float64(len(d.buf))*100))
	fmt.Fprintf(w, "  latest: @%d\n", d.latest)

	for off := d.latest; off != 0; {
		h := d.readHeader(off)
		mark := ""
		if off == d.smudged {
			mark = " (smudged)"
		} else if h.immediate {
			mark = " (immediate)"
		}
		fmt.Fprintf(w, "  @%-6d %-16s body=@%-6d%s\n", off, h.name, h.bodyOffset, mark)
		off = h.prev
	}
}
