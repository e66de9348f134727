package printer

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ESC/POS control bytes
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// Alignment values for ESC a
const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

// Character sizes for GS !
const (
	FontNormal = 0x00
	FontDouble = 0x11
	FontTall   = 0x01
)

// Paper widths in characters
const (
	Width58mm = 32
	Width80mm = 48
)

// Document builds an ESC/POS byte stream. Methods chain.
type Document struct {
	buf   bytes.Buffer
	width int
}

// NewDocument creates a document for the given character width.
func NewDocument(charWidth int) *Document {
	if charWidth <= 0 {
		charWidth = Width58mm
	}
	d := &Document{width: charWidth}
	d.buf.Write([]byte{ESC, '@'})
	return d
}

// Width returns the line width in characters.
func (d *Document) Width() int { return d.width }

// Feed sends n line feeds.
func (d *Document) Feed(n int) *Document {
	d.buf.Write(bytes.Repeat([]byte{LF}, n))
	return d
}

// Align sets text alignment.
func (d *Document) Align(align int) *Document {
	d.buf.Write([]byte{ESC, 'a', byte(align)})
	return d
}

// Bold toggles emphasis.
func (d *Document) Bold(on bool) *Document {
	var b byte
	if on {
		b = 1
	}
	d.buf.Write([]byte{ESC, 'E', b})
	return d
}

// Size sets the character size.
func (d *Document) Size(size byte) *Document {
	d.buf.Write([]byte{GS, '!', size})
	return d
}

// Line writes s, cut to the paper width, and a line feed.
func (d *Document) Line(s string) *Document {
	d.buf.WriteString(truncate(s, d.width))
	d.buf.WriteByte(LF)
	return d
}

// Linef is Line with formatting.
func (d *Document) Linef(format string, args ...interface{}) *Document {
	return d.Line(fmt.Sprintf(format, args...))
}

// Rule prints a full-width line of char.
func (d *Document) Rule(char byte) *Document {
	d.buf.WriteString(strings.Repeat(string(char), d.width))
	d.buf.WriteByte(LF)
	return d
}

// Pair prints key flush left and value flush right.
func (d *Document) Pair(key, value string) *Document {
	room := d.width - utf8.RuneCountInString(value) - 1
	if room < 1 {
		room = 1
	}
	key = truncate(key, room)
	gap := d.width - utf8.RuneCountInString(key) - utf8.RuneCountInString(value)
	if gap < 1 {
		gap = 1
	}
	d.buf.WriteString(key)
	d.buf.WriteString(strings.Repeat(" ", gap))
	d.buf.WriteString(value)
	d.buf.WriteByte(LF)
	return d
}

// Item prints "2x Frame            450.00".
func (d *Document) Item(qty int, name, amount string) *Document {
	return d.Pair(fmt.Sprintf("%dx %s", qty, name), amount)
}

// Columns prints cells in equal-width right-aligned columns after a
// left-aligned label column. Used for the prescription grid.
func (d *Document) Columns(label string, labelWidth int, cells ...string) *Document {
	if len(cells) == 0 {
		return d.Line(label)
	}
	cell := (d.width - labelWidth) / len(cells)
	if cell < 1 {
		cell = 1
	}
	var b strings.Builder
	b.WriteString(padRight(truncate(label, labelWidth), labelWidth))
	for _, c := range cells {
		b.WriteString(padLeft(truncate(c, cell), cell))
	}
	return d.Line(b.String())
}

// Cut sends a full paper cut after feeding past the tear bar.
func (d *Document) Cut() *Document {
	d.Feed(3)
	d.buf.Write([]byte{GS, 'V', 0x00})
	return d
}

// Bytes returns the accumulated stream.
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func padLeft(s string, n int) string {
	if gap := n - utf8.RuneCountInString(s); gap > 0 {
		return strings.Repeat(" ", gap) + s
	}
	return s
}

func padRight(s string, n int) string {
	if gap := n - utf8.RuneCountInString(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
