package printer

import (
	"bytes"
)

// ESC/POS command constants
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// Supported paper widths, in characters per line of the printer's font A.
const (
	Width58mm = 32
	Width80mm = 48
)

// Font size
const (
	FontNormal = 0x00
	FontDouble = 0x11 // Double width + double height
	FontWide   = 0x10 // Double width only
	FontTall   = 0x01 // Double height only
)

// ValidWidth reports whether w is one of the supported paper widths.
func ValidWidth(w int) bool {
	return w == Width58mm || w == Width80mm
}

// Document builds an ESC/POS byte stream for thermal printers.
type Document struct {
	buf bytes.Buffer
}

// NewDocument creates a new ESC/POS document, already initialized.
func NewDocument() *Document {
	d := &Document{}
	d.Init()
	return d
}

// Init sends the ESC @ (initialize printer) command.
func (d *Document) Init() *Document {
	d.buf.Write([]byte{ESC, '@'})
	return d
}

// FeedLines sends n line feeds.
func (d *Document) FeedLines(n int) *Document {
	for i := 0; i < n; i++ {
		d.buf.WriteByte(LF)
	}
	return d
}

// SetAlign sets text alignment.
func (d *Document) SetAlign(align Align) *Document {
	d.buf.Write([]byte{ESC, 'a', byte(align)})
	return d
}

// SetBold enables or disables bold text.
func (d *Document) SetBold(on bool) *Document {
	b := byte(0)
	if on {
		b = 1
	}
	d.buf.Write([]byte{ESC, 'E', b})
	return d
}

// SetFontSize sets the character size. Use FontNormal, FontDouble, FontWide, or FontTall.
func (d *Document) SetFontSize(size byte) *Document {
	d.buf.Write([]byte{GS, '!', size})
	return d
}

// Text writes a line of text followed by a line feed.
func (d *Document) Text(s string) *Document {
	d.buf.WriteString(s)
	d.buf.WriteByte(LF)
	return d
}

// Line writes a laid-out line, switching alignment and emphasis around it
// and restoring the defaults afterwards.
func (d *Document) Line(l Line) *Document {
	if l.Align != AlignLeft {
		d.SetAlign(l.Align)
	}
	if l.Bold {
		d.SetBold(true)
	}
	if l.Double {
		d.SetFontSize(FontDouble)
	}
	d.Text(l.Text)
	if l.Double {
		d.SetFontSize(FontNormal)
	}
	if l.Bold {
		d.SetBold(false)
	}
	if l.Align != AlignLeft {
		d.SetAlign(AlignLeft)
	}
	return d
}

// PartialCut sends the partial cut command.
func (d *Document) PartialCut() *Document {
	d.buf.Write([]byte{GS, 'V', 0x01})
	return d
}

// Bytes returns the accumulated ESC/POS byte stream.
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}
