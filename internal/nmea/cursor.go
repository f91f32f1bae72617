package nmea

import "bytes"

// fieldCursor walks the comma separated fields of one sentence. pos always
// points at the leading comma of the current field (or at the '$' before the
// first advance).
type fieldCursor struct {
	buf []byte
	pos int
}

func newFieldCursor(buf []byte) *fieldCursor {
	return &fieldCursor{buf: buf}
}

// advance moves to the next field. It reports false, leaving the cursor in
// place, when the sentence has no further field boundary.
func (c *fieldCursor) advance() bool {
	if c.pos+1 >= len(c.buf) {
		return false
	}
	i := bytes.IndexByte(c.buf[c.pos+1:], ',')
	if i < 0 {
		return false
	}
	c.pos += i + 1
	return true
}

// next advances to a mandatory field.
func (c *fieldCursor) next(name string) error {
	if !c.advance() {
		return badData("%s: missing field", name)
	}
	return nil
}

func isFieldEnd(b byte) bool {
	switch b {
	case ',', '*', '\r', '\n', 0:
		return true
	}
	return false
}

// field returns the bytes of the current field, excluding its separators.
func (c *fieldCursor) field() []byte {
	start := c.pos + 1
	if start > len(c.buf) {
		return nil
	}
	end := start
	for end < len(c.buf) && !isFieldEnd(c.buf[end]) {
		end++
	}
	return c.buf[start:end]
}

func (c *fieldCursor) empty() bool {
	return len(c.field()) == 0
}

// first returns the first character of the current field, or 0 when empty.
func (c *fieldCursor) first() byte {
	f := c.field()
	if len(f) == 0 {
		return 0
	}
	return f[0]
}
