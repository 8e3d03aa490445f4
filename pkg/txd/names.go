package txd

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding"
)

// decodeName converts a NUL-padded name field to a string. Without a charmap
// bytes outside printable ASCII are dropped.
func decodeName(field []byte, o *options) string {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}

	if o.names != nil {
		if s, err := o.names.NewDecoder().Bytes(field); err == nil {
			return strings.TrimRight(string(s), " ")
		}
	}

	out := make([]byte, 0, len(field))
	for _, c := range field {
		if c >= 0x20 && c < 0x7F {
			out = append(out, c)
		}
	}
	return strings.TrimRight(string(out), " ")
}

// encodeName fills a NUL-padded name field. Names are cut to NameSize-1
// bytes so the field always ends in a NUL.
func encodeName(dst *[NameSize]byte, name string, o *options) {
	var raw []byte
	if o.names != nil {
		enc := encoding.ReplaceUnsupported(o.names.NewEncoder())
		if b, err := enc.Bytes([]byte(name)); err == nil {
			raw = b
		}
	}
	if raw == nil {
		raw = make([]byte, 0, len(name))
		for i := 0; i < len(name); i++ {
			if c := name[i]; c >= 0x20 && c < 0x7F {
				raw = append(raw, c)
			}
		}
	}

	*dst = [NameSize]byte{}
	copy(dst[:NameSize-1], raw)
}

// validName reports whether name survives encodeName unchanged.
func validName(name string, o *options) bool {
	if name == "" {
		return false
	}
	if o.names != nil {
		b, err := o.names.NewEncoder().Bytes([]byte(name))
		return err == nil && len(b) <= NameSize-1 && bytes.IndexByte(b, 0) < 0
	}
	if len(name) > NameSize-1 {
		return false
	}
	for i := 0; i < len(name); i++ {
		if c := name[i]; c < 0x20 || c >= 0x7F {
			return false
		}
	}
	return true
}
