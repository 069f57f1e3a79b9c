package font

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/unicode/norm"
)

// byteTable maps single-byte codes to runes. Zero marks an undefined code,
// which decodes to nothing.
type byteTable [256]rune

func (t *byteTable) decode(raw []byte) string {
	var sb strings.Builder
	sb.Grow(len(raw))
	for _, b := range raw {
		if r := t[b]; r != 0 {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func newTable(from, to int, overrides map[byte]rune) *byteTable {
	var t byteTable
	for c := from; c <= to; c++ {
		t[c] = rune(c)
	}
	for b, r := range overrides {
		t[b] = r
	}
	return &t
}

// standardEncoding is the Adobe standard Latin text encoding: printable
// ASCII with typographic quotes plus a sparse upper half.
var standardEncoding = newTable(0x20, 0x7e, map[byte]rune{
	0x27: '’', 0x60: '‘',
	0xa1: '¡', 0xa2: '¢', 0xa3: '£', 0xa4: '⁄', 0xa5: '¥', 0xa6: 'ƒ', 0xa7: '§',
	0xa8: '¤', 0xa9: '\'', 0xaa: '“', 0xab: '«', 0xac: '‹', 0xad: '›',
	0xae: 'ﬁ', 0xaf: 'ﬂ',
	0xb1: '–', 0xb2: '†', 0xb3: '‡', 0xb4: '·', 0xb6: '¶', 0xb7: '•',
	0xb8: '‚', 0xb9: '„', 0xba: '”', 0xbb: '»', 0xbc: '…', 0xbd: '‰',
	0xbf: '¿',
	0xc1: '`', 0xc2: '´', 0xc3: 'ˆ', 0xc4: '˜', 0xc5: '¯', 0xc6: '˘', 0xc7: '˙',
	0xc8: '¨', 0xca: '˚', 0xcb: '¸', 0xcd: '˝', 0xce: '˛', 0xcf: 'ˇ',
	0xd0: '—',
	0xe1: 'Æ', 0xe3: 'ª', 0xe8: 'Ł', 0xe9: 'Ø', 0xea: 'Œ', 0xeb: 'º',
	0xf1: 'æ', 0xf5: 'ı', 0xf8: 'ł', 0xf9: 'ø', 0xfa: 'œ', 0xfb: 'ß',
})

// pdfDocEncoding is Latin-1 with the 0x18-0x1f and 0x80-0xa0 ranges
// replaced by accents and punctuation.
var pdfDocEncoding = newTable(0x00, 0xff, map[byte]rune{
	0x18: '˘', 0x19: 'ˇ', 0x1a: 'ˆ', 0x1b: '˙',
	0x1c: '˝', 0x1d: '˛', 0x1e: '˚', 0x1f: '˜',
	0x7f: 0,
	0x80: '•', 0x81: '†', 0x82: '‡', 0x83: '…', 0x84: '—', 0x85: '–',
	0x86: 'ƒ', 0x87: '⁄', 0x88: '‹', 0x89: '›', 0x8a: '−', 0x8b: '‰',
	0x8c: '„', 0x8d: '“', 0x8e: '”', 0x8f: '‘', 0x90: '’', 0x91: '‚',
	0x92: '™', 0x93: 'ﬁ', 0x94: 'ﬂ', 0x95: 'Ł', 0x96: 'Œ', 0x97: 'Š',
	0x98: 'Ÿ', 0x99: 'Ž', 0x9a: 'ı', 0x9b: 'ł', 0x9c: 'œ', 0x9d: 'š', 0x9e: 'ž', 0x9f: 0,
	0xa0: '€', 0xad: 0,
})

var utf16be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// Decode converts raw string bytes to text under an encoding identifier.
// A nil encoding means no font has been selected.
func Decode(enc *string, raw []byte) string {
	return norm.NFC.String(decode(enc, raw))
}

func decode(enc *string, raw []byte) string {
	if enc == nil {
		return strings.ToValidUTF8(string(raw), "�")
	}
	if isTwoByte(*enc) {
		return viaCodec(utf16be, raw)
	}
	if len(raw) >= 2 && raw[0] == 0xfe && raw[1] == 0xff {
		return viaCodec(utf16be, raw[2:])
	}

	switch *enc {
	case "WinAnsiEncoding":
		return viaCodec(charmap.Windows1252, raw)
	case "MacRomanEncoding":
		return viaCodec(charmap.Macintosh, raw)
	case "StandardEncoding":
		return standardEncoding.decode(raw)
	case "PDFDocEncoding":
		return pdfDocEncoding.decode(raw)
	}
	return strings.ToValidUTF8(string(raw), "�")
}

// isTwoByte reports whether an encoding identifier names a CMap whose codes
// are UTF-16BE units.
func isTwoByte(enc string) bool {
	switch enc {
	case "Identity-H", "Identity-V":
		return true
	}
	return strings.HasPrefix(enc, "Uni") && (strings.Contains(enc, "UCS2") || strings.Contains(enc, "UTF16"))
}

func viaCodec(e encoding.Encoding, raw []byte) string {
	out, err := e.NewDecoder().Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), "�")
	}
	return string(out)
}
