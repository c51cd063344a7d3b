// Package oem converts display names to a legacy single-byte code page.
package oem

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// Substitute is written for characters with no best-fit mapping.
const Substitute = '?'

var codePages = map[string]*charmap.Charmap{
	"cp437":  charmap.CodePage437,
	"cp850":  charmap.CodePage850,
	"cp852":  charmap.CodePage852,
	"cp866":  charmap.CodePage866,
	"cp1252": charmap.Windows1252,
}

// typographic maps punctuation commonly missing from OEM pages.
var typographic = map[rune]string{
	'‘': "'", '’': "'", '‚': "'", '‛': "'",
	'′': "'", '‹': "<", '›': ">",
	'“': `"`, '”': `"`, '„': `"`, '‟': `"`,
	'″': `"`, '«': `"`, '»': `"`,
	'‐': "-", '‑': "-", '‒': "-", '–': "-",
	'—': "-", '―': "-", '−': "-",
	'…': "...",
	'\u00a0': " ", '\u2002': " ", '\u2003': " ", '\u2009': " ", '\u202f': " ",
	'•': "*",
}

// Codec encodes text into one code page. It is immutable and safe for
// concurrent use.
type Codec struct {
	name string
	cm   *charmap.Charmap
}

// Default targets CP437, the US OEM page.
var Default = mustNew("cp437")

// CodePages lists the supported code page names.
func CodePages() []string {
	names := make([]string, 0, len(codePages))
	for name := range codePages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New returns a codec for a named code page (cp437, cp850, cp852, cp866, cp1252).
func New(name string) (*Codec, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	cm, ok := codePages[key]
	if !ok {
		return nil, fmt.Errorf("unsupported code page %q (expected one of %s)", name, strings.Join(CodePages(), ", "))
	}
	return &Codec{name: key, cm: cm}, nil
}

func mustNew(name string) *Codec {
	c, err := New(name)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the code page name.
func (c *Codec) Name() string {
	return c.name
}

// Encode converts s. Invalid UTF-8 sequences become Substitute.
func (c *Codec) Encode(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			out = append(out, Substitute)
		} else {
			out = c.appendRune(out, r)
		}
		i += size
	}
	return out
}

// EncodeUTF16 converts UTF-16 code units. Unpaired surrogates become Substitute.
func (c *Codec) EncodeUTF16(u []uint16) []byte {
	out := make([]byte, 0, len(u))
	for i := 0; i < len(u); i++ {
		r := rune(u[i])
		switch {
		case utf16.IsSurrogate(r):
			if i+1 < len(u) {
				if pair := utf16.DecodeRune(r, rune(u[i+1])); pair != unicode.ReplacementChar {
					out = c.appendRune(out, pair)
					i++
					continue
				}
			}
			out = append(out, Substitute)
		default:
			out = c.appendRune(out, r)
		}
	}
	return out
}

func (c *Codec) appendRune(out []byte, r rune) []byte {
	if b, ok := c.cm.EncodeRune(r); ok {
		return append(out, b)
	}
	if repl, ok := typographic[r]; ok {
		return append(out, repl...)
	}
	if fit, ok := c.decompose(r); ok {
		return append(out, fit...)
	}
	return append(out, Substitute)
}

// decompose applies compatibility decomposition, keeping mappable base
// characters and dropping combining marks.
func (c *Codec) decompose(r rune) ([]byte, bool) {
	d := norm.NFKD.String(string(r))
	if d == string(r) {
		return nil, false
	}
	var fit []byte
	for _, dr := range d {
		if unicode.Is(unicode.Mn, dr) {
			continue
		}
		b, ok := c.cm.EncodeRune(dr)
		if !ok {
			return nil, false
		}
		fit = append(fit, b)
	}
	return fit, len(fit) > 0
}

// WStringToOEM converts s with the Default codec. It never fails.
func WStringToOEM(s string) []byte {
	return Default.Encode(s)
}

// UTF16ToOEM converts native wide characters with the Default codec.
func UTF16ToOEM(u []uint16) []byte {
	return Default.EncodeUTF16(u)
}
