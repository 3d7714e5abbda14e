// Package textnorm applies optional Unicode normalization to input text.
package textnorm

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Form selects a normalization applied before tokenizing.
type Form uint8

const (
	// FormNone leaves text untouched.
	FormNone Form = iota
	// FormNFC composes characters (é as one code point rather than e + U+0301).
	FormNFC
	// FormNFKC also folds compatibility characters (full-width letters, ligatures).
	FormNFKC
)

// String returns the string representation of Form.
func (f Form) String() string {
	switch f {
	case FormNone:
		return "none"
	case FormNFC:
		return "nfc"
	case FormNFKC:
		return "nfkc"
	default:
		return "unknown"
	}
}

// ParseForm converts a string to Form.
func ParseForm(s string) (Form, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "off":
		return FormNone, nil
	case "nfc":
		return FormNFC, nil
	case "nfkc":
		return FormNFKC, nil
	default:
		return FormNone, fmt.Errorf("invalid normalization form: %q (expected: none|nfc|nfkc)", s)
	}
}

// Apply normalizes text according to f.
func (f Form) Apply(text string) string {
	switch f {
	case FormNFC:
		return norm.NFC.String(text)
	case FormNFKC:
		return norm.NFKC.String(text)
	default:
		return text
	}
}
