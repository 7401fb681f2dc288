package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const defaultVersion = "A"

var piecePrefixes = map[string]string{
	"COMMERCE": "C",
	"ELEC":     "E",
	"PIECE_3D": "D",
	"CABLE_SM": "F",
	"TOLERIE":  "P",
	"OUTIL":    "O",
}

// ReferenceScheme describes how references of one family are built.
type ReferenceScheme struct {
	Prefix         string
	IncludeVersion bool
}

// SchemeFor returns the reference scheme of an item. Pieces are keyed by
// their type; other kinds have a fixed prefix.
func SchemeFor(kind Kind, pieceType string) (ReferenceScheme, bool) {
	switch kind {
	case KindSousAssemblage:
		return ReferenceScheme{Prefix: "SA"}, true
	case KindSousSousAssemblage:
		return ReferenceScheme{Prefix: "SSA"}, true
	case KindKit:
		return ReferenceScheme{Prefix: "K", IncludeVersion: true}, true
	case KindPiece:
		prefix, ok := piecePrefixes[strings.ToUpper(pieceType)]
		if !ok {
			return ReferenceScheme{}, false
		}
		return ReferenceScheme{Prefix: prefix, IncludeVersion: prefix != "P"}, true
	}
	return ReferenceScheme{}, false
}

// Next returns the next numero and reference after the existing references of
// the same family. The numero is one past the highest numeric run following
// the prefix, zero padded to at least three digits.
func (s ReferenceScheme) Next(existing []string, version string) (numero, reference string) {
	maxNum, width := 0, 3
	for _, ref := range existing {
		if !strings.HasPrefix(ref, s.Prefix) {
			continue
		}
		digits := leadingDigits(ref[len(s.Prefix):])
		if digits == "" {
			continue
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			continue
		}
		if n > maxNum {
			maxNum = n
			if len(digits) > width {
				width = len(digits)
			}
		}
	}

	numero = fmt.Sprintf("%0*d", width, maxNum+1)
	reference = s.Prefix + numero
	if s.IncludeVersion {
		if version == "" {
			version = defaultVersion
		}
		reference += version
	}
	return numero, reference
}

func leadingDigits(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}
