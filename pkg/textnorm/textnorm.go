// Package textnorm normaliza nombres de sectores y unidades para búsquedas
// insensibles a mayúsculas y acentos ("Eletrônicos" == "eletronicos").
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// Fold quita diacríticos, pliega mayúsculas y colapsa espacios.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(folder.String(out)), " ")
}

// Equal compara dos nombres tras Fold.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}
