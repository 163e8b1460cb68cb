package inventory

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var upper = cases.Upper(language.Und)

// NormalizeBatchNumber deja el número de lote en forma canónica (NFKC, mayúsculas,
// espacios colapsados) para que "lt-001", "LT-001 " y "ＬＴ-001" sean el mismo lote.
func NormalizeBatchNumber(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	return upper.String(s)
}
