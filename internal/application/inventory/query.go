package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

// ToPage normaliza la paginación del request al formato de repositorio.
func ToPage(p *dto.PageRequest) repository.Page {
	p.DefaultPage()
	return repository.Page{Limit: p.Limit, Offset: p.Offset()}
}

// ParseDateRange acepta fechas YYYY-MM-DD o RFC3339. Una fecha sin hora en To cubre el día completo.
func ParseDateRange(from, to string) (repository.DateRange, error) {
	var r repository.DateRange
	if from != "" {
		t, _, err := parseDate(from)
		if err != nil {
			return r, domain.NewValidationError("from", "fecha inválida")
		}
		r.From = &t
	}
	if to != "" {
		t, dateOnly, err := parseDate(to)
		if err != nil {
			return r, domain.NewValidationError("to", "fecha inválida")
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		r.To = &t
	}
	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return r, domain.NewValidationError("to", "debe ser posterior a from")
	}
	return r, nil
}

func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	return t, false, err
}

// NewReference genera referencias legibles: <prefix>-<yyyymmdd>-<6 hex>.
func NewReference(prefix string, now time.Time) string {
	return prefix + "-" + now.Format("20060102") + "-" + strings.ToUpper(uuid.New().String()[:6])
}
