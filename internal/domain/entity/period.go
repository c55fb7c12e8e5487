package entity

import (
	"fmt"
	"sync"
	"time"
)

// Period is a calendar year-month value, the unit of analysis for the
// invoice pipeline. Periods are comparable with == and usable as map keys.
type Period struct {
	Year  int
	Month time.Month
}

// ParsePeriod parses a period in the "YYYY-MM" format used on the CLI.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("invalid month %q, expected format YYYY-MM: %w", s, err)
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

// PeriodOf returns the Period containing the given instant.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// String formats the period as YYYY-MM.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// IsZero reports whether the period is the zero value.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// AddMonths returns the period n calendar months after p (n may be negative).
func (p Period) AddMonths(n int) Period {
	t := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return Period{Year: t.Year(), Month: t.Month()}
}

// Next returns the following calendar month.
func (p Period) Next() Period { return p.AddMonths(1) }

// Prev returns the preceding calendar month.
func (p Period) Prev() Period { return p.AddMonths(-1) }

// Before reports whether p is strictly earlier than o.
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

// After reports whether p is strictly later than o.
func (p Period) After(o Period) bool { return o.Before(p) }

// PeriodRange returns the ordered, inclusive, contiguous sequence of periods
// from start to end. Callers must ensure start is not after end.
func PeriodRange(start, end Period) []Period {
	periods := []Period{}
	for p := start; !p.After(end); p = p.Next() {
		periods = append(periods, p)
	}
	return periods
}

// MarshalText implements encoding.TextMarshaler so periods serialize as
// YYYY-MM strings, including when used as JSON map keys.
func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Period) UnmarshalText(text []byte) error {
	parsed, err := ParsePeriod(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Consolidated (CFTS) invoices cut over on the 20th, US Central time: portal
// invoices created after day 19 settle on the following month's invoice.
const consolidatedCutoffDay = 19

var (
	centralOnce sync.Once
	centralLoc  *time.Location
)

// CentralTime returns the US Central location used for consolidated invoice
// cutoffs, falling back to a fixed offset if tzdata is unavailable.
func CentralTime() *time.Location {
	centralOnce.Do(func() {
		loc, err := time.LoadLocation("America/Chicago")
		if err != nil {
			loc = time.FixedZone("CST", -6*60*60)
		}
		centralLoc = loc
	})
	return centralLoc
}

// ConsolidatedMonthFor returns the Period of the consolidated invoice a
// portal invoice created at t is billed on.
func ConsolidatedMonthFor(t time.Time) Period {
	local := t.In(CentralTime())
	p := PeriodOf(local)
	if local.Day() > consolidatedCutoffDay {
		p = p.Next()
	}
	return p
}
