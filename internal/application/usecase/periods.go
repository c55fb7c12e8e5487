package usecase

import (
	"fmt"
	"time"

	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/domain/entity"
	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/shared/types"
)

// ResolvePeriods turns the month inputs into the ordered, inclusive sequence
// of consolidated invoice months to analyze. Exactly one of the explicit
// (start, end) pair or the trailing month count must be supplied. Trailing
// mode ends at the most recently completed calendar month relative to now,
// never the in-progress one.
func ResolvePeriods(startMonth, endMonth string, months *int, now time.Time) ([]entity.Period, error) {
	explicit := startMonth != "" || endMonth != ""

	if explicit && months != nil {
		return nil, types.ErrMonthModeConflict
	}

	if months != nil {
		if *months < 1 {
			return nil, fmt.Errorf("trailing month count must be at least 1, got %d: %w", *months, types.ErrMonthRangeInvalid)
		}
		// O mês corrente ainda está em andamento: encerra no mês anterior.
		end := entity.PeriodOf(now.In(entity.CentralTime())).Prev()
		start := end.AddMonths(-(*months - 1))
		return entity.PeriodRange(start, end), nil
	}

	if startMonth == "" || endMonth == "" {
		return nil, types.ErrMonthModeMissing
	}

	start, err := entity.ParsePeriod(startMonth)
	if err != nil {
		return nil, err
	}
	end, err := entity.ParsePeriod(endMonth)
	if err != nil {
		return nil, err
	}
	if start.After(end) {
		return nil, fmt.Errorf("start %s is after end %s: %w", start, end, types.ErrMonthRangeInvalid)
	}

	return entity.PeriodRange(start, end), nil
}
