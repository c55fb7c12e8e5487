package usecase

import (
	"testing"
	"time"

	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/domain/entity"
	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestResolvePeriodsExplicitRange(t *testing.T) {
	now := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

	periods, err := ResolvePeriods("2024-01", "2024-03", nil, now)
	require.NoError(t, err)
	assert.Equal(t, []entity.Period{
		{Year: 2024, Month: time.January},
		{Year: 2024, Month: time.February},
		{Year: 2024, Month: time.March},
	}, periods)

	// A single-month range is a range of one.
	periods, err = ResolvePeriods("2024-03", "2024-03", nil, now)
	require.NoError(t, err)
	assert.Len(t, periods, 1)
}

func TestResolvePeriodsTrailingEndsAtLastCompletedMonth(t *testing.T) {
	// Mid-June: the trailing window must stop at May, never include the
	// in-progress month.
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, entity.CentralTime())

	periods, err := ResolvePeriods("", "", intPtr(3), now)
	require.NoError(t, err)
	assert.Equal(t, []entity.Period{
		{Year: 2024, Month: time.March},
		{Year: 2024, Month: time.April},
		{Year: 2024, Month: time.May},
	}, periods)
}

func TestResolvePeriodsTrailingCrossesYearBoundary(t *testing.T) {
	now := time.Date(2024, time.February, 1, 12, 0, 0, 0, entity.CentralTime())

	periods, err := ResolvePeriods("", "", intPtr(3), now)
	require.NoError(t, err)
	assert.Equal(t, []entity.Period{
		{Year: 2023, Month: time.November},
		{Year: 2023, Month: time.December},
		{Year: 2024, Month: time.January},
	}, periods)
}

func TestResolvePeriodsModeErrors(t *testing.T) {
	now := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

	_, err := ResolvePeriods("2024-01", "2024-03", intPtr(2), now)
	assert.ErrorIs(t, err, types.ErrMonthModeConflict)

	_, err = ResolvePeriods("", "", nil, now)
	assert.ErrorIs(t, err, types.ErrMonthModeMissing)

	// Half an explicit pair is not a mode.
	_, err = ResolvePeriods("2024-01", "", nil, now)
	assert.ErrorIs(t, err, types.ErrMonthModeMissing)

	_, err = ResolvePeriods("", "", intPtr(0), now)
	assert.ErrorIs(t, err, types.ErrMonthRangeInvalid)

	_, err = ResolvePeriods("2024-05", "2024-01", nil, now)
	assert.ErrorIs(t, err, types.ErrMonthRangeInvalid)

	_, err = ResolvePeriods("2024-1", "2024-03", nil, now)
	assert.Error(t, err)
}
