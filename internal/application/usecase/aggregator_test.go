package usecase

import (
	"math/rand"
	"testing"
	"time"

	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aggregateFixture() []entity.LineItem {
	january := entity.Period{Year: 2024, Month: time.January}
	february := entity.Period{Year: 2024, Month: time.February}

	return []entity.LineItem{
		{
			SourceInvoiceID: "1001", ConsolidatedInvoiceID: "9001",
			Type: entity.InvoiceTypeRecurring, InvoiceMonth: january, UsageMonth: january,
			Category: "Compute", SubCategory: "Virtual Server - Monthly",
			ResourceKind: entity.KindMonthlyVSI,
			Quantity:     decimal.NewFromInt(1), TotalCost: decimal.NewFromInt(100),
		},
		{
			SourceInvoiceID: "1001", ConsolidatedInvoiceID: "9001",
			Type: entity.InvoiceTypeRecurring, InvoiceMonth: january, UsageMonth: january.Prev(),
			Category: "Compute", SubCategory: "Virtual Server - Hourly",
			ResourceKind: entity.KindHourlyVSI,
			Quantity:     decimal.NewFromInt(720), TotalCost: decimal.NewFromInt(72),
		},
		{
			SourceInvoiceID: "1002", ConsolidatedInvoiceID: "9001",
			Type: entity.InvoiceTypeCredit, InvoiceMonth: january, UsageMonth: january,
			Category: "Compute", SubCategory: "Virtual Server - Monthly",
			ResourceKind: entity.KindMonthlyVSI,
			Quantity:     decimal.NewFromInt(-1), TotalCost: decimal.NewFromInt(-10),
		},
		{
			SourceInvoiceID: "USAGE-2024-01", ConsolidatedInvoiceID: "CFTS-2024-02",
			Type: entity.InvoiceTypeUsage, InvoiceMonth: february, UsageMonth: january,
			Category: "Platform Services", SubCategory: "standard",
			ResourceKind: entity.KindPaaS,
			ServiceName:  "DB-as-a-Service", PlanName: "standard",
			Quantity: decimal.NewFromInt(500), TotalCost: decimal.NewFromInt(75),
		},
		{
			SourceInvoiceID: "USAGE-2024-01", ConsolidatedInvoiceID: "CFTS-2024-02",
			Type: entity.InvoiceTypeUsage, InvoiceMonth: february, UsageMonth: january,
			Category: "Platform Services", SubCategory: "premium",
			ResourceKind: entity.KindPaaS,
			ServiceName:  "DB-as-a-Service", PlanName: "premium",
			Quantity: decimal.NewFromInt(100), TotalCost: decimal.NewFromInt(25),
		},
	}
}

func TestAggregateIsOrderIndependent(t *testing.T) {
	items := aggregateFixture()
	baseline := Aggregate(items, false)

	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 5; trial++ {
		shuffled := make([]entity.LineItem, len(items))
		copy(shuffled, items)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		report := Aggregate(shuffled, false)
		assert.Equal(t, baseline.Detail, report.Detail)
		assert.Equal(t, baseline.InvoiceSummary, report.InvoiceSummary)
		assert.Equal(t, baseline.CategorySummary, report.CategorySummary)
		assert.Equal(t, baseline.ResourcePivots, report.ResourcePivots)
		assert.Equal(t, baseline.PaaSSummary, report.PaaSSummary)
		assert.Equal(t, baseline.PaaSPlanSummary, report.PaaSPlanSummary)
	}
}

func TestAggregateInvoiceSummaryClasses(t *testing.T) {
	january := entity.Period{Year: 2024, Month: time.January}
	report := Aggregate(aggregateFixture(), false)

	require.NotEmpty(t, report.InvoiceSummary)
	byClass := map[entity.ChargeClass]decimal.Decimal{}
	for _, row := range report.InvoiceSummary {
		if row.InvoiceMonth == january && row.Category == "Compute" {
			byClass[row.Class] = row.TotalCost
		}
	}

	// Recurring charges and the credit land in separate buckets; usage items
	// have no charge class and stay out of this view.
	assert.True(t, byClass[entity.ClassRecurring].Equal(decimal.NewFromInt(172)))
	assert.True(t, byClass[entity.ClassAdjustment].Equal(decimal.NewFromInt(-10)))
	for _, row := range report.InvoiceSummary {
		assert.NotEqual(t, "Platform Services", row.Category)
	}
}

func TestAggregateCategorySummaryIsRecurringOnly(t *testing.T) {
	report := Aggregate(aggregateFixture(), false)

	require.Len(t, report.CategorySummary, 2)
	for _, row := range report.CategorySummary {
		assert.Equal(t, "Compute", row.Category)
	}
	// The credit is not recurring and must not net into this view.
	assert.Equal(t, "Virtual Server - Hourly", report.CategorySummary[0].SubCategory)
	assert.True(t, report.CategorySummary[1].TotalCost.Equal(decimal.NewFromInt(100)))
}

func TestAggregatePivotsOmitAbsentKinds(t *testing.T) {
	report := Aggregate(aggregateFixture(), false)

	require.Contains(t, report.ResourcePivots, entity.KindHourlyVSI)
	require.Contains(t, report.ResourcePivots, entity.KindMonthlyVSI)
	assert.NotContains(t, report.ResourcePivots, entity.KindHourlyBareMetal)
	assert.NotContains(t, report.ResourcePivots, entity.KindMonthlyBareMetal)

	hourly := report.ResourcePivots[entity.KindHourlyVSI]
	require.Len(t, hourly, 1)
	assert.Equal(t, 1, hourly[0].Items)
	assert.True(t, hourly[0].Quantity.Equal(decimal.NewFromInt(720)))

	// The monthly pivot nets the credit against the charge.
	monthly := report.ResourcePivots[entity.KindMonthlyVSI]
	require.Len(t, monthly, 1)
	assert.Equal(t, 2, monthly[0].Items)
	assert.True(t, monthly[0].TotalCost.Equal(decimal.NewFromInt(90)))
}

func TestAggregateEmptyViewsStayAbsent(t *testing.T) {
	report := Aggregate(nil, false)

	assert.Empty(t, report.Detail)
	assert.Nil(t, report.InvoiceSummary)
	assert.Nil(t, report.CategorySummary)
	assert.Nil(t, report.ResourcePivots)
	assert.Nil(t, report.PaaSUsage)
	assert.Nil(t, report.PaaSSummary)
	assert.Nil(t, report.PaaSPlanSummary)
}

func TestAggregatePaaSMonthDimension(t *testing.T) {
	january := entity.Period{Year: 2024, Month: time.January}
	february := entity.Period{Year: 2024, Month: time.February}

	byInvoice := Aggregate(aggregateFixture(), false)
	require.Len(t, byInvoice.PaaSSummary, 1)
	assert.Equal(t, february, byInvoice.PaaSSummary[0].Month)
	assert.True(t, byInvoice.PaaSSummary[0].TotalCost.Equal(decimal.NewFromInt(100)))

	byUsage := Aggregate(aggregateFixture(), true)
	require.Len(t, byUsage.PaaSSummary, 1)
	assert.Equal(t, january, byUsage.PaaSSummary[0].Month)

	// Plan summary splits the same service by plan.
	require.Len(t, byInvoice.PaaSPlanSummary, 2)
	assert.Equal(t, "premium", byInvoice.PaaSPlanSummary[0].PlanName)
	assert.Equal(t, "standard", byInvoice.PaaSPlanSummary[1].PlanName)

	require.Len(t, byInvoice.PaaSUsage, 2)
	for _, row := range byInvoice.PaaSUsage {
		assert.Equal(t, "DB-as-a-Service", row.ServiceName)
	}
}
