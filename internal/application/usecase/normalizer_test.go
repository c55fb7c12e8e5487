package usecase

import (
	"testing"
	"time"

	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/domain/entity"
	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/shared/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classicRecord(raw entity.RawClassicItem) entity.RawRecord {
	return entity.RawRecord{Classic: &raw}
}

func usageRecord(raw entity.RawUsageItem) entity.RawRecord {
	return entity.RawRecord{Usage: &raw}
}

func TestNormalizeClassicRecurring(t *testing.T) {
	invoiceDate := time.Date(2024, time.February, 1, 10, 0, 0, 0, entity.CentralTime())

	result := Normalize([]entity.RawRecord{
		classicRecord(entity.RawClassicItem{
			InvoiceID:       "1001",
			InvoiceTypeCode: "RECURRING",
			InvoiceDate:     invoiceDate,
			InvoiceTotal:    decimal.NewFromInt(100),
			CategoryCode:    "guest_core",
			CategoryName:    "Computing Instance",
			HostName:        "web01.example.com",
			RecurringCharge: decimal.NewFromInt(100),
		}),
	})

	require.Empty(t, result.Skipped)
	require.Len(t, result.Items, 1)

	item := result.Items[0]
	assert.Equal(t, "1001", item.SourceInvoiceID)
	// No consolidated parent on the raw record: the invoice is its own group.
	assert.Equal(t, "1001", item.ConsolidatedInvoiceID)
	assert.Equal(t, entity.InvoiceTypeRecurring, item.Type)
	assert.Equal(t, entity.Period{Year: 2024, Month: time.February}, item.InvoiceMonth)
	assert.Equal(t, item.InvoiceMonth, item.UsageMonth)
	assert.Equal(t, "Compute", item.Category)
	assert.Equal(t, "Virtual Server - Monthly", item.SubCategory)
	assert.Equal(t, entity.KindMonthlyVSI, item.ResourceKind)
	assert.True(t, item.TotalCost.Equal(decimal.NewFromInt(100)))
}

func TestNormalizeClassicAfterCutoffBillsNextMonth(t *testing.T) {
	invoiceDate := time.Date(2024, time.January, 25, 10, 0, 0, 0, entity.CentralTime())

	result := Normalize([]entity.RawRecord{
		classicRecord(entity.RawClassicItem{
			InvoiceID:       "1002",
			InvoiceTypeCode: "RECURRING",
			InvoiceDate:     invoiceDate,
			InvoiceTotal:    decimal.NewFromInt(10),
			RecurringCharge: decimal.NewFromInt(10),
		}),
	})

	require.Len(t, result.Items, 1)
	assert.Equal(t, entity.Period{Year: 2024, Month: time.February}, result.Items[0].InvoiceMonth)
}

func TestNormalizeClassicHourlyUsesPreviousUsageMonth(t *testing.T) {
	invoiceDate := time.Date(2024, time.March, 1, 0, 0, 0, 0, entity.CentralTime())

	result := Normalize([]entity.RawRecord{
		classicRecord(entity.RawClassicItem{
			InvoiceID:       "1003",
			InvoiceTypeCode: "RECURRING",
			InvoiceDate:     invoiceDate,
			InvoiceTotal:    decimal.NewFromInt(72),
			CategoryName:    "Computing Instance",
			HourlyFlag:      true,
			HourlyRate:      decimal.NewFromFloat(0.10),
			Hours:           decimal.NewFromInt(720),
			RecurringCharge: decimal.NewFromInt(72),
		}),
	})

	require.Len(t, result.Items, 1)
	item := result.Items[0]
	assert.Equal(t, entity.Period{Year: 2024, Month: time.March}, item.InvoiceMonth)
	assert.Equal(t, entity.Period{Year: 2024, Month: time.February}, item.UsageMonth)
	assert.Equal(t, entity.KindHourlyVSI, item.ResourceKind)
	assert.True(t, item.Quantity.Equal(decimal.NewFromInt(720)))
	assert.True(t, item.UnitCost.Equal(decimal.NewFromFloat(0.10)))
}

func TestNormalizeCreditFlowsNegative(t *testing.T) {
	invoiceDate := time.Date(2024, time.February, 5, 0, 0, 0, 0, entity.CentralTime())

	result := Normalize([]entity.RawRecord{
		classicRecord(entity.RawClassicItem{
			InvoiceID:       "1004",
			InvoiceTypeCode: "CREDIT",
			InvoiceDate:     invoiceDate,
			InvoiceTotal:    decimal.NewFromInt(-10),
			Description:     "Service credit",
			OneTimeCharge:   decimal.NewFromInt(10),
		}),
	})

	require.Len(t, result.Items, 1)
	item := result.Items[0]
	assert.Equal(t, entity.InvoiceTypeCredit, item.Type)
	assert.True(t, item.TotalCost.IsNegative(), "credit cost must be negative, got %s", item.TotalCost)
	assert.True(t, item.Quantity.IsNegative(), "credit quantity must be negative, got %s", item.Quantity)
}

func TestNormalizeOneTimeChargeMapsToNew(t *testing.T) {
	invoiceDate := time.Date(2024, time.February, 5, 0, 0, 0, 0, entity.CentralTime())

	result := Normalize([]entity.RawRecord{
		classicRecord(entity.RawClassicItem{
			InvoiceID:       "1005",
			InvoiceTypeCode: "ONE-TIME-CHARGE",
			InvoiceDate:     invoiceDate,
			InvoiceTotal:    decimal.NewFromInt(25),
			OneTimeCharge:   decimal.NewFromInt(25),
		}),
	})

	require.Len(t, result.Items, 1)
	assert.Equal(t, entity.InvoiceTypeNew, result.Items[0].Type)
}

func TestNormalizeSkipsUnknownRecords(t *testing.T) {
	invoiceDate := time.Date(2024, time.February, 5, 0, 0, 0, 0, entity.CentralTime())

	result := Normalize([]entity.RawRecord{
		classicRecord(entity.RawClassicItem{
			InvoiceID:       "1006",
			InvoiceTypeCode: "MYSTERY",
			InvoiceDate:     invoiceDate,
		}),
		{}, // neither variant set
		classicRecord(entity.RawClassicItem{
			InvoiceID:       "1007",
			InvoiceTypeCode: "RECURRING",
			InvoiceDate:     invoiceDate,
			InvoiceTotal:    decimal.NewFromInt(5),
			RecurringCharge: decimal.NewFromInt(5),
		}),
	})

	// Bad records are skipped and reported, the good one survives.
	require.Len(t, result.Items, 1)
	assert.Equal(t, "1007", result.Items[0].SourceInvoiceID)
	require.Len(t, result.Skipped, 2)
	for _, err := range result.Skipped {
		assert.ErrorIs(t, err, types.ErrUnrecognizedRecord)
	}
}

func TestNormalizeReportedTotalsCountEachInvoiceOnce(t *testing.T) {
	invoiceDate := time.Date(2024, time.February, 5, 0, 0, 0, 0, entity.CentralTime())
	base := entity.RawClassicItem{
		InvoiceID:             "1008",
		ConsolidatedInvoiceID: "9001",
		InvoiceTypeCode:       "RECURRING",
		InvoiceDate:           invoiceDate,
		InvoiceTotal:          decimal.NewFromInt(30),
	}

	first := base
	first.RecurringCharge = decimal.NewFromInt(10)
	second := base
	second.RecurringCharge = decimal.NewFromInt(20)

	result := Normalize([]entity.RawRecord{classicRecord(first), classicRecord(second)})

	require.Len(t, result.Items, 2)
	// Two line items of the same portal invoice contribute its total once.
	require.Contains(t, result.ReportedTotals, "9001")
	assert.True(t, result.ReportedTotals["9001"].Equal(decimal.NewFromInt(30)))
}

func TestNormalizeUsage(t *testing.T) {
	result := Normalize([]entity.RawRecord{
		usageRecord(entity.RawUsageItem{
			AccountID:   "acc-1",
			ServiceName: "DB-as-a-Service",
			PlanName:    "standard",
			Metric:      "GIGABYTE_HOURS",
			Unit:        "GB-h",
			UsageMonth:  entity.Period{Year: 2024, Month: time.January},
			Quantity:    decimal.NewFromInt(500),
			Cost:        decimal.NewFromInt(75),
		}),
	})

	require.Empty(t, result.Skipped)
	require.Len(t, result.Items, 1)

	item := result.Items[0]
	assert.Equal(t, entity.InvoiceTypeUsage, item.Type)
	// January consumption settles on the February consolidated invoice.
	assert.Equal(t, entity.Period{Year: 2024, Month: time.January}, item.UsageMonth)
	assert.Equal(t, entity.Period{Year: 2024, Month: time.February}, item.InvoiceMonth)
	assert.Equal(t, "USAGE-2024-01", item.SourceInvoiceID)
	assert.Equal(t, "CFTS-2024-02", item.ConsolidatedInvoiceID)
	assert.Equal(t, entity.KindPaaS, item.ResourceKind)
	assert.Equal(t, "DB-as-a-Service", item.ServiceName)
	assert.True(t, item.UnitCost.Equal(decimal.NewFromFloat(0.15)))

	// Usage carries no portal invoice total.
	assert.Empty(t, result.ReportedTotals)
}
