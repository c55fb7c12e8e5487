package usecase

import (
	"testing"
	"time"

	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mappingItem(consolidated, source string, invoiceType entity.InvoiceType, total float64) entity.LineItem {
	return entity.LineItem{
		SourceInvoiceID:       source,
		ConsolidatedInvoiceID: consolidated,
		Type:                  invoiceType,
		InvoiceMonth:          entity.Period{Year: 2024, Month: time.January},
		TotalCost:             decimal.NewFromFloat(total),
	}
}

func TestReconcileGroupsPortalInvoices(t *testing.T) {
	items := []entity.LineItem{
		mappingItem("9001", "1001", entity.InvoiceTypeRecurring, 60),
		mappingItem("9001", "1001", entity.InvoiceTypeRecurring, 40),
		mappingItem("9001", "1002", entity.InvoiceTypeRecurring, 25),
		mappingItem("9002", "1003", entity.InvoiceTypeNew, 10),
	}
	reported := map[string]decimal.Decimal{
		"9001": decimal.NewFromInt(125),
		"9002": decimal.NewFromInt(10),
	}

	rows, anomalies := Reconcile(items, reported)

	assert.Empty(t, anomalies)
	require.Len(t, rows, 3)

	// One row per (consolidated, portal) pair, deterministically ordered,
	// with the portal invoice's line items netted.
	assert.Equal(t, "1001", rows[0].SourceInvoiceID)
	assert.True(t, rows[0].NetTotal.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "1002", rows[1].SourceInvoiceID)
	assert.True(t, rows[1].NetTotal.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, "9002", rows[2].ConsolidatedInvoiceID)
	for _, row := range rows {
		assert.False(t, row.Anomalous)
	}
}

func TestReconcileFlagsDivergenceBeyondTolerance(t *testing.T) {
	items := []entity.LineItem{
		mappingItem("9001", "1001", entity.InvoiceTypeRecurring, 100),
	}
	reported := map[string]decimal.Decimal{
		"9001": decimal.NewFromFloat(100.02),
	}

	rows, anomalies := Reconcile(items, reported)

	require.Len(t, anomalies, 1)
	anomaly := anomalies[0]
	assert.Equal(t, "9001", anomaly.ConsolidatedInvoiceID)
	assert.True(t, anomaly.ReportedTotal.Equal(decimal.NewFromFloat(100.02)))
	assert.True(t, anomaly.MemberSum.Equal(decimal.NewFromInt(100)))
	assert.True(t, anomaly.Difference.Equal(decimal.NewFromFloat(-0.02)))

	require.Len(t, rows, 1)
	assert.True(t, rows[0].Anomalous)
}

func TestReconcileToleratesRoundingNoise(t *testing.T) {
	items := []entity.LineItem{
		mappingItem("9001", "1001", entity.InvoiceTypeRecurring, 100),
	}
	// Exactly at tolerance is not an anomaly.
	reported := map[string]decimal.Decimal{
		"9001": decimal.NewFromFloat(100.01),
	}

	rows, anomalies := Reconcile(items, reported)
	assert.Empty(t, anomalies)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Anomalous)
}

func TestReconcileExemptsUsageItems(t *testing.T) {
	usage := mappingItem("CFTS-2024-02", "USAGE-2024-01", entity.InvoiceTypeUsage, 75)
	classic := mappingItem("9001", "1001", entity.InvoiceTypeRecurring, 50)

	rows, anomalies := Reconcile([]entity.LineItem{usage, classic}, map[string]decimal.Decimal{
		"9001": decimal.NewFromInt(50),
	})

	assert.Empty(t, anomalies)
	require.Len(t, rows, 1)
	assert.Equal(t, "1001", rows[0].SourceInvoiceID)
}

func TestBuildTopSheets(t *testing.T) {
	january := entity.Period{Year: 2024, Month: time.January}
	mapping := []entity.InvoiceMappingRow{
		{ConsolidatedInvoiceID: "9001", InvoiceMonth: january, SourceInvoiceID: "1002", Type: entity.InvoiceTypeNew, NetTotal: decimal.NewFromInt(20)},
		{ConsolidatedInvoiceID: "9001", InvoiceMonth: january, SourceInvoiceID: "1001", Type: entity.InvoiceTypeRecurring, NetTotal: decimal.NewFromInt(100)},
		{ConsolidatedInvoiceID: "9001", InvoiceMonth: january, SourceInvoiceID: "1003", Type: entity.InvoiceTypeCredit, NetTotal: decimal.NewFromInt(-10)},
	}

	sheets := BuildTopSheets(mapping)
	require.Contains(t, sheets, january)
	sheet := sheets[january]

	// Recurring, New, Credit sections, each closed by a subtotal, then the
	// payable total.
	require.Len(t, sheet, 7)
	assert.Equal(t, "Recurring Charges", sheet[0].Description)
	assert.Equal(t, "1001", sheet[0].SourceInvoiceID)
	assert.True(t, sheet[1].Subtotal)
	assert.True(t, sheet[1].Amount.Equal(decimal.NewFromInt(100)))

	assert.Equal(t, "New Charges", sheet[2].Description)
	assert.True(t, sheet[3].Subtotal)

	assert.Equal(t, "Credit", sheet[4].Description)
	assert.True(t, sheet[5].Subtotal)
	assert.True(t, sheet[5].Amount.Equal(decimal.NewFromInt(-10)))

	last := sheet[6]
	assert.Equal(t, "Pay this Amount", last.Description)
	assert.True(t, last.Subtotal)
	assert.True(t, last.Amount.Equal(decimal.NewFromInt(110)))
}

func TestBuildTopSheetsMarksAnomalousRows(t *testing.T) {
	january := entity.Period{Year: 2024, Month: time.January}
	mapping := []entity.InvoiceMappingRow{
		{ConsolidatedInvoiceID: "9001", InvoiceMonth: january, SourceInvoiceID: "1001", Type: entity.InvoiceTypeRecurring, NetTotal: decimal.NewFromInt(100), Anomalous: true},
	}

	sheet := BuildTopSheets(mapping)[january]
	require.NotEmpty(t, sheet)
	assert.Equal(t, "Recurring Charges (reconciliation mismatch)", sheet[0].Description)
}
