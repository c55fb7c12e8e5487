package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportTabsOmitsAbsentViews(t *testing.T) {
	month := Period{Year: 2024, Month: time.February}
	report := &Report{
		Periods: []Period{month},
		Detail: []LineItem{{
			SourceInvoiceID:       "1001",
			ConsolidatedInvoiceID: "9001",
			Type:                  InvoiceTypeRecurring,
			InvoiceMonth:          month,
			UsageMonth:            month,
			Category:              "Compute",
			Quantity:              decimal.NewFromInt(1),
			TotalCost:             decimal.NewFromInt(50),
		}},
		InvoiceSummary: []InvoiceSummaryRow{{
			InvoiceMonth: month,
			Category:     "Compute",
			Class:        ClassRecurring,
			TotalCost:    decimal.NewFromInt(50),
		}},
	}

	tabs := report.Tabs()
	names := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		names = append(names, tab.Name)
	}

	// Only the populated views materialize; no empty pivot or PaaS tabs.
	assert.Equal(t, []string{"Detail", "InvoiceSummary"}, names)
}

func TestReportTabsOrderAndContent(t *testing.T) {
	month := Period{Year: 2024, Month: time.February}
	cost := decimal.NewFromFloat(12.345)

	report := &Report{
		Periods: []Period{month},
		Detail: []LineItem{{
			SourceInvoiceID:       "1001",
			ConsolidatedInvoiceID: "9001",
			Type:                  InvoiceTypeRecurring,
			InvoiceMonth:          month,
			UsageMonth:            month,
			Category:              "Compute",
			SubCategory:           "Virtual Server - Hourly",
			ResourceKind:          KindHourlyVSI,
			Quantity:              decimal.NewFromInt(100),
			TotalCost:             cost,
		}},
		TopSheets: map[Period][]TopSheetRow{
			month: {
				{Type: InvoiceTypeRecurring, SourceInvoiceID: "1001", Description: "Recurring Charges", Amount: cost},
				{Description: "Pay this Amount", Amount: cost, Subtotal: true},
			},
		},
		ResourcePivots: map[ResourceKind][]ResourcePivotRow{
			KindHourlyVSI: {{
				ResourceKind: KindHourlyVSI,
				InvoiceMonth: month,
				Items:        1,
				Quantity:     decimal.NewFromInt(100),
				TotalCost:    cost,
			}},
		},
		PaaSSummary: []PaaSSummaryRow{{
			ServiceName: "DB-as-a-Service",
			Month:       month,
			TotalCost:   cost,
		}},
	}

	tabs := report.Tabs()
	names := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		names = append(names, tab.Name)
	}
	assert.Equal(t, []string{"Detail", "TopSheet-2024-02", "HrlyVirtualServerPivot", "PaaS_Summary"}, names)

	// Money renders with two decimal places everywhere.
	pivot := tabs[2]
	require.Len(t, pivot.Rows, 1)
	assert.Equal(t, []string{"2024-02", "1", "100", "12.35"}, pivot.Rows[0])

	topSheet := tabs[1]
	require.Len(t, topSheet.Rows, 2)
	assert.Equal(t, "Pay this Amount", topSheet.Rows[1][3])
}
