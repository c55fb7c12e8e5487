package usecase

import (
	"sort"

	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// reconciliationTolerance is the divergence allowed between a consolidated
// invoice's member sum and its reported total, in currency units.
var reconciliationTolerance = decimal.NewFromFloat(0.01)

// Reconcile groups portal invoices under the consolidated invoice they are
// billed on and checks each consolidated invoice's member sum against its
// reported total. Divergences beyond tolerance are surfaced as anomaly
// records and flagged rows, never as errors. Platform usage items carry no
// reported invoice total and are exempt.
func Reconcile(items []entity.LineItem, reportedTotals map[string]decimal.Decimal) ([]entity.InvoiceMappingRow, []entity.ReconciliationAnomaly) {
	type pairKey struct {
		consolidated string
		source       string
	}

	rowsByPair := map[pairKey]*entity.InvoiceMappingRow{}
	memberSums := map[string]decimal.Decimal{}

	for _, item := range items {
		if item.Type == entity.InvoiceTypeUsage {
			continue
		}

		key := pairKey{consolidated: item.ConsolidatedInvoiceID, source: item.SourceInvoiceID}
		row, ok := rowsByPair[key]
		if !ok {
			row = &entity.InvoiceMappingRow{
				ConsolidatedInvoiceID: item.ConsolidatedInvoiceID,
				InvoiceMonth:          item.InvoiceMonth,
				SourceInvoiceID:       item.SourceInvoiceID,
				InvoiceDate:           item.InvoiceDate,
				Type:                  item.Type,
			}
			rowsByPair[key] = row
		}
		row.NetTotal = row.NetTotal.Add(item.TotalCost)
		memberSums[item.ConsolidatedInvoiceID] = memberSums[item.ConsolidatedInvoiceID].Add(item.TotalCost)
	}

	anomalies := []entity.ReconciliationAnomaly{}
	anomalous := map[string]bool{}
	for consolidatedID, reported := range reportedTotals {
		memberSum := memberSums[consolidatedID]
		difference := memberSum.Sub(reported)
		if difference.Abs().GreaterThan(reconciliationTolerance) {
			anomalous[consolidatedID] = true
			anomalies = append(anomalies, entity.ReconciliationAnomaly{
				ConsolidatedInvoiceID: consolidatedID,
				ReportedTotal:         reported,
				MemberSum:             memberSum,
				Difference:            difference,
			})
		}
	}
	sort.Slice(anomalies, func(i, j int) bool {
		return anomalies[i].ConsolidatedInvoiceID < anomalies[j].ConsolidatedInvoiceID
	})

	rows := make([]entity.InvoiceMappingRow, 0, len(rowsByPair))
	for _, row := range rowsByPair {
		row.Anomalous = anomalous[row.ConsolidatedInvoiceID]
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ConsolidatedInvoiceID != rows[j].ConsolidatedInvoiceID {
			return rows[i].ConsolidatedInvoiceID < rows[j].ConsolidatedInvoiceID
		}
		return rows[i].SourceInvoiceID < rows[j].SourceInvoiceID
	})

	return rows, anomalies
}

// topSheetTypeOrder fixes the section order of the consolidated top sheets.
var topSheetTypeOrder = map[entity.InvoiceType]int{
	entity.InvoiceTypeRecurring: 0,
	entity.InvoiceTypeNew:       1,
	entity.InvoiceTypeCredit:    2,
	entity.InvoiceTypePayment:   3,
}

var topSheetDescriptions = map[entity.InvoiceType]string{
	entity.InvoiceTypeRecurring: "Recurring Charges",
	entity.InvoiceTypeNew:       "New Charges",
	entity.InvoiceTypeCredit:    "Credit",
	entity.InvoiceTypePayment:   "Payment",
}

// BuildTopSheets turns the invoice mapping into one top sheet per
// consolidated invoice month: invoice rows grouped by type, a subtotal per
// type section and a closing "Pay this Amount" row.
func BuildTopSheets(mapping []entity.InvoiceMappingRow) map[entity.Period][]entity.TopSheetRow {
	byMonth := map[entity.Period][]entity.InvoiceMappingRow{}
	for _, row := range mapping {
		byMonth[row.InvoiceMonth] = append(byMonth[row.InvoiceMonth], row)
	}

	sheets := map[entity.Period][]entity.TopSheetRow{}
	for month, rows := range byMonth {
		sort.Slice(rows, func(i, j int) bool {
			if topSheetTypeOrder[rows[i].Type] != topSheetTypeOrder[rows[j].Type] {
				return topSheetTypeOrder[rows[i].Type] < topSheetTypeOrder[rows[j].Type]
			}
			return rows[i].SourceInvoiceID < rows[j].SourceInvoiceID
		})

		sheet := []entity.TopSheetRow{}
		total := decimal.Decimal{}
		for i := 0; i < len(rows); {
			sectionType := rows[i].Type
			subtotal := decimal.Decimal{}
			for ; i < len(rows) && rows[i].Type == sectionType; i++ {
				row := rows[i]
				description := topSheetDescriptions[row.Type]
				if row.Anomalous {
					description += " (reconciliation mismatch)"
				}
				sheet = append(sheet, entity.TopSheetRow{
					Type:            row.Type,
					SourceInvoiceID: row.SourceInvoiceID,
					InvoiceDate:     row.InvoiceDate,
					Description:     description,
					Amount:          row.NetTotal,
				})
				subtotal = subtotal.Add(row.NetTotal)
			}
			sheet = append(sheet, entity.TopSheetRow{
				Type:        sectionType,
				Description: "Subtotal",
				Amount:      subtotal,
				Subtotal:    true,
			})
			total = total.Add(subtotal)
		}
		sheet = append(sheet, entity.TopSheetRow{
			Description: "Pay this Amount",
			Amount:      total,
			Subtotal:    true,
		})
		sheets[month] = sheet
	}

	return sheets
}
