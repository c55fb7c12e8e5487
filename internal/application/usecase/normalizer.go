package usecase

import (
	"fmt"
	"strings"

	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/domain/entity"
	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/shared/types"
	"github.com/shopspring/decimal"
)

// NormalizeResult is the outcome of one normalization pass: the canonical
// line items, the reported total per consolidated invoice (each portal
// invoice counted once) for reconciliation, and the records that did not
// match any known shape.
type NormalizeResult struct {
	Items          []entity.LineItem
	ReportedTotals map[string]decimal.Decimal
	Skipped        []error
}

// Normalize maps raw records of heterogeneous shapes into canonical line
// items. Unrecognized records are skipped and reported, never fatal: partial
// data is preferable to a full abort.
func Normalize(records []entity.RawRecord) NormalizeResult {
	result := NormalizeResult{
		ReportedTotals: map[string]decimal.Decimal{},
	}
	seenInvoices := map[string]bool{}

	for _, record := range records {
		switch {
		case record.Classic != nil && record.Usage == nil:
			item, err := normalizeClassic(record.Classic)
			if err != nil {
				result.Skipped = append(result.Skipped, err)
				continue
			}
			result.Items = append(result.Items, item)

			// O total reportado de cada fatura do portal conta uma única vez.
			if !seenInvoices[record.Classic.InvoiceID] {
				seenInvoices[record.Classic.InvoiceID] = true
				total := result.ReportedTotals[item.ConsolidatedInvoiceID]
				result.ReportedTotals[item.ConsolidatedInvoiceID] = total.Add(record.Classic.InvoiceTotal)
			}

		case record.Usage != nil && record.Classic == nil:
			item, err := normalizeUsage(record.Usage)
			if err != nil {
				result.Skipped = append(result.Skipped, err)
				continue
			}
			result.Items = append(result.Items, item)

		default:
			result.Skipped = append(result.Skipped,
				fmt.Errorf("record carries neither or both variants: %w", types.ErrUnrecognizedRecord))
		}
	}

	return result
}

func normalizeClassic(raw *entity.RawClassicItem) (entity.LineItem, error) {
	invoiceType, err := classicInvoiceType(raw.InvoiceTypeCode)
	if err != nil {
		return entity.LineItem{}, err
	}
	if raw.InvoiceID == "" || raw.InvoiceDate.IsZero() {
		return entity.LineItem{}, fmt.Errorf("classic record for billing item %q lacks invoice id or date: %w",
			raw.BillingItemID, types.ErrUnrecognizedRecord)
	}

	invoiceMonth := entity.ConsolidatedMonthFor(raw.InvoiceDate)
	consolidatedID := raw.ConsolidatedInvoiceID
	if consolidatedID == "" {
		consolidatedID = raw.InvoiceID
	}

	category, subCategory, kind := classify(raw.CategoryName, raw.HourlyFlag)

	// Itens horários cobram o consumo do mês anterior.
	usageMonth := invoiceMonth
	if raw.HourlyFlag {
		usageMonth = invoiceMonth.Prev()
	}

	totalCost := raw.RecurringCharge.Add(raw.OneTimeCharge)
	quantity := raw.Hours
	if quantity.IsZero() {
		quantity = decimal.NewFromInt(1)
	}

	// Créditos fluem com valores negativos para que os totais sejam líquidos.
	if invoiceType == entity.InvoiceTypeCredit {
		if totalCost.IsPositive() {
			totalCost = totalCost.Neg()
		}
		if quantity.IsPositive() {
			quantity = quantity.Neg()
		}
	}

	unitCost := raw.HourlyRate
	if unitCost.IsZero() && !quantity.IsZero() {
		unitCost = totalCost.Div(quantity)
	}

	invoiceDate := raw.InvoiceDate
	return entity.LineItem{
		SourceInvoiceID:       raw.InvoiceID,
		ConsolidatedInvoiceID: consolidatedID,
		Type:                  invoiceType,
		InvoiceDate:           &invoiceDate,
		InvoiceMonth:          invoiceMonth,
		UsageMonth:            usageMonth,
		Category:              category,
		SubCategory:           subCategory,
		ResourceKind:          kind,
		HostName:              raw.HostName,
		Description:           raw.Description,
		Quantity:              quantity,
		UnitCost:              unitCost,
		TotalCost:             totalCost,
	}, nil
}

func normalizeUsage(raw *entity.RawUsageItem) (entity.LineItem, error) {
	if raw.ServiceName == "" || raw.UsageMonth.IsZero() {
		return entity.LineItem{}, fmt.Errorf("usage record lacks service name or usage month: %w", types.ErrUnrecognizedRecord)
	}

	// Consumo de plataforma liquida na fatura consolidada do mês seguinte.
	invoiceMonth := raw.UsageMonth.Next()

	unitCost := decimal.Decimal{}
	if !raw.Quantity.IsZero() {
		unitCost = raw.Cost.Div(raw.Quantity)
	}

	return entity.LineItem{
		SourceInvoiceID:       fmt.Sprintf("USAGE-%s", raw.UsageMonth),
		ConsolidatedInvoiceID: fmt.Sprintf("CFTS-%s", invoiceMonth),
		Type:                  entity.InvoiceTypeUsage,
		InvoiceMonth:          invoiceMonth,
		UsageMonth:            raw.UsageMonth,
		Category:              "Platform Services",
		SubCategory:           raw.PlanName,
		ResourceKind:          entity.KindPaaS,
		ServiceName:           raw.ServiceName,
		PlanName:              raw.PlanName,
		Description:           strings.TrimSpace(fmt.Sprintf("%s %s", raw.Metric, raw.Unit)),
		Quantity:              raw.Quantity,
		UnitCost:              unitCost,
		TotalCost:             raw.Cost,
	}, nil
}

func classicInvoiceType(typeCode string) (entity.InvoiceType, error) {
	switch typeCode {
	case "NEW", "ONE-TIME-CHARGE":
		return entity.InvoiceTypeNew, nil
	case "RECURRING":
		return entity.InvoiceTypeRecurring, nil
	case "CREDIT":
		return entity.InvoiceTypeCredit, nil
	case "PAYMENT":
		return entity.InvoiceTypePayment, nil
	default:
		return "", fmt.Errorf("unknown invoice type code %q: %w", typeCode, types.ErrUnrecognizedRecord)
	}
}

// classify derives the product taxonomy from the billing category name and
// the hourly flag. Unmatched combinations fall back to OTHER instead of
// failing.
func classify(categoryName string, hourly bool) (category, subCategory string, kind entity.ResourceKind) {
	switch {
	case categoryName == "Computing Instance":
		if hourly {
			return "Compute", "Virtual Server - Hourly", entity.KindHourlyVSI
		}
		return "Compute", "Virtual Server - Monthly", entity.KindMonthlyVSI

	case categoryName == "Server":
		if hourly {
			return "Compute", "Bare Metal - Hourly", entity.KindHourlyBareMetal
		}
		return "Compute", "Bare Metal - Monthly", entity.KindMonthlyBareMetal

	case strings.Contains(categoryName, "Storage"):
		return "Storage", categoryName, entity.KindOther

	case strings.Contains(categoryName, "Bandwidth"),
		strings.Contains(categoryName, "Network"),
		strings.Contains(categoryName, "IP Address"):
		return "Network", categoryName, entity.KindOther

	case categoryName == "":
		return "Other", "Uncategorized", entity.KindOther

	default:
		return "Other", categoryName, entity.KindOther
	}
}
