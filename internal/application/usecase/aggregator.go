package usecase

import (
	"sort"

	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// chargeClassOf maps classic invoice types to the summary bucket they
// belong to. Usage items are not classic billing and have no class.
func chargeClassOf(t entity.InvoiceType) (entity.ChargeClass, bool) {
	switch t {
	case entity.InvoiceTypeNew:
		return entity.ClassOneTime, true
	case entity.InvoiceTypeRecurring:
		return entity.ClassRecurring, true
	case entity.InvoiceTypeCredit, entity.InvoiceTypePayment:
		return entity.ClassAdjustment, true
	default:
		return "", false
	}
}

// Aggregate computes every derived summary view from the normalized line
// item set. Summation is map-keyed and therefore order-independent; each
// view is emitted as a deterministically sorted slice, and views with no
// contributing items stay absent rather than empty.
func Aggregate(items []entity.LineItem, pivotByUsageMonth bool) *entity.Report {
	report := &entity.Report{
		Detail: sortedDetail(items),
	}

	report.InvoiceSummary = buildInvoiceSummary(items)
	report.CategorySummary = buildCategorySummary(items)
	report.ResourcePivots = buildResourcePivots(items)

	// A dimensão temporal das visões PaaS é configurável: mês de consumo ou
	// mês da fatura consolidada.
	selectMonth := func(li entity.LineItem) entity.Period {
		if pivotByUsageMonth {
			return li.UsageMonth
		}
		return li.InvoiceMonth
	}
	report.PaaSUsage = buildPaaSUsage(items, selectMonth)
	report.PaaSSummary = buildPaaSSummary(items, selectMonth)
	report.PaaSPlanSummary = buildPaaSPlanSummary(items, selectMonth)

	return report
}

func sortedDetail(items []entity.LineItem) []entity.LineItem {
	detail := make([]entity.LineItem, len(items))
	copy(detail, items)
	sort.SliceStable(detail, func(i, j int) bool {
		a, b := detail[i], detail[j]
		if a.InvoiceMonth != b.InvoiceMonth {
			return a.InvoiceMonth.Before(b.InvoiceMonth)
		}
		if a.ConsolidatedInvoiceID != b.ConsolidatedInvoiceID {
			return a.ConsolidatedInvoiceID < b.ConsolidatedInvoiceID
		}
		if a.SourceInvoiceID != b.SourceInvoiceID {
			return a.SourceInvoiceID < b.SourceInvoiceID
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.SubCategory != b.SubCategory {
			return a.SubCategory < b.SubCategory
		}
		return a.TotalCost.LessThan(b.TotalCost)
	})
	return detail
}

func buildInvoiceSummary(items []entity.LineItem) []entity.InvoiceSummaryRow {
	type key struct {
		month    entity.Period
		category string
		class    entity.ChargeClass
	}

	sums := map[key]decimal.Decimal{}
	for _, li := range items {
		class, ok := chargeClassOf(li.Type)
		if !ok {
			continue
		}
		k := key{month: li.InvoiceMonth, category: li.Category, class: class}
		sums[k] = sums[k].Add(li.TotalCost)
	}
	if len(sums) == 0 {
		return nil
	}

	rows := make([]entity.InvoiceSummaryRow, 0, len(sums))
	for k, total := range sums {
		rows = append(rows, entity.InvoiceSummaryRow{
			InvoiceMonth: k.month,
			Category:     k.category,
			Class:        k.class,
			TotalCost:    total,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.InvoiceMonth != b.InvoiceMonth {
			return a.InvoiceMonth.Before(b.InvoiceMonth)
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Class < b.Class
	})
	return rows
}

func buildCategorySummary(items []entity.LineItem) []entity.CategorySummaryRow {
	type key struct {
		category    string
		subCategory string
		month       entity.Period
	}

	sums := map[key]decimal.Decimal{}
	for _, li := range items {
		if li.Type != entity.InvoiceTypeRecurring {
			continue
		}
		k := key{category: li.Category, subCategory: li.SubCategory, month: li.InvoiceMonth}
		sums[k] = sums[k].Add(li.TotalCost)
	}
	if len(sums) == 0 {
		return nil
	}

	rows := make([]entity.CategorySummaryRow, 0, len(sums))
	for k, total := range sums {
		rows = append(rows, entity.CategorySummaryRow{
			Category:     k.category,
			SubCategory:  k.subCategory,
			InvoiceMonth: k.month,
			TotalCost:    total,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.SubCategory != b.SubCategory {
			return a.SubCategory < b.SubCategory
		}
		return a.InvoiceMonth.Before(b.InvoiceMonth)
	})
	return rows
}

// pivotKinds are the resource kinds that materialize their own pivot tab.
var pivotKinds = []entity.ResourceKind{
	entity.KindHourlyVSI,
	entity.KindMonthlyVSI,
	entity.KindHourlyBareMetal,
	entity.KindMonthlyBareMetal,
}

func buildResourcePivots(items []entity.LineItem) map[entity.ResourceKind][]entity.ResourcePivotRow {
	type cell struct {
		items    int
		quantity decimal.Decimal
		total    decimal.Decimal
	}

	cells := map[entity.ResourceKind]map[entity.Period]*cell{}
	for _, li := range items {
		wanted := false
		for _, kind := range pivotKinds {
			if li.ResourceKind == kind {
				wanted = true
				break
			}
		}
		if !wanted {
			continue
		}

		byMonth, ok := cells[li.ResourceKind]
		if !ok {
			byMonth = map[entity.Period]*cell{}
			cells[li.ResourceKind] = byMonth
		}
		c, ok := byMonth[li.InvoiceMonth]
		if !ok {
			c = &cell{}
			byMonth[li.InvoiceMonth] = c
		}
		c.items++
		c.quantity = c.quantity.Add(li.Quantity)
		c.total = c.total.Add(li.TotalCost)
	}
	if len(cells) == 0 {
		return nil
	}

	pivots := map[entity.ResourceKind][]entity.ResourcePivotRow{}
	for kind, byMonth := range cells {
		rows := make([]entity.ResourcePivotRow, 0, len(byMonth))
		for month, c := range byMonth {
			rows = append(rows, entity.ResourcePivotRow{
				ResourceKind: kind,
				InvoiceMonth: month,
				Items:        c.items,
				Quantity:     c.quantity,
				TotalCost:    c.total,
			})
		}
		sort.Slice(rows, func(i, j int) bool {
			return rows[i].InvoiceMonth.Before(rows[j].InvoiceMonth)
		})
		pivots[kind] = rows
	}
	return pivots
}

func buildPaaSUsage(items []entity.LineItem, selectMonth func(entity.LineItem) entity.Period) []entity.PaaSUsageRow {
	rows := []entity.PaaSUsageRow{}
	for _, li := range items {
		if li.Type != entity.InvoiceTypeUsage {
			continue
		}
		rows = append(rows, entity.PaaSUsageRow{
			Month:       selectMonth(li),
			ServiceName: li.ServiceName,
			PlanName:    li.PlanName,
			Quantity:    li.Quantity,
			TotalCost:   li.TotalCost,
		})
	}
	if len(rows) == 0 {
		return nil
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Month != b.Month {
			return a.Month.Before(b.Month)
		}
		if a.ServiceName != b.ServiceName {
			return a.ServiceName < b.ServiceName
		}
		if a.PlanName != b.PlanName {
			return a.PlanName < b.PlanName
		}
		return a.TotalCost.LessThan(b.TotalCost)
	})
	return rows
}

func buildPaaSSummary(items []entity.LineItem, selectMonth func(entity.LineItem) entity.Period) []entity.PaaSSummaryRow {
	type key struct {
		service string
		month   entity.Period
	}

	sums := map[key]decimal.Decimal{}
	for _, li := range items {
		if li.Type != entity.InvoiceTypeUsage {
			continue
		}
		k := key{service: li.ServiceName, month: selectMonth(li)}
		sums[k] = sums[k].Add(li.TotalCost)
	}
	if len(sums) == 0 {
		return nil
	}

	rows := make([]entity.PaaSSummaryRow, 0, len(sums))
	for k, total := range sums {
		rows = append(rows, entity.PaaSSummaryRow{
			ServiceName: k.service,
			Month:       k.month,
			TotalCost:   total,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.ServiceName != b.ServiceName {
			return a.ServiceName < b.ServiceName
		}
		return a.Month.Before(b.Month)
	})
	return rows
}

func buildPaaSPlanSummary(items []entity.LineItem, selectMonth func(entity.LineItem) entity.Period) []entity.PaaSPlanSummaryRow {
	type key struct {
		service string
		plan    string
		month   entity.Period
	}

	sums := map[key]decimal.Decimal{}
	for _, li := range items {
		if li.Type != entity.InvoiceTypeUsage {
			continue
		}
		k := key{service: li.ServiceName, plan: li.PlanName, month: selectMonth(li)}
		sums[k] = sums[k].Add(li.TotalCost)
	}
	if len(sums) == 0 {
		return nil
	}

	rows := make([]entity.PaaSPlanSummaryRow, 0, len(sums))
	for k, total := range sums {
		rows = append(rows, entity.PaaSPlanSummaryRow{
			ServiceName: k.service,
			PlanName:    k.plan,
			Month:       k.month,
			TotalCost:   total,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.ServiceName != b.ServiceName {
			return a.ServiceName < b.ServiceName
		}
		if a.PlanName != b.PlanName {
			return a.PlanName < b.PlanName
		}
		return a.Month.Before(b.Month)
	})
	return rows
}
