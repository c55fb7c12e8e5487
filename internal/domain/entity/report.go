package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ChargeClass splits classic invoice types into the buckets used by the
// time-series summaries. Credits and payments net into the adjustment bucket
// instead of the one-time/recurring split.
type ChargeClass string

const (
	ClassOneTime    ChargeClass = "ONE_TIME"
	ClassRecurring  ChargeClass = "RECURRING"
	ClassAdjustment ChargeClass = "ADJUSTMENT"
)

// InvoiceMappingRow maps one portal invoice to the consolidated invoice it
// is billed on. Anomalous marks rows of a consolidated invoice whose member
// sum diverged from its reported total beyond tolerance.
type InvoiceMappingRow struct {
	ConsolidatedInvoiceID string          `json:"consolidated_invoice_id"`
	InvoiceMonth          Period          `json:"invoice_month"`
	SourceInvoiceID       string          `json:"source_invoice_id"`
	InvoiceDate           *time.Time      `json:"invoice_date,omitempty"`
	Type                  InvoiceType     `json:"type"`
	NetTotal              decimal.Decimal `json:"net_total"`
	Anomalous             bool            `json:"anomalous,omitempty"`
}

// ReconciliationAnomaly records a consolidated invoice whose line items do
// not sum to its reported total. Anomalies are reportable, never fatal.
type ReconciliationAnomaly struct {
	ConsolidatedInvoiceID string          `json:"consolidated_invoice_id"`
	ReportedTotal         decimal.Decimal `json:"reported_total"`
	MemberSum             decimal.Decimal `json:"member_sum"`
	Difference            decimal.Decimal `json:"difference"`
}

// TopSheetRow is one line of the per-month consolidated invoice top sheet.
// Subtotal rows close each invoice type section; the final row carries the
// "Pay this Amount" label.
type TopSheetRow struct {
	Type            InvoiceType     `json:"type,omitempty"`
	SourceInvoiceID string          `json:"source_invoice_id,omitempty"`
	InvoiceDate     *time.Time      `json:"invoice_date,omitempty"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	Subtotal        bool            `json:"subtotal,omitempty"`
}

// InvoiceSummaryRow is one cell of the time-by-category summary.
type InvoiceSummaryRow struct {
	InvoiceMonth Period          `json:"invoice_month"`
	Category     string          `json:"category"`
	Class        ChargeClass     `json:"class"`
	TotalCost    decimal.Decimal `json:"total_cost"`
}

// CategorySummaryRow is one cell of the category-by-subcategory summary
// (recurring charges only).
type CategorySummaryRow struct {
	Category     string          `json:"category"`
	SubCategory  string          `json:"sub_category"`
	InvoiceMonth Period          `json:"invoice_month"`
	TotalCost    decimal.Decimal `json:"total_cost"`
}

// ResourcePivotRow is one cell of a resource-kind pivot.
type ResourcePivotRow struct {
	ResourceKind ResourceKind    `json:"resource_kind"`
	InvoiceMonth Period          `json:"invoice_month"`
	Items        int             `json:"items"`
	Quantity     decimal.Decimal `json:"quantity"`
	TotalCost    decimal.Decimal `json:"total_cost"`
}

// PaaSUsageRow is the pass-through detail of one platform usage line item,
// columned by the month dimension selected for the run.
type PaaSUsageRow struct {
	Month       Period          `json:"month"`
	ServiceName string          `json:"service_name"`
	PlanName    string          `json:"plan_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	TotalCost   decimal.Decimal `json:"total_cost"`
}

// PaaSSummaryRow sums platform usage per service and selected month.
type PaaSSummaryRow struct {
	ServiceName string          `json:"service_name"`
	Month       Period          `json:"month"`
	TotalCost   decimal.Decimal `json:"total_cost"`
}

// PaaSPlanSummaryRow sums platform usage per service, plan and selected month.
type PaaSPlanSummaryRow struct {
	ServiceName string          `json:"service_name"`
	PlanName    string          `json:"plan_name"`
	Month       Period          `json:"month"`
	TotalCost   decimal.Decimal `json:"total_cost"`
}

// Report is the full result bundle handed to the report sink. A nil or empty
// view means the corresponding tab is omitted entirely, never rendered empty.
type Report struct {
	Periods         []Period                            `json:"periods"`
	Detail          []LineItem                          `json:"detail"`
	InvoiceMapping  []InvoiceMappingRow                 `json:"invoice_mapping,omitempty"`
	Anomalies       []ReconciliationAnomaly             `json:"anomalies,omitempty"`
	TopSheets       map[Period][]TopSheetRow            `json:"top_sheets,omitempty"`
	InvoiceSummary  []InvoiceSummaryRow                 `json:"invoice_summary,omitempty"`
	CategorySummary []CategorySummaryRow                `json:"category_summary,omitempty"`
	ResourcePivots  map[ResourceKind][]ResourcePivotRow `json:"resource_pivots,omitempty"`
	PaaSUsage       []PaaSUsageRow                      `json:"paas_usage,omitempty"`
	PaaSSummary     []PaaSSummaryRow                    `json:"paas_summary,omitempty"`
	PaaSPlanSummary []PaaSPlanSummaryRow                `json:"paas_plan_summary,omitempty"`
	SkippedRecords  int                                 `json:"skipped_records,omitempty"`
}

// ReportTab is one renderable tab of the output artifact.
type ReportTab struct {
	Name   string
	Header []string
	Rows   [][]string
}

var pivotTabNames = map[ResourceKind]string{
	KindHourlyVSI:        "HrlyVirtualServerPivot",
	KindMonthlyVSI:       "MnthlyVirtualServerPivot",
	KindHourlyBareMetal:  "HrlyBareMetalServerPivot",
	KindMonthlyBareMetal: "MnthlyBareMetalServerPivot",
}

// pivotTabOrder fixes the rendering order of the four resource pivots.
var pivotTabOrder = []ResourceKind{
	KindHourlyVSI,
	KindMonthlyVSI,
	KindHourlyBareMetal,
	KindMonthlyBareMetal,
}

// Tabs materializes the present views as named, ordered tabs. Absent views
// produce no tab, so sinks render with a plain iteration and no existence
// checks of their own.
func (r *Report) Tabs() []ReportTab {
	tabs := []ReportTab{}

	if len(r.Detail) > 0 {
		tab := ReportTab{
			Name: "Detail",
			Header: []string{
				"Consolidated Invoice", "Source Invoice", "Type", "Invoice Date",
				"Invoice Month", "Usage Month", "Category", "Sub Category",
				"Resource Kind", "Service", "Plan", "Host", "Description",
				"Quantity", "Unit Cost", "Total Cost",
			},
		}
		for _, li := range r.Detail {
			tab.Rows = append(tab.Rows, []string{
				li.ConsolidatedInvoiceID, li.SourceInvoiceID, string(li.Type),
				formatDate(li.InvoiceDate), li.InvoiceMonth.String(), li.UsageMonth.String(),
				li.Category, li.SubCategory, string(li.ResourceKind),
				li.ServiceName, li.PlanName, li.HostName, li.Description,
				li.Quantity.String(), li.UnitCost.StringFixed(2), li.TotalCost.StringFixed(2),
			})
		}
		tabs = append(tabs, tab)
	}

	for _, month := range r.Periods {
		rows, ok := r.TopSheets[month]
		if !ok || len(rows) == 0 {
			continue
		}
		tab := ReportTab{
			Name:   fmt.Sprintf("TopSheet-%s", month),
			Header: []string{"Type", "Invoice", "Invoice Date", "Description", "Amount"},
		}
		for _, row := range rows {
			tab.Rows = append(tab.Rows, []string{
				string(row.Type), row.SourceInvoiceID, formatDate(row.InvoiceDate),
				row.Description, row.Amount.StringFixed(2),
			})
		}
		tabs = append(tabs, tab)
	}

	if len(r.InvoiceSummary) > 0 {
		tab := ReportTab{
			Name:   "InvoiceSummary",
			Header: []string{"Invoice Month", "Category", "Class", "Total Cost"},
		}
		for _, row := range r.InvoiceSummary {
			tab.Rows = append(tab.Rows, []string{
				row.InvoiceMonth.String(), row.Category, string(row.Class), row.TotalCost.StringFixed(2),
			})
		}
		tabs = append(tabs, tab)
	}

	if len(r.CategorySummary) > 0 {
		tab := ReportTab{
			Name:   "CategorySummary",
			Header: []string{"Category", "Sub Category", "Invoice Month", "Total Cost"},
		}
		for _, row := range r.CategorySummary {
			tab.Rows = append(tab.Rows, []string{
				row.Category, row.SubCategory, row.InvoiceMonth.String(), row.TotalCost.StringFixed(2),
			})
		}
		tabs = append(tabs, tab)
	}

	for _, kind := range pivotTabOrder {
		rows, ok := r.ResourcePivots[kind]
		if !ok || len(rows) == 0 {
			continue
		}
		tab := ReportTab{
			Name:   pivotTabNames[kind],
			Header: []string{"Invoice Month", "Items", "Quantity", "Total Cost"},
		}
		for _, row := range rows {
			tab.Rows = append(tab.Rows, []string{
				row.InvoiceMonth.String(), fmt.Sprintf("%d", row.Items),
				row.Quantity.String(), row.TotalCost.StringFixed(2),
			})
		}
		tabs = append(tabs, tab)
	}

	if len(r.PaaSUsage) > 0 {
		tab := ReportTab{
			Name:   "PaaS_Usage",
			Header: []string{"Month", "Service", "Plan", "Quantity", "Total Cost"},
		}
		for _, row := range r.PaaSUsage {
			tab.Rows = append(tab.Rows, []string{
				row.Month.String(), row.ServiceName, row.PlanName,
				row.Quantity.String(), row.TotalCost.StringFixed(2),
			})
		}
		tabs = append(tabs, tab)
	}

	if len(r.PaaSSummary) > 0 {
		tab := ReportTab{
			Name:   "PaaS_Summary",
			Header: []string{"Service", "Month", "Total Cost"},
		}
		for _, row := range r.PaaSSummary {
			tab.Rows = append(tab.Rows, []string{
				row.ServiceName, row.Month.String(), row.TotalCost.StringFixed(2),
			})
		}
		tabs = append(tabs, tab)
	}

	if len(r.PaaSPlanSummary) > 0 {
		tab := ReportTab{
			Name:   "PaaS_Plan_Summary",
			Header: []string{"Service", "Plan", "Month", "Total Cost"},
		}
		for _, row := range r.PaaSPlanSummary {
			tab.Rows = append(tab.Rows, []string{
				row.ServiceName, row.PlanName, row.Month.String(), row.TotalCost.StringFixed(2),
			})
		}
		tabs = append(tabs, tab)
	}

	return tabs
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
