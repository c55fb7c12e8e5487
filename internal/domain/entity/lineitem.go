package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceType classifies the billing event a line item came from. USAGE
// denotes platform-service consumption rather than classic infrastructure
// billing.
type InvoiceType string

const (
	InvoiceTypeNew       InvoiceType = "NEW"
	InvoiceTypeRecurring InvoiceType = "RECURRING"
	InvoiceTypeCredit    InvoiceType = "CREDIT"
	InvoiceTypePayment   InvoiceType = "PAYMENT"
	InvoiceTypeUsage     InvoiceType = "USAGE"
)

// ResourceKind is the coarse resource taxonomy used by the pivot views.
type ResourceKind string

const (
	KindHourlyVSI        ResourceKind = "HOURLY_VSI"
	KindMonthlyVSI       ResourceKind = "MONTHLY_VSI"
	KindHourlyBareMetal  ResourceKind = "HOURLY_BAREMETAL"
	KindMonthlyBareMetal ResourceKind = "MONTHLY_BAREMETAL"
	KindPaaS             ResourceKind = "PAAS"
	KindOther            ResourceKind = "OTHER"
)

// LineItem is the canonical unit of billing and usage detail. Items are
// created once by the normalizer and immutable afterwards; TotalCost is the
// record of truth, UnitCost is informational only.
type LineItem struct {
	SourceInvoiceID       string          `json:"source_invoice_id"`
	ConsolidatedInvoiceID string          `json:"consolidated_invoice_id"`
	Type                  InvoiceType     `json:"type"`
	InvoiceDate           *time.Time      `json:"invoice_date,omitempty"`
	InvoiceMonth          Period          `json:"invoice_month"`
	UsageMonth            Period          `json:"usage_month"`
	Category              string          `json:"category"`
	SubCategory           string          `json:"sub_category"`
	ResourceKind          ResourceKind    `json:"resource_kind"`
	ServiceName           string          `json:"service_name,omitempty"`
	PlanName              string          `json:"plan_name,omitempty"`
	HostName              string          `json:"host_name,omitempty"`
	Description           string          `json:"description,omitempty"`
	Quantity              decimal.Decimal `json:"quantity"`
	UnitCost              decimal.Decimal `json:"unit_cost"`
	TotalCost             decimal.Decimal `json:"total_cost"`
}
