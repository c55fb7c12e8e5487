package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawClassicItem is one top-level line of a classic infrastructure portal
// invoice, as returned by the billing API.
type RawClassicItem struct {
	InvoiceID             string
	ConsolidatedInvoiceID string
	InvoiceTypeCode       string
	InvoiceDate           time.Time
	InvoiceTotal          decimal.Decimal
	BillingItemID         string
	CategoryCode          string
	CategoryName          string
	Description           string
	HostName              string
	HourlyFlag            bool
	HourlyRate            decimal.Decimal
	Hours                 decimal.Decimal
	RecurringCharge       decimal.Decimal
	OneTimeCharge         decimal.Decimal
}

// RawUsageItem is one metric of a platform-service usage report.
type RawUsageItem struct {
	AccountID   string
	ServiceName string
	PlanName    string
	Metric      string
	Unit        string
	UsageMonth  Period
	Quantity    decimal.Decimal
	Cost        decimal.Decimal
}

// RawRecord is the tagged variant handed over by a RecordSource: exactly one
// of the fields is set. Records with zero or both variants set do not match
// any known shape and are skipped by the normalizer.
type RawRecord struct {
	Classic *RawClassicItem
	Usage   *RawUsageItem
}
