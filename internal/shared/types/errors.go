package types

import "errors"

var (
	ErrAPIKeyMissing      = errors.New("an IBM Cloud API key with billing view authority is required")
	ErrMonthModeConflict  = errors.New("provide either a start/end month pair or a trailing month count, not both")
	ErrMonthModeMissing   = errors.New("a start/end month pair or a trailing month count is required")
	ErrMonthRangeInvalid  = errors.New("start month must not be after end month")
	ErrUnrecognizedRecord = errors.New("raw record does not match any known shape")
)
