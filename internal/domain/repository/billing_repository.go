package repository

import (
	"context"

	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/domain/entity"
	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/shared/types"
)

// BillingRepository is the record source for raw billing data. Pagination,
// retry and endpoint selection live behind this interface; the core only
// sees per-period batches of tagged raw records.
type BillingRepository interface {
	// GetAccountID resolves the account the API key belongs to.
	GetAccountID(ctx context.Context, creds types.IBMCloudCredentials) (string, error)

	// FetchClassicInvoiceItems returns the classic infrastructure invoice
	// lines settling on the given consolidated invoice month.
	FetchClassicInvoiceItems(ctx context.Context, creds types.IBMCloudCredentials, period entity.Period) ([]entity.RawRecord, error)

	// FetchUsageItems returns the platform-service usage records settling on
	// the given consolidated invoice month.
	FetchUsageItems(ctx context.Context, creds types.IBMCloudCredentials, accountID string, period entity.Period) ([]entity.RawRecord, error)
}
