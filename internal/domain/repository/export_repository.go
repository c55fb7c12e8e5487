package repository

import (
	"context"

	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/domain/entity"
	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/shared/types"
)

// ExportRepository renders the report bundle into output artifacts. Each
// method returns the absolute path of the file it produced.
type ExportRepository interface {
	ExportToCSV(report *entity.Report, filename string, outputDir string) (string, error)
	ExportToJSON(report *entity.Report, filename string, outputDir string) (string, error)
	ExportToPDF(report *entity.Report, filename string, outputDir string) (string, error)
}

// StorageRepository uploads a produced artifact to object storage.
type StorageRepository interface {
	Upload(ctx context.Context, localPath string, cfg types.COSConfig) error
}

// MailRepository delivers a produced artifact by email.
type MailRepository interface {
	SendReport(ctx context.Context, localPath string, cfg types.SendGridConfig, rangeLabel string) error
}
