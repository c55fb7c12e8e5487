package export

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/domain/repository"
	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/shared/types"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridRepositoryImpl entrega relatórios por email via SendGrid.
type SendGridRepositoryImpl struct{}

// NewSendGridRepository cria uma nova implementação do MailRepository.
func NewSendGridRepository() repository.MailRepository {
	return &SendGridRepositoryImpl{}
}

// SendReport envia o arquivo como anexo para cada destinatário configurado.
// Destinatários múltiplos são separados por vírgula.
func (r *SendGridRepositoryImpl) SendReport(ctx context.Context, localPath string, cfg types.SendGridConfig, rangeLabel string) error {
	if cfg.To == "" || cfg.From == "" {
		return fmt.Errorf("sendgrid delivery requires a sender and at least one recipient")
	}

	content, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("error reading '%s' for email attachment: %w", localPath, err)
	}

	subject := cfg.Subject
	if subject == "" {
		subject = fmt.Sprintf("IBM Cloud invoice report %s", rangeLabel)
	}

	message := mail.NewV3Mail()
	message.SetFrom(mail.NewEmail("", cfg.From))
	message.Subject = subject

	personalization := mail.NewPersonalization()
	for _, addr := range strings.Split(cfg.To, ",") {
		addr = strings.TrimSpace(addr)
		if addr != "" {
			personalization.AddTos(mail.NewEmail("", addr))
		}
	}
	message.AddPersonalizations(personalization)

	body := fmt.Sprintf("Attached is the IBM Cloud invoice report covering %s.", rangeLabel)
	message.AddContent(mail.NewContent("text/plain", body))

	attachment := mail.NewAttachment()
	attachment.SetContent(base64.StdEncoding.EncodeToString(content))
	attachment.SetType(contentTypeFor(localPath))
	attachment.SetFilename(filepath.Base(localPath))
	attachment.SetDisposition("attachment")
	message.AddAttachment(attachment)

	client := sendgrid.NewSendClient(cfg.APIKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("error sending report email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected the report email: status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
