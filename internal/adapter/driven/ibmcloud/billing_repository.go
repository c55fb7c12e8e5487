package ibmcloud

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/go-sdk-core/v5/core"
	"github.com/IBM/platform-services-go-sdk/iamidentityv1"
	"github.com/IBM/platform-services-go-sdk/usagereportsv4"
	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/domain/entity"
	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/domain/repository"
	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/shared/types"
	"github.com/shopspring/decimal"
	"github.com/softlayer/softlayer-go/datatypes"
	"github.com/softlayer/softlayer-go/services"
	"github.com/softlayer/softlayer-go/session"
)

const (
	classicPublicEndpoint  = "https://api.softlayer.com/xmlrpc/v3.1"
	classicPrivateEndpoint = "https://api.service.softlayer.com/xmlrpc/v3.1"

	// invoiceItemPageSize limits each top-level item page, matching the
	// classic API's recommended batch size.
	invoiceItemPageSize = 250
)

const invoiceItemMask = "id,billingItemId,categoryCode,category.name,hourlyFlag,hostName,domainName," +
	"product.description,createDate,totalRecurringAmount,totalOneTimeAmount,hourlyRecurringFee," +
	"children.categoryCode,children.hourlyRecurringFee"

const invoiceListMask = "id,createDate,typeCode,invoiceTotalAmount,invoiceTotalRecurringAmount,invoiceTopLevelItemCount"

// BillingRepositoryImpl implementa o BillingRepository com cache de sessões
// por credencial.
type BillingRepositoryImpl struct {
	sessionCache map[string]*session.Session
	usageCache   map[string]*usagereportsv4.UsageReportsV4
	mu           sync.Mutex
}

// NewBillingRepository cria uma nova implementação do BillingRepository.
func NewBillingRepository() repository.BillingRepository {
	return &BillingRepositoryImpl{
		sessionCache: make(map[string]*session.Session),
		usageCache:   make(map[string]*usagereportsv4.UsageReportsV4),
	}
}

func (r *BillingRepositoryImpl) getSession(creds types.IBMCloudCredentials) *session.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	endpoint := classicPublicEndpoint
	if creds.PrivateNetwork {
		endpoint = classicPrivateEndpoint
	}
	cacheKey := fmt.Sprintf("%s-%s", creds.APIKey, endpoint)
	if sess, ok := r.sessionCache[cacheKey]; ok {
		return sess
	}

	// A API clássica autentica com o usuário fixo "apikey".
	sess := session.New("apikey", creds.APIKey, endpoint)
	r.sessionCache[cacheKey] = sess
	return sess
}

func (r *BillingRepositoryImpl) getUsageService(creds types.IBMCloudCredentials) (*usagereportsv4.UsageReportsV4, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if svc, ok := r.usageCache[creds.APIKey]; ok {
		return svc, nil
	}

	svc, err := usagereportsv4.NewUsageReportsV4(&usagereportsv4.UsageReportsV4Options{
		Authenticator: &core.IamAuthenticator{ApiKey: creds.APIKey},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create usage reports client: %w", err)
	}
	r.usageCache[creds.APIKey] = svc
	return svc, nil
}

// GetAccountID resolves the account the API key belongs to via IAM identity.
func (r *BillingRepositoryImpl) GetAccountID(ctx context.Context, creds types.IBMCloudCredentials) (string, error) {
	svc, err := iamidentityv1.NewIamIdentityV1(&iamidentityv1.IamIdentityV1Options{
		Authenticator: &core.IamAuthenticator{ApiKey: creds.APIKey},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create IAM identity client: %w", err)
	}

	details, _, err := svc.GetAPIKeysDetailsWithContext(ctx, &iamidentityv1.GetAPIKeysDetailsOptions{
		IamAPIKey: core.StringPtr(creds.APIKey),
	})
	if err != nil {
		return "", fmt.Errorf("failed to look up API key details: %w", err)
	}
	if details.AccountID == nil {
		return "", fmt.Errorf("API key details carry no account id")
	}
	return *details.AccountID, nil
}

// FetchClassicInvoiceItems returns the classic portal invoice lines whose
// consolidated invoice month is the given period. Portal invoices created
// after day 19 US Central settle on the next month, so the query window runs
// from the 20th of the previous month through the 19th of the period.
func (r *BillingRepositoryImpl) FetchClassicInvoiceItems(
	ctx context.Context,
	creds types.IBMCloudCredentials,
	period entity.Period,
) ([]entity.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sess := r.getSession(creds)
	central := entity.CentralTime()
	windowStart := time.Date(period.Year, period.Month, 20, 0, 0, 0, 0, central).AddDate(0, -1, 0)
	windowEnd := time.Date(period.Year, period.Month, 19, 23, 59, 59, 0, central)

	invoiceFilter := fmt.Sprintf(
		`{"invoices":{"createDate":{"operation":"betweenDate","options":[`+
			`{"name":"startDate","value":["%s"]},{"name":"endDate","value":["%s"]}]}}}`,
		windowStart.Format("01/02/2006 15:04:05"),
		windowEnd.Format("01/02/2006 15:04:05"),
	)

	accountService := services.GetAccountService(sess)
	invoices, err := accountService.Mask(invoiceListMask).Filter(invoiceFilter).GetInvoices()
	if err != nil {
		return nil, fmt.Errorf("Account::getInvoices failed for %s: %w", period, err)
	}

	records := []entity.RawRecord{}
	for _, invoice := range invoices {
		if invoice.Id == nil || invoice.CreateDate == nil || invoice.TypeCode == nil {
			continue
		}
		invoiceTotal := decimalFrom(invoice.InvoiceTotalAmount)
		if invoiceTotal.IsZero() {
			continue
		}

		invoiceRecords, err := r.fetchInvoiceItems(ctx, sess, invoice, invoiceTotal)
		if err != nil {
			return nil, err
		}
		records = append(records, invoiceRecords...)
	}
	return records, nil
}

func (r *BillingRepositoryImpl) fetchInvoiceItems(
	ctx context.Context,
	sess *session.Session,
	invoice datatypes.Billing_Invoice,
	invoiceTotal decimal.Decimal,
) ([]entity.RawRecord, error) {
	invoiceID := fmt.Sprintf("%d", *invoice.Id)
	invoiceDate := invoice.CreateDate.Time
	consolidatedID := fmt.Sprintf("CFTS-%s", entity.ConsolidatedMonthFor(invoiceDate))

	totalItems := 0
	if invoice.InvoiceTopLevelItemCount != nil {
		totalItems = int(*invoice.InvoiceTopLevelItemCount)
	}

	invoiceService := services.GetBillingInvoiceService(sess).Id(*invoice.Id).Mask(invoiceItemMask)

	records := []entity.RawRecord{}
	for offset := 0; offset == 0 || offset < totalItems; offset += invoiceItemPageSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		items, err := invoiceService.Limit(invoiceItemPageSize).Offset(offset).GetInvoiceTopLevelItems()
		if err != nil {
			return nil, fmt.Errorf("Billing_Invoice::getInvoiceTopLevelItems failed for invoice %s: %w", invoiceID, err)
		}
		if len(items) == 0 {
			break
		}

		for _, item := range items {
			records = append(records, entity.RawRecord{
				Classic: rawClassicFrom(item, invoiceID, consolidatedID, *invoice.TypeCode, invoiceDate, invoiceTotal),
			})
		}
	}
	return records, nil
}

func rawClassicFrom(
	item datatypes.Billing_Invoice_Item,
	invoiceID, consolidatedID, typeCode string,
	invoiceDate time.Time,
	invoiceTotal decimal.Decimal,
) *entity.RawClassicItem {
	raw := &entity.RawClassicItem{
		InvoiceID:             invoiceID,
		ConsolidatedInvoiceID: consolidatedID,
		InvoiceTypeCode:       typeCode,
		InvoiceDate:           invoiceDate,
		InvoiceTotal:          invoiceTotal,
		RecurringCharge:       decimalFrom(item.TotalRecurringAmount),
		OneTimeCharge:         decimalFrom(item.TotalOneTimeAmount),
	}

	if item.BillingItemId != nil {
		raw.BillingItemID = fmt.Sprintf("%d", *item.BillingItemId)
	}
	if item.CategoryCode != nil {
		raw.CategoryCode = *item.CategoryCode
	}
	if item.Category != nil && item.Category.Name != nil {
		raw.CategoryName = *item.Category.Name
	}
	if item.Product != nil && item.Product.Description != nil {
		raw.Description = *item.Product.Description
	}
	if item.HostName != nil {
		raw.HostName = *item.HostName
		if item.DomainName != nil {
			raw.HostName = fmt.Sprintf("%s.%s", *item.HostName, *item.DomainName)
		}
	}

	if item.HourlyFlag != nil && *item.HourlyFlag {
		raw.HourlyFlag = true
		// A tarifa horária efetiva soma o item e seus filhos.
		rate := decimalFrom(item.HourlyRecurringFee)
		for _, child := range item.Children {
			rate = rate.Add(decimalFrom(child.HourlyRecurringFee))
		}
		raw.HourlyRate = rate
		if rate.IsPositive() {
			raw.Hours = raw.RecurringCharge.Div(rate).Round(0)
		}
	}

	return raw
}

// FetchUsageItems returns the platform usage settling on the given
// consolidated invoice month. Platform consumption settles one invoice
// month after it occurs, so the usage month queried is the previous one.
func (r *BillingRepositoryImpl) FetchUsageItems(
	ctx context.Context,
	creds types.IBMCloudCredentials,
	accountID string,
	period entity.Period,
) ([]entity.RawRecord, error) {
	svc, err := r.getUsageService(creds)
	if err != nil {
		return nil, err
	}

	usageMonth := period.Prev()
	usage, _, err := svc.GetAccountUsageWithContext(ctx, &usagereportsv4.GetAccountUsageOptions{
		AccountID:    core.StringPtr(accountID),
		Billingmonth: core.StringPtr(usageMonth.String()),
		Names:        core.BoolPtr(true),
	})
	if err != nil {
		return nil, fmt.Errorf("usage report for %s failed: %w", usageMonth, err)
	}

	records := []entity.RawRecord{}
	for _, resource := range usage.Resources {
		serviceName := stringFrom(resource.ResourceName)
		if serviceName == "" {
			serviceName = stringFrom(resource.ResourceID)
		}
		for _, plan := range resource.Plans {
			planName := stringFrom(plan.PlanName)
			if planName == "" {
				planName = stringFrom(plan.PlanID)
			}
			for _, metric := range plan.Usage {
				records = append(records, entity.RawRecord{
					Usage: &entity.RawUsageItem{
						AccountID:   accountID,
						ServiceName: serviceName,
						PlanName:    planName,
						Metric:      stringFrom(metric.Metric),
						Unit:        stringFrom(metric.Unit),
						UsageMonth:  usageMonth,
						Quantity:    decimalFromFloat(metric.Quantity),
						Cost:        decimalFromFloat(metric.Cost),
					},
				})
			}
		}
	}
	return records, nil
}

func decimalFrom(f *datatypes.Float64) decimal.Decimal {
	if f == nil {
		return decimal.Decimal{}
	}
	return decimal.NewFromFloat(float64(*f))
}

func decimalFromFloat(f *float64) decimal.Decimal {
	if f == nil {
		return decimal.Decimal{}
	}
	return decimal.NewFromFloat(*f)
}

func stringFrom(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
