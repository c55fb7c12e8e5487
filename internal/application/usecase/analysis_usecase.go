package usecase

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/domain/entity"
	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/domain/repository"
	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/shared/types"
	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"
)

// maxConcurrentFetches bounds the number of in-flight per-period fetches so
// the billing APIs' rate limits are respected.
const maxConcurrentFetches = 3

// AnalysisUseCase drives the invoice consolidation pipeline: resolve the
// month range, fetch raw records per period, normalize, reconcile, aggregate
// and hand the report bundle to the configured sinks.
type AnalysisUseCase struct {
	billingRepo repository.BillingRepository
	exportRepo  repository.ExportRepository
	configRepo  repository.ConfigRepository
	storageRepo repository.StorageRepository
	mailRepo    repository.MailRepository
	console     types.ConsoleInterface
}

// NewAnalysisUseCase creates a new analysis use case.
func NewAnalysisUseCase(
	billingRepo repository.BillingRepository,
	exportRepo repository.ExportRepository,
	configRepo repository.ConfigRepository,
	storageRepo repository.StorageRepository,
	mailRepo repository.MailRepository,
	console types.ConsoleInterface,
) *AnalysisUseCase {
	return &AnalysisUseCase{
		billingRepo: billingRepo,
		exportRepo:  exportRepo,
		configRepo:  configRepo,
		storageRepo: storageRepo,
		mailRepo:    mailRepo,
		console:     console,
	}
}

// RunAnalysis executa a análise completa de faturas para os argumentos dados.
func (uc *AnalysisUseCase) RunAnalysis(ctx context.Context, args *types.CLIArgs) error {
	// Mescla o arquivo de configuração, se especificado.
	if args.ConfigFile != "" {
		cfg, err := uc.configRepo.LoadConfigFile(args.ConfigFile)
		if err != nil {
			return err
		}
		mergeConfig(args, cfg)
	}

	if args.APIKey == "" {
		return types.ErrAPIKeyMissing
	}

	periods, err := ResolvePeriods(args.StartMonth, args.EndMonth, args.Months, time.Now())
	if err != nil {
		return err
	}
	uc.console.LogInfo("Analyzing invoice months %s through %s", periods[0], periods[len(periods)-1])

	report, err := uc.BuildReport(ctx, args, periods)
	if err != nil {
		return err
	}

	uc.displaySummary(report)

	return uc.deliver(ctx, args, report, periods)
}

// BuildReport runs the core pipeline for an already resolved period range
// and returns the report bundle.
func (uc *AnalysisUseCase) BuildReport(ctx context.Context, args *types.CLIArgs, periods []entity.Period) (*entity.Report, error) {
	creds := args.Credentials()

	status := uc.console.Status("Resolving account...")
	accountID, err := uc.billingRepo.GetAccountID(ctx, creds)
	if err != nil {
		status.Stop()
		return nil, fmt.Errorf("failed to resolve account for API key: %w", err)
	}
	status.Update(fmt.Sprintf("Fetching billing data for account %s...", accountID))

	records, err := uc.fetchAllPeriods(ctx, creds, accountID, periods)
	status.Stop()
	if err != nil {
		return nil, err
	}

	result := Normalize(records)
	for _, skipErr := range result.Skipped {
		uc.console.LogWarning("Skipping record: %s", skipErr)
	}

	report := Aggregate(result.Items, args.UsageMonth)
	report.Periods = periods
	report.SkippedRecords = len(result.Skipped)

	report.InvoiceMapping, report.Anomalies = Reconcile(result.Items, result.ReportedTotals)
	report.TopSheets = BuildTopSheets(report.InvoiceMapping)
	for _, anomaly := range report.Anomalies {
		uc.console.LogWarning("Invoice %s does not reconcile: line items sum to %s, reported total is %s",
			anomaly.ConsolidatedInvoiceID, anomaly.MemberSum.StringFixed(2), anomaly.ReportedTotal.StringFixed(2))
	}

	return report, nil
}

// fetchAllPeriods busca os registros de cada mês em paralelo, com limite de
// concorrência. A contribuição de cada mês é atômica: ou ambos os lotes do
// mês entram, ou nenhum.
func (uc *AnalysisUseCase) fetchAllPeriods(
	ctx context.Context,
	creds types.IBMCloudCredentials,
	accountID string,
	periods []entity.Period,
) ([]entity.RawRecord, error) {
	var wg sync.WaitGroup
	var mu sync.Mutex
	sem := make(chan struct{}, maxConcurrentFetches)

	byPeriod := make(map[entity.Period][]entity.RawRecord, len(periods))
	var firstErr error

	progress := uc.console.ProgressWithTotal(len(periods) * 2)
	for _, period := range periods {
		wg.Add(1)
		go func(p entity.Period) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			classic, err := uc.billingRepo.FetchClassicInvoiceItems(ctx, creds, p)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("fetching classic invoices for %s: %w", p, err)
				}
				mu.Unlock()
				return
			}
			progress.Increment()

			usage, err := uc.billingRepo.FetchUsageItems(ctx, creds, accountID, p)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("fetching usage for %s: %w", p, err)
				}
				mu.Unlock()
				return
			}
			progress.Increment()

			mu.Lock()
			byPeriod[p] = append(classic, usage...)
			mu.Unlock()
		}(period)
	}
	wg.Wait()
	progress.Stop()

	if firstErr != nil {
		return nil, firstErr
	}

	// Mescla em ordem de período para manter a execução determinística.
	records := []entity.RawRecord{}
	for _, period := range periods {
		records = append(records, byPeriod[period]...)
	}
	return records, nil
}

// displaySummary imprime a tabela de totais por mês consolidado e o gráfico
// de tendência.
func (uc *AnalysisUseCase) displaySummary(report *entity.Report) {
	type monthTotals struct {
		oneTime    decimal.Decimal
		recurring  decimal.Decimal
		adjustment decimal.Decimal
		usage      decimal.Decimal
	}

	totals := map[entity.Period]*monthTotals{}
	for _, li := range report.Detail {
		t, ok := totals[li.InvoiceMonth]
		if !ok {
			t = &monthTotals{}
			totals[li.InvoiceMonth] = t
		}
		switch li.Type {
		case entity.InvoiceTypeUsage:
			t.usage = t.usage.Add(li.TotalCost)
		case entity.InvoiceTypeRecurring:
			t.recurring = t.recurring.Add(li.TotalCost)
		case entity.InvoiceTypeNew:
			t.oneTime = t.oneTime.Add(li.TotalCost)
		default:
			t.adjustment = t.adjustment.Add(li.TotalCost)
		}
	}

	months := make([]entity.Period, 0, len(totals))
	for month := range totals {
		months = append(months, month)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	table := uc.console.CreateTable()
	table.AddColumn("Invoice Month")
	table.AddColumn("One-Time")
	table.AddColumn("Recurring")
	table.AddColumn("Adjustments")
	table.AddColumn("PaaS Usage")
	table.AddColumn("Total")

	trend := []types.MonthlyTotal{}
	for _, month := range months {
		t := totals[month]
		total := t.oneTime.Add(t.recurring).Add(t.adjustment).Add(t.usage)
		table.AddRow(
			pterm.FgMagenta.Sprint(month.String()),
			fmt.Sprintf("$%s", t.oneTime.StringFixed(2)),
			fmt.Sprintf("$%s", t.recurring.StringFixed(2)),
			fmt.Sprintf("$%s", t.adjustment.StringFixed(2)),
			fmt.Sprintf("$%s", t.usage.StringFixed(2)),
			pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprintf("$%s", total.StringFixed(2)),
		)
		totalFloat, _ := total.Float64()
		trend = append(trend, types.MonthlyTotal{Month: month.String(), Total: totalFloat})
	}

	uc.console.Print(table.Render())
	if len(trend) > 1 {
		uc.console.DisplayTrendBars(trend)
	}
	if report.SkippedRecords > 0 {
		uc.console.LogWarning("%d record(s) were skipped during normalization.", report.SkippedRecords)
	}
}

// deliver exporta o relatório nos formatos pedidos e o publica nos destinos
// configurados (COS, e-mail), limpando os arquivos locais após entrega.
func (uc *AnalysisUseCase) deliver(ctx context.Context, args *types.CLIArgs, report *entity.Report, periods []entity.Period) error {
	if args.ReportName == "" || len(args.ReportType) == 0 {
		return nil
	}

	exported := []string{}
	for _, reportType := range args.ReportType {
		switch reportType {
		case "csv":
			csvPath, err := uc.exportRepo.ExportToCSV(report, args.ReportName, args.Dir)
			if err != nil {
				uc.console.LogError("Failed to export to CSV: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported to CSV: %s", csvPath)
				exported = append(exported, csvPath)
			}
		case "json":
			jsonPath, err := uc.exportRepo.ExportToJSON(report, args.ReportName, args.Dir)
			if err != nil {
				uc.console.LogError("Failed to export to JSON: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported to JSON: %s", jsonPath)
				exported = append(exported, jsonPath)
			}
		case "pdf":
			pdfPath, err := uc.exportRepo.ExportToPDF(report, args.ReportName, args.Dir)
			if err != nil {
				uc.console.LogError("Failed to export to PDF: %s", err)
			} else {
				uc.console.LogSuccess("Successfully exported to PDF: %s", pdfPath)
				exported = append(exported, pdfPath)
			}
		default:
			uc.console.LogWarning("Unknown report type %q, skipping.", reportType)
		}
	}

	rangeLabel := fmt.Sprintf("%s to %s", periods[0], periods[len(periods)-1])
	delivered := false

	if args.COSAPIKey != "" && uc.storageRepo != nil {
		for _, path := range exported {
			if err := uc.storageRepo.Upload(ctx, path, args.COSConfig()); err != nil {
				uc.console.LogError("Failed to upload %s to COS: %s", path, err)
			} else {
				uc.console.LogSuccess("Uploaded %s to COS bucket %s", path, args.COSBucket)
				delivered = true
			}
		}
	}

	if args.SendGridAPIKey != "" && uc.mailRepo != nil {
		for _, path := range exported {
			if err := uc.mailRepo.SendReport(ctx, path, args.SendGridConfig(), rangeLabel); err != nil {
				uc.console.LogError("Failed to email %s: %s", path, err)
			} else {
				uc.console.LogSuccess("Emailed %s to %s", path, args.SendGridTo)
				delivered = true
			}
		}
	}

	// Com o artefato entregue externamente, o arquivo local é descartado.
	if delivered {
		for _, path := range exported {
			if err := os.Remove(path); err != nil {
				uc.console.LogWarning("Could not remove local file %s: %s", path, err)
			} else {
				uc.console.LogInfo("Deleted local file %s after delivery.", path)
			}
		}
	}

	return nil
}

// mergeConfig preenche argumentos vazios com os valores do arquivo de
// configuração; flags explícitas têm precedência.
func mergeConfig(args *types.CLIArgs, cfg *types.Config) {
	if args.APIKey == "" {
		args.APIKey = cfg.APIKey
	}
	if args.StartMonth == "" {
		args.StartMonth = cfg.StartMonth
	}
	if args.EndMonth == "" {
		args.EndMonth = cfg.EndMonth
	}
	if args.Months == nil && cfg.Months > 0 {
		months := cfg.Months
		args.Months = &months
	}
	if !args.UsageMonth {
		args.UsageMonth = cfg.UsageMonth
	}
	if args.ReportName == "" {
		args.ReportName = cfg.ReportName
	}
	if len(args.ReportType) == 0 {
		args.ReportType = cfg.ReportType
	}
	if args.Dir == "" {
		args.Dir = cfg.Dir
	}
	if !args.SLPrivate {
		args.SLPrivate = cfg.SLPrivate
	}
	if args.COSAPIKey == "" {
		args.COSAPIKey = cfg.COSAPIKey
	}
	if args.COSEndpoint == "" {
		args.COSEndpoint = cfg.COSEndpoint
	}
	if args.COSInstanceCRN == "" {
		args.COSInstanceCRN = cfg.COSInstanceCRN
	}
	if args.COSBucket == "" {
		args.COSBucket = cfg.COSBucket
	}
	if args.SendGridAPIKey == "" {
		args.SendGridAPIKey = cfg.SendGridAPIKey
	}
	if args.SendGridTo == "" {
		args.SendGridTo = cfg.SendGridTo
	}
	if args.SendGridFrom == "" {
		args.SendGridFrom = cfg.SendGridFrom
	}
	if args.SendGridSubject == "" {
		args.SendGridSubject = cfg.SendGridSubject
	}
}
