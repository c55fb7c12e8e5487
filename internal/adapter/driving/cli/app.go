package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/diillson/ibmcloud-invoice-analyzer-go/pkg/version"

	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/application/usecase"
	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/shared/types"
	"github.com/spf13/cobra"
)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd         *cobra.Command
	analysisUseCase *usecase.AnalysisUseCase
	version         string
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(versionStr string) *CLIApp {
	app := &CLIApp{
		version: versionStr,
	}

	// Obtem a versão formatada
	formattedVersion := version.FormatVersion()

	rootCmd := &cobra.Command{
		Use:     "invoice-analyzer",
		Short:   "IBM Cloud Invoice Analyzer CLI",
		Version: formattedVersion,
		RunE:    app.runCommand,
	}

	rootCmd.SetVersionTemplate(`{{printf "IBM Cloud Invoice Analyzer version: %s\n" .Version}}`)

	// Adiciona flags de linha de comando
	rootCmd.PersistentFlags().StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	rootCmd.PersistentFlags().StringP("api-key", "k", "", "IBM Cloud API key (default: IC_API_KEY environment variable)")
	rootCmd.PersistentFlags().StringP("start", "s", "", "First invoice month to analyze, YYYY-MM")
	rootCmd.PersistentFlags().StringP("end", "e", "", "Last invoice month to analyze, YYYY-MM")
	rootCmd.PersistentFlags().IntP("months", "m", 0, "Analyze the trailing N complete months instead of an explicit range")
	rootCmd.PersistentFlags().Bool("usage-month", false, "Pivot PaaS views by usage month instead of invoice month")
	rootCmd.PersistentFlags().StringP("report-name", "n", "invoice-analysis", "Specify the base name for the report file (without extension)")
	rootCmd.PersistentFlags().StringSliceP("report-type", "y", []string{"csv"}, "Specify report types: csv, json, pdf")
	rootCmd.PersistentFlags().StringP("dir", "d", "", "Directory to save the report files (default: current directory)")
	rootCmd.PersistentFlags().Bool("sl-private", false, "Reach the classic billing API over the private network endpoint")
	rootCmd.PersistentFlags().String("cos-api-key", "", "COS API key or HMAC pair ACCESS_KEY:SECRET_KEY for report upload")
	rootCmd.PersistentFlags().String("cos-endpoint", "", "COS endpoint, e.g. s3.us-south.cloud-object-storage.appdomain.cloud")
	rootCmd.PersistentFlags().String("cos-instance-crn", "", "COS service instance CRN")
	rootCmd.PersistentFlags().String("cos-bucket", "", "COS bucket to receive the report files")
	rootCmd.PersistentFlags().String("sendgrid-api-key", "", "SendGrid API key for emailing the report")
	rootCmd.PersistentFlags().String("sendgrid-to", "", "Report recipients, comma-separated")
	rootCmd.PersistentFlags().String("sendgrid-from", "", "Sender address for the report email")
	rootCmd.PersistentFlags().String("sendgrid-subject", "", "Subject for the report email (default: generated from the month range)")

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// parseArgs parses command-line arguments into a CLIArgs struct.
func (app *CLIApp) parseArgs() (*types.CLIArgs, error) {
	configFile, _ := app.rootCmd.Flags().GetString("config-file")
	apiKey, _ := app.rootCmd.Flags().GetString("api-key")
	startMonth, _ := app.rootCmd.Flags().GetString("start")
	endMonth, _ := app.rootCmd.Flags().GetString("end")
	months, _ := app.rootCmd.Flags().GetInt("months")
	usageMonth, _ := app.rootCmd.Flags().GetBool("usage-month")
	reportName, _ := app.rootCmd.Flags().GetString("report-name")
	reportType, _ := app.rootCmd.Flags().GetStringSlice("report-type")
	dir, _ := app.rootCmd.Flags().GetString("dir")
	slPrivate, _ := app.rootCmd.Flags().GetBool("sl-private")
	cosAPIKey, _ := app.rootCmd.Flags().GetString("cos-api-key")
	cosEndpoint, _ := app.rootCmd.Flags().GetString("cos-endpoint")
	cosInstanceCRN, _ := app.rootCmd.Flags().GetString("cos-instance-crn")
	cosBucket, _ := app.rootCmd.Flags().GetString("cos-bucket")
	sendGridAPIKey, _ := app.rootCmd.Flags().GetString("sendgrid-api-key")
	sendGridTo, _ := app.rootCmd.Flags().GetString("sendgrid-to")
	sendGridFrom, _ := app.rootCmd.Flags().GetString("sendgrid-from")
	sendGridSubject, _ := app.rootCmd.Flags().GetString("sendgrid-subject")

	if apiKey == "" {
		apiKey = os.Getenv("IC_API_KEY")
	}

	// Set default directory to current working directory if not specified
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = cwd
	} else {
		// Convert to absolute path
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		dir = absDir
	}

	monthsPtr := &months
	if months == 0 {
		monthsPtr = nil
	}

	args := &types.CLIArgs{
		ConfigFile:      configFile,
		APIKey:          apiKey,
		StartMonth:      startMonth,
		EndMonth:        endMonth,
		Months:          monthsPtr,
		UsageMonth:      usageMonth,
		ReportName:      reportName,
		ReportType:      reportType,
		Dir:             dir,
		SLPrivate:       slPrivate,
		COSAPIKey:       cosAPIKey,
		COSEndpoint:     cosEndpoint,
		COSInstanceCRN:  cosInstanceCRN,
		COSBucket:       cosBucket,
		SendGridAPIKey:  sendGridAPIKey,
		SendGridTo:      sendGridTo,
		SendGridFrom:    sendGridFrom,
		SendGridSubject: sendGridSubject,
	}

	return args, nil
}

// runCommand é o ponto de entrada principal para o comando CLI.
func (app *CLIApp) runCommand(cmd *cobra.Command, args []string) error {
	// Exibe o banner de boas-vindas
	displayWelcomeBanner(app.version)

	// Verifica a versão mais recente disponível
	go version.CheckLatestVersion(app.version)

	// Analisa os argumentos da linha de comando
	cliArgs, err := app.parseArgs()
	if err != nil {
		return err
	}

	ctx := context.Background()
	return app.analysisUseCase.RunAnalysis(ctx, cliArgs)
}

// SetAnalysisUseCase sets the analysis use case for the CLI app.
func (app *CLIApp) SetAnalysisUseCase(useCase *usecase.AnalysisUseCase) {
	app.analysisUseCase = useCase
}
