package main

import (
	"fmt"
	"os"

	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/adapter/driven/config"
	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/adapter/driven/export"
	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/adapter/driven/ibmcloud"
	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/adapter/driving/cli"
	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/application/usecase"
	"github.com/diillson/ibmcloud-invoice-analyzer-go/pkg/console"
	"github.com/diillson/ibmcloud-invoice-analyzer-go/pkg/version"
)

func main() {
	// Inicializa o aplicativo CLI
	app := cli.NewCLIApp(version.Version)

	// Inicializa os repositórios
	billingRepo := ibmcloud.NewBillingRepository()
	exportRepo := export.NewExportRepository()
	configRepo := config.NewConfigRepository()
	storageRepo := export.NewCOSRepository()
	mailRepo := export.NewSendGridRepository()
	consoleImpl := console.NewConsole()

	// Inicializa o caso de uso
	analysisUseCase := usecase.NewAnalysisUseCase(
		billingRepo,
		exportRepo,
		configRepo,
		storageRepo,
		mailRepo,
		consoleImpl,
	)

	// Define o caso de uso no aplicativo CLI
	app.SetAnalysisUseCase(analysisUseCase)

	// Executa o aplicativo
	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
