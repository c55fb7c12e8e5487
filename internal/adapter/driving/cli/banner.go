package cli

import (
	"fmt"

	"github.com/diillson/ibmcloud-invoice-analyzer-go/pkg/version"
	"github.com/fatih/color"
)

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner(versionStr string) {
	banner := `
         /$$$$$$                               /$$
        |_  $$_/                              |__/
          | $$   /$$$$$$$  /$$    /$$ /$$$$$$  /$$  /$$$$$$$  /$$$$$$
          | $$  | $$__  $$|  $$  /$$//$$__  $$| $$ /$$_____/ /$$__  $$
          | $$  | $$  \ $$ \  $$/$$/| $$  \ $$| $$| $$      | $$$$$$$$
          | $$  | $$  | $$  \  $$$/ | $$  | $$| $$| $$      | $$_____/
         /$$$$$$| $$  | $$   \  $/  |  $$$$$$/| $$|  $$$$$$$|  $$$$$$$
        |______/|__/  |__/    \_/    \______/ |__/ \_______/ \_______/

                 /$$$$$$                      /$$
                /$$__  $$                    | $$
               | $$  \ $$ /$$$$$$$   /$$$$$$ | $$ /$$   /$$ /$$$$$$$$  /$$$$$$   /$$$$$$
               | $$$$$$$$| $$__  $$ |____  $$| $$| $$  | $$|____ /$$/ /$$__  $$ /$$__  $$
               | $$__  $$| $$  \ $$  /$$$$$$$| $$| $$  | $$   /$$$$/ | $$$$$$$$| $$  \__/
               | $$  | $$| $$  | $$ /$$__  $$| $$| $$  | $$  /$$__/  | $$_____/| $$
               | $$  | $$| $$  | $$|  $$$$$$$| $$|  $$$$$$$ /$$$$$$$$|  $$$$$$$| $$
               |__/  |__/|__/  |__/ \_______/|__/ \____  $$|________/ \_______/|__/
                                                  /$$  | $$
                                                 |  $$$$$$/
                                                  \______/
        `
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Println(cyan(banner))

	// Obtem a string formatada da versão através do pacote version
	formattedVersion := version.FormatVersion()
	fmt.Println(blue(fmt.Sprintf("IBM Cloud Invoice Analyzer CLI (v%s)", formattedVersion)))
}
