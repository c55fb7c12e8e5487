package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/domain/entity"
	"github.com/diillson/ibmcloud-invoice-analyzer-go/internal/domain/repository"
	"github.com/jung-kurt/gofpdf"
)

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct{}

// NewExportRepository cria uma nova implementação do ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{}
}

// ExportToCSV grava cada aba presente do relatório como uma seção do arquivo,
// precedida por uma linha "# <nome da aba>".
func (r *ExportRepositoryImpl) ExportToCSV(report *entity.Report, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	for i, tab := range report.Tabs() {
		if i > 0 {
			// Linha em branco entre abas.
			if err := writer.Write([]string{""}); err != nil {
				return "", fmt.Errorf("error writing CSV separator: %w", err)
			}
		}
		if err := writer.Write([]string{fmt.Sprintf("# %s", tab.Name)}); err != nil {
			return "", fmt.Errorf("error writing CSV section header: %w", err)
		}
		if err := writer.Write(tab.Header); err != nil {
			return "", fmt.Errorf("error writing CSV header: %w", err)
		}
		for _, row := range tab.Rows {
			if err := writer.Write(row); err != nil {
				return "", fmt.Errorf("error writing CSV row: %w", err)
			}
		}
	}

	return filepath.Abs(outputFilename)
}

// ExportToJSON grava o relatório completo, incluindo as visões que não são
// materializadas como abas (anomalias e registros descartados).
func (r *ExportRepositoryImpl) ExportToJSON(report *entity.Report, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// ExportToPDF renderiza cada aba presente em sua própria página, paisagem.
func (r *ExportRepositoryImpl) ExportToPDF(report *entity.Report, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, tab := range report.Tabs() {
		pdf.AddPage()

		pdf.SetFillColor(40, 40, 40)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 12, tr(fmt.Sprintf("  %s", tab.Name)), "", 1, "L", true, 0, "")
		pdf.Ln(4)

		colWidth := 277.0 / float64(len(tab.Header))

		pdf.SetFont("Arial", "B", 8)
		pdf.SetTextColor(50, 50, 50)
		for _, name := range tab.Header {
			pdf.CellFormat(colWidth, 7, tr(truncateCell(name, colWidth)), "B", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 8)
		pdf.SetDrawColor(200, 200, 200)
		for _, row := range tab.Rows {
			if pdf.GetY() > 180 {
				pdf.AddPage()
			}
			for _, cell := range row {
				pdf.CellFormat(colWidth, 6, tr(truncateCell(cell, colWidth)), "B", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}

		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		footerText := fmt.Sprintf("Generated by IBM Cloud Invoice Analyzer | %s", time.Now().Format("2006-01-02"))
		pdf.CellFormat(0, 10, tr(footerText), "", 0, "L", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// truncateCell limita o texto à largura aproximada da coluna em fonte 8pt.
func truncateCell(text string, colWidth float64) string {
	maxChars := int(colWidth / 1.6)
	if maxChars < 4 {
		maxChars = 4
	}
	if len(text) <= maxChars {
		return text
	}
	return text[:maxChars-3] + "..."
}

func generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}
