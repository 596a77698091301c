package cmd

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/spf13/cobra"

	"github.com/headgrade/headgrade/internal/scanner"
	consts "github.com/headgrade/headgrade/internal/shared/constants"
	"github.com/headgrade/headgrade/internal/storage"
)

//go:embed templates/report.html
var reportTemplateFS embed.FS

var htmlReportTemplate = template.Must(
	template.New("report.html").Funcs(template.FuncMap{
		"lower":      strings.ToLower,
		"formatTime": formatShortTimestamp,
	}).ParseFS(reportTemplateFS, "templates/report.html"),
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the last scan run as console, HTML, PDF or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")
		inPath, _ := cmd.Flags().GetString("input")

		store, err := storage.NewStore(resultsDir)
		if err != nil {
			return err
		}
		sourcePath := store.Path()
		if inPath != "" {
			sourcePath = inPath
		}
		run, err := storage.LoadFile(sourcePath)
		if err != nil {
			return fmt.Errorf("no scan results to report (run 'headgrade scan' first): %w", err)
		}

		switch strings.ToLower(format) {
		case "console":
			renderConsoleReport(run)
			return nil
		case "json":
			data, err := os.ReadFile(sourcePath)
			if err != nil {
				return err
			}
			return writeReport(outPath, data)
		case "html":
			var buf bytes.Buffer
			if err := htmlReportTemplate.Execute(&buf, run); err != nil {
				return fmt.Errorf("render HTML report: %w", err)
			}
			return writeReport(outPath, buf.Bytes())
		case "pdf":
			data, err := renderPDFReport(run)
			if err != nil {
				return err
			}
			if outPath == "" {
				return fmt.Errorf("--out is required for pdf format")
			}
			return writeReport(outPath, data)
		default:
			return fmt.Errorf("invalid format: %s (must be console, html, pdf, or json)", format)
		}
	},
}

func writeReport(outPath string, data []byte) error {
	if outPath == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(outPath, data, consts.DefaultFilePerm); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Printf("%s %s\n", colorInfo("Report:"), outPath)
	return nil
}

func renderConsoleReport(run *storage.Run) {
	fmt.Printf("Scan run %s — %d target(s)\n\n", formatShortTimestamp(run.StartedAt), len(run.Results))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TARGET\tSCORE\tGRADE\tHIGH\tMEDIUM\tLOW")
	for _, result := range run.Results {
		high, medium, low := countBySeverity(result.Findings)
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%d\t%d\n",
			result.Target, result.Score, formatGrade(result.Grade), high, medium, low)
	}
	w.Flush()

	for _, result := range run.Results {
		if result.Error == "" {
			continue
		}
		fmt.Printf("\n%s %s: %s\n", colorError("✗"), result.Target, result.Error)
	}
}

// countBySeverity tallies actionable findings (everything except clean
// 'present' entries).
func countBySeverity(findings []scanner.Finding) (high, medium, low int) {
	for _, finding := range findings {
		if finding.Status == scanner.StatusPresent {
			continue
		}
		switch finding.Severity {
		case scanner.SeverityHigh:
			high++
		case scanner.SeverityMedium:
			medium++
		case scanner.SeverityLow:
			low++
		}
	}
	return high, medium, low
}

func renderPDFReport(run *storage.Run) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Security Header Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 12, "Security Header Report")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Run started %s, %d target(s)", formatShortTimestamp(run.StartedAt), len(run.Results)))
	pdf.Ln(10)

	for _, result := range run.Results {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, fmt.Sprintf("%s — %d/100 (%s)", result.Target, result.Score, result.Grade))
		pdf.Ln(9)

		if result.Error != "" {
			pdf.SetFont("Helvetica", "I", 10)
			pdf.Cell(0, 6, "Scan failed: "+result.Error)
			pdf.Ln(10)
			continue
		}

		pdf.SetFont("Helvetica", "", 9)
		for _, finding := range result.Findings {
			if finding.Status == scanner.StatusPresent {
				continue
			}
			line := fmt.Sprintf("[%s] %s (%s): %s", finding.Severity, finding.Header, finding.Status, finding.Issue)
			pdf.MultiCell(0, 5, line, "", "L", false)
		}
		pdf.Ln(6)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render PDF report: %w", err)
	}
	return buf.Bytes(), nil
}

func formatShortTimestamp(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.UTC().Format("2006-01-02 15:04 UTC")
}

func init() {
	reportCmd.Flags().String("format", "console", "report format: console, html, pdf, or json")
	reportCmd.Flags().String("input", "", "results file to report on (default the last saved run)")
	reportCmd.Flags().String("out", "", "output file (default stdout; required for pdf)")
}
