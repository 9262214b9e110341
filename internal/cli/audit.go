package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/silversurf/auditor/internal/control"
	"github.com/silversurf/auditor/internal/core/domain"
)

var (
	auditDevice  string
	auditFormat  string
	auditVariant string
	auditJSON    bool
)

var auditCmd = &cobra.Command{
	Use:   "audit <url>",
	Short: "Run a one-shot accessibility audit against a URL",
	Args:  cobra.ExactArgs(1),
	Run:   runAudit,
}

func init() {
	auditCmd.Flags().StringVar(&auditDevice, "device", "desktop", "device class: desktop, mobile, tablet")
	auditCmd.Flags().StringVar(&auditFormat, "format", "json", "report format: json or html")
	auditCmd.Flags().StringVar(&auditVariant, "variant", "full", "audit variant: full or reduced")
	auditCmd.Flags().BoolVar(&auditJSON, "json", false, "print the full outcome as JSON")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	setupLogging(cfg)

	app, err := control.NewService(controlConfig(cfg))
	if err != nil {
		slog.Error("Failed to initialize service", "error", err)
		os.Exit(1)
	}

	req := domain.AuditRequest{
		URL:     args[0],
		Device:  domain.DeviceClass(auditDevice),
		Format:  domain.OutputFormat(auditFormat),
		Variant: domain.AuditVariant(auditVariant),
	}

	outcome, err := app.Audit(context.Background(), req)
	if err != nil {
		slog.Error("Audit request rejected", "error", err)
		os.Exit(1)
	}

	if auditJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(outcome)
	} else {
		printOutcome(outcome)
	}

	if !outcome.Success {
		os.Exit(1)
	}
}

func printOutcome(outcome *domain.AuditOutcome) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	if outcome.Success {
		fmt.Fprintf(w, "Result:\tsuccess\n")
		fmt.Fprintf(w, "Strategy:\t%s (attempt %d)\n", outcome.StrategyUsed, outcome.AttemptIndex)
		if outcome.Artifact != nil {
			fmt.Fprintf(w, "Score:\t%.2f%%\n", outcome.Artifact.Score)
			fmt.Fprintf(w, "Report:\t%s\n", outcome.Artifact.Path)
		}
		return
	}

	fmt.Fprintf(w, "Result:\tfailure (%s)\n", outcome.ErrorCode)
	fmt.Fprintf(w, "Recommendation:\t%s\n", outcome.Recommendation)
	fmt.Fprintln(w, "Attempts:")
	for _, rec := range outcome.AttemptLog {
		fmt.Fprintf(w, "\t%s #%d\t%s\t%s\n", rec.Strategy, rec.AttemptIndex, rec.ErrorClass, rec.Reason)
	}
}
