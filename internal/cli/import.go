package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"rosterline/internal/core"
	"rosterline/internal/registry"
)

var (
	importDryRun      bool
	importRegistryURL string
)

var importCmd = &cobra.Command{
	Use:   "import <roster.csv>",
	Short: "Import a roster export in one shot",
	Long: `Run the full pipeline on a roster file without the HTTP service:
parse, map, validate, and submit to the member registry.

Validation errors are printed per row and block submission. Use
--dry-run to stop after validation and see what would be submitted.

Examples:
  rosterline import roster.csv
  rosterline import roster.csv --dry-run
  rosterline import roster.csv --registry-url https://registry.example.org`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "validate only, do not submit")
	importCmd.Flags().StringVar(&importRegistryURL, "registry-url", "", "registry base URL (overrides REGISTRY_URL)")
}

func runImport(cmd *cobra.Command, args []string) error {
	registryURL := importRegistryURL
	if registryURL == "" {
		registryURL = cfg.Registry.URL
	}
	if registryURL == "" {
		return fmt.Errorf("no registry configured: set REGISTRY_URL or pass --registry-url")
	}

	info, err := os.Stat(args[0])
	if err != nil {
		return err
	}
	if info.Size() > cfg.Import.MaxFileSize {
		return fmt.Errorf("%s is %d bytes, over the %d byte limit", args[0], info.Size(), cfg.Import.MaxFileSize)
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client := registry.NewClient(registryURL, cfg.Registry.Token, cfg.Registry.Timeout)
	sess, err := core.NewSession(ctx, uuid.NewString(), client, cfg.Import.PageSize)
	if err != nil {
		return err
	}
	if err := sess.LoadFile(data); err != nil {
		return err
	}

	report, err := sess.Report()
	if err != nil {
		return err
	}
	fmt.Printf("Parsed %d rows from %s\n", report.RowCount, args[0])
	for _, m := range report.Malformed {
		fmt.Printf("  skipped line %d: %s\n", m.Line, m.Reason)
	}

	if invalid := sess.InvalidRows(); invalid > 0 {
		printRowErrors(sess)
		return fmt.Errorf("%d of %d rows failed validation; nothing was submitted", invalid, report.RowCount)
	}

	if importDryRun {
		fmt.Printf("Dry run: %d rows valid, submission skipped\n", report.RowCount)
		return nil
	}

	result, err := sess.Submit(ctx)
	if err != nil {
		if core.IsRetryable(err) {
			return fmt.Errorf("%w (transport failure; the same import can be retried)", err)
		}
		return err
	}

	fmt.Printf("Accepted %d rows\n", result.Accepted)
	if result.Rejected > 0 {
		for _, rej := range result.Rejections {
			fmt.Printf("  row %d rejected: %s\n", rej.RowNumber, rej.Reason)
		}
		return fmt.Errorf("registry rejected %d rows", result.Rejected)
	}
	return nil
}

// printRowErrors walks every preview page and prints validation errors in
// row order.
func printRowErrors(sess *core.Session) {
	_, totalPages, err := sess.Page(1)
	if err != nil {
		return
	}
	for page := 1; page <= totalPages; page++ {
		records, _, err := sess.Page(page)
		if err != nil {
			return
		}
		for _, rec := range records {
			if rec.Valid() {
				continue
			}
			fields := make([]string, 0, len(rec.Errors))
			for f := range rec.Errors {
				fields = append(fields, f)
			}
			sort.Strings(fields)
			for _, f := range fields {
				fmt.Printf("  row %d, %s: %s\n", rec.RowNumber, f, rec.Errors[f])
			}
		}
	}
}
