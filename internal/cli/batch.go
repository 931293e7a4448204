package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/vanshika/orders/backend/internal/domain"
	"github.com/vanshika/orders/backend/internal/generator"
	"github.com/vanshika/orders/backend/internal/service"
)

func newBatchCommand(open AppOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Process a file of transaction requests concurrently",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, _ := cmd.Flags().GetString("file")
			workers, _ := cmd.Flags().GetInt("workers")
			details, _ := cmd.Flags().GetBool("details")
			statusName, _ := cmd.Flags().GetString("status")
			if file == "" {
				return errors.New("--file is required")
			}
			var filter *domain.Status
			if statusName != "" {
				status, err := domain.ParseStatus(statusName)
				if err != nil {
					return err
				}
				filter = &status
				details = true
			}

			reqs, err := generator.ReadRequests(file)
			if err != nil {
				return err
			}

			a, err := open(cmd.Context())
			if err != nil {
				if a != nil {
					closeApp(a)
				}
				return fmt.Errorf("assemble service: %w", err)
			}
			defer closeApp(a)

			report, runErr := a.Batch(workers).Run(cmd.Context(), reqs)
			out := cmd.OutOrStdout()
			if details {
				renderResults(out, filterResults(report.Results, filter))
			}
			renderSummary(out, report.Summary)

			var taskErr *service.TaskError
			if errors.As(runErr, &taskErr) {
				fmt.Fprintf(out, "%d requests rejected before processing\n", len(taskErr.Errors))
				return nil
			}
			return runErr
		},
	}

	cmd.Flags().String("file", "", "JSON array of transaction requests")
	cmd.Flags().Int("workers", 4, "number of concurrent workers")
	cmd.Flags().Bool("details", false, "print one row per request")
	cmd.Flags().String("status", "", "print only requests ending in this TRANSACTION_* status")
	return cmd
}

func filterResults(results []service.BatchResult, status *domain.Status) []service.BatchResult {
	if status == nil {
		return results
	}
	var kept []service.BatchResult
	for _, res := range results {
		if res.Transaction != nil && res.Transaction.Status == *status {
			kept = append(kept, res)
		}
	}
	return kept
}

func renderResults(w io.Writer, results []service.BatchResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Transaction", "Method", "Status", "Fraud", "Error"})
	for _, res := range results {
		row := []string{strconv.Itoa(res.Index), "", "", "", "", ""}
		if tx := res.Transaction; tx != nil {
			row[1] = strconv.FormatInt(tx.ID, 10)
			row[2] = tx.PaymentMethod
			row[3] = tx.Status.String()
			row[4] = strconv.FormatBool(tx.FraudStatus)
		}
		if res.Err != nil {
			row[5] = res.Err.Error()
		}
		table.Append(row)
	}
	table.Render()
}

func renderSummary(w io.Writer, s service.Summary) {
	statuses := make([]domain.Status, 0, len(s.ByStatus))
	for status := range s.ByStatus {
		statuses = append(statuses, status)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i] < statuses[j] })

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Status", "Count"})
	for _, status := range statuses {
		table.Append([]string{status.String(), strconv.Itoa(s.ByStatus[status])})
	}
	table.SetFooter([]string{"Total", strconv.Itoa(s.Total)})
	table.Render()

	fmt.Fprintf(w, "succeeded=%d fraud=%d failed=%d incomplete=%d\n", s.Succeeded, s.Fraud, s.Failed, s.Incomplete)
}
