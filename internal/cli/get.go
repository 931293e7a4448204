package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vanshika/orders/backend/internal/domain"
)

type storedTransaction struct {
	domain.Snapshot
	StatusName string `json:"statusName"`
}

func newGetCommand(open AppOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print a stored transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid transaction id %q", args[0])
			}

			a, err := open(cmd.Context())
			if err != nil {
				if a != nil {
					closeApp(a)
				}
				return fmt.Errorf("assemble service: %w", err)
			}
			defer closeApp(a)

			tx, err := a.Repository.FindByID(cmd.Context(), id)
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("transaction %d not found", id)
			}
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(storedTransaction{Snapshot: tx.Snapshot(), StatusName: tx.Status.String()})
		},
	}
}
