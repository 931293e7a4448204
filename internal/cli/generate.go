package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vanshika/orders/backend/internal/generator"
)

func newGenerateCommand() *cobra.Command {
	defaults := generator.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write synthetic transaction requests as a JSON array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			count, _ := cmd.Flags().GetInt("count")
			seed, _ := cmd.Flags().GetInt64("seed")
			out, _ := cmd.Flags().GetString("out")
			repeat, _ := cmd.Flags().GetFloat64("repeat-chance")
			unlisted, _ := cmd.Flags().GetFloat64("unlisted-chance")
			incomplete, _ := cmd.Flags().GetFloat64("incomplete-chance")

			gen := generator.New(generator.Config{
				NumRequests:          count,
				RepeatCustomerChance: clampProbability(repeat),
				UnlistedMethodChance: clampProbability(unlisted),
				IncompleteChance:     clampProbability(incomplete),
				Seed:                 seed,
			})
			reqs, err := gen.Generate(cmd.Context())
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}

			if out == "" || out == "-" {
				return generator.EncodeRequests(cmd.OutOrStdout(), reqs)
			}
			if err := generator.WriteRequests(reqs, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %d requests into %s\n", len(reqs), out)
			return nil
		},
	}

	cmd.Flags().Int("count", defaults.NumRequests, "number of requests to generate")
	cmd.Flags().Int64("seed", defaults.Seed, "random seed for deterministic generation")
	cmd.Flags().String("out", "-", "output file, - for stdout")
	cmd.Flags().Float64("repeat-chance", defaults.RepeatCustomerChance, "probability of reusing an earlier customer")
	cmd.Flags().Float64("unlisted-chance", defaults.UnlistedMethodChance, "probability of a payment method without a registered processor")
	cmd.Flags().Float64("incomplete-chance", defaults.IncompleteChance, "probability of omitting payment details")
	return cmd
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
