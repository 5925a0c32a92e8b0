package cli

import (
	"github.com/spf13/cobra"
)

func newHuntCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hunt",
		Short: "Play the treasure hunt",
	}

	cmd.AddCommand(newHuntClueCmd())
	cmd.AddCommand(newHuntScanCmd())

	return cmd
}

func newHuntClueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clue",
		Short: "Show the current clue (starts the timer on first use)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ClueResult

			if err := client.Get("/api/v1/hunt/clue", &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}
}

func newHuntScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <code>",
		Short: "Submit the code found at a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"code": args[0]}
			var result ScanResult

			if err := client.Post("/api/v1/hunt/scan", req, &result); err != nil {
				return err
			}

			newOutput(cmd).Print(result)
			return nil
		},
	}
}
