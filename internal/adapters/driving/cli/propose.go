package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	proposeRequest requestFlags
	proposeJSON    bool
)

var proposeCmd = &cobra.Command{
	Use:   "propose",
	Short: "Draft a floor-plan proposal for a customer request",
	Long: `Records the customer request, retrieves the most similar reference plans
and asks the LLM for a proposal.

Examples:
  houseplan propose --family 4 --rooms 3 --area 120 --budget 4500 \
    --prefs "south-facing living room"

  houseplan propose --from request.yaml --json`,
	Args: cobra.NoArgs,
	RunE: runPropose,
}

func init() {
	proposeRequest.register(proposeCmd)
	proposeCmd.Flags().BoolVar(&proposeJSON, "json", false, "output the proposal as JSON")
	rootCmd.AddCommand(proposeCmd)
}

func runPropose(cmd *cobra.Command, _ []string) error {
	if proposalService == nil {
		return errors.New("proposal service not configured")
	}

	req, err := proposeRequest.build()
	if err != nil {
		return err
	}

	proposal, err := proposalService.Draft(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("proposal failed: %w", err)
	}

	if proposeJSON {
		data, err := json.MarshalIndent(proposal, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal proposal: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printProposal(cmd, proposal.Text, proposal.Plans)
	return nil
}
