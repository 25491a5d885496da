// Package cli provides the houseplan command line interface.
// It implements a driving adapter that talks to the core through driving ports.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/houseplan-cli/internal/core/ports/driving"
	"github.com/custodia-labs/houseplan-cli/internal/logger"
)

var (
	version = "dev"
	verbose bool

	settingsService driving.SettingsService
	ingestService   driving.IngestService
	proposalService driving.ProposalService
	sessionService  driving.SessionService
)

var rootCmd = &cobra.Command{
	Use:   "houseplan",
	Short: "Draft house floor plans from reference drawings",
	Long: `houseplan ingests floor-plan PDFs, retrieves the drawings closest to a
customer's requirements and drafts a proposal with an LLM. The proposal can
then be refined in a chat session.

Run 'houseplan settings' first to configure the embedding and LLM providers.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline steps to stderr")
}

// Services holds the core services the commands run against.
type Services struct {
	Settings driving.SettingsService
	Ingest   driving.IngestService
	Proposal driving.ProposalService
	Session  driving.SessionService
}

// SetServices installs the services used by every command.
func SetServices(s Services) {
	settingsService = s.Settings
	ingestService = s.Ingest
	proposalService = s.Proposal
	sessionService = s.Session
}

// Execute runs the root command.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}
