package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
)

// errNoRequest is returned when neither a request file nor request flags are given.
var errNoRequest = errors.New("a customer request is required: use --from or --family/--rooms/--area/--budget")

// requestFlags collects a customer request from flags or a YAML file.
// Flags override values read from the file.
type requestFlags struct {
	from   string
	family int
	rooms  int
	area   float64
	budget float64
	prefs  string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.from, "from", "f", "", "read the request from a YAML file")
	cmd.Flags().IntVar(&f.family, "family", 0, "number of people in the household")
	cmd.Flags().IntVar(&f.rooms, "rooms", 0, "number of rooms wanted")
	cmd.Flags().Float64Var(&f.area, "area", 0, "floor area in square metres")
	cmd.Flags().Float64Var(&f.budget, "budget", 0, "budget in ten-thousand yen")
	cmd.Flags().StringVar(&f.prefs, "prefs", "", "free-text preferences")
}

func (f *requestFlags) provided() bool {
	return f.from != "" || f.family != 0 || f.rooms != 0 || f.area != 0 || f.budget != 0 || f.prefs != ""
}

func (f *requestFlags) build() (domain.CustomerRequest, error) {
	if !f.provided() {
		return domain.CustomerRequest{}, errNoRequest
	}

	var req domain.CustomerRequest
	if f.from != "" {
		var err error
		if req, err = loadRequestFile(f.from); err != nil {
			return domain.CustomerRequest{}, err
		}
	}

	if f.family != 0 {
		req.FamilySize = f.family
	}
	if f.rooms != 0 {
		req.RoomCount = f.rooms
	}
	if f.area != 0 {
		req.FloorAreaSqm = f.area
	}
	if f.budget != 0 {
		req.Budget = f.budget
	}
	if f.prefs != "" {
		req.Preferences = f.prefs
	}
	return req, req.Validate()
}

// loadRequestFile reads a customer request from YAML:
//
//	family_size: 4
//	rooms: 3
//	area_sqm: 120
//	budget: 4500
//	preferences: south-facing living room
func loadRequestFile(path string) (domain.CustomerRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.CustomerRequest{}, fmt.Errorf("reading request file: %w", err)
	}

	var req domain.CustomerRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return domain.CustomerRequest{}, fmt.Errorf("%w: parsing %s: %w", domain.ErrInvalidInput, path, err)
	}
	return req, nil
}

// printProposal writes the proposal text followed by its reference plans.
func printProposal(cmd *cobra.Command, text string, plans []domain.RetrievedPlan) {
	cmd.Println("Proposal")
	cmd.Println("========")
	cmd.Println()
	cmd.Println(text)
	cmd.Println()

	if len(plans) == 0 {
		cmd.Println("Reference plans: none")
		return
	}
	cmd.Println("Reference plans:")
	for i, p := range plans {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, p.Filename, p.Score)
		cmd.Printf("      %s\n", p.Key())
	}
}
