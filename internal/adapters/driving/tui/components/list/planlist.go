// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/houseplan-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
)

// PlanList displays the candidate plans of a proposal in a navigable list.
type PlanList struct {
	plans    []domain.RetrievedPlan
	selected int
	openKey  string
	styles   *styles.Styles
	width    int
}

// NewPlanList creates a new plan list component.
func NewPlanList(s *styles.Styles) *PlanList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &PlanList{
		styles: s,
		width:  80,
	}
}

// Update handles list navigation messages.
func (r *PlanList) Update(msg tea.Msg) (*PlanList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the plan list. focused highlights the selection.
func (r *PlanList) View(focused bool) string {
	if len(r.plans) == 0 {
		return r.styles.Muted.Render("No reference plans matched this request")
	}

	lines := make([]string, 0, len(r.plans)+1)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("Reference plans (%d)", len(r.plans))))

	maxNameLen := max(r.width-16, 10)
	for i, p := range r.plans {
		name := p.Filename
		if name == "" {
			name = p.Key()
		}
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}

		marker := " "
		if p.Key() == r.openKey {
			marker = "*"
		}
		line := fmt.Sprintf("%s %d. %-*s %.2f", marker, i+1, maxNameLen, name, p.Score)

		if focused && i == r.selected {
			lines = append(lines, r.styles.Selected.Render(line))
		} else {
			lines = append(lines, r.styles.Normal.Render(line))
		}
	}

	return strings.Join(lines, "\n")
}

// SetPlans replaces the plans and resets the selection.
func (r *PlanList) SetPlans(plans []domain.RetrievedPlan) {
	r.plans = plans
	r.selected = 0
	r.openKey = ""
}

// Plans returns the current plans.
func (r *PlanList) Plans() []domain.RetrievedPlan {
	return r.plans
}

// SetOpen marks the plan with key as the open document.
func (r *PlanList) SetOpen(key string) {
	r.openKey = key
}

// Selected returns the index of the selected plan.
func (r *PlanList) Selected() int {
	return r.selected
}

// SelectedPlan returns the currently selected plan, or nil if none.
func (r *PlanList) SelectedPlan() *domain.RetrievedPlan {
	if r.selected < 0 || r.selected >= len(r.plans) {
		return nil
	}
	return &r.plans[r.selected]
}

// MoveUp moves selection up.
func (r *PlanList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *PlanList) MoveDown() {
	if r.selected < len(r.plans)-1 {
		r.selected++
	}
}

// SetWidth sets the component width.
func (r *PlanList) SetWidth(width int) {
	r.width = width
}

// Height returns the number of lines View renders.
func (r *PlanList) Height() int {
	if len(r.plans) == 0 {
		return 1
	}
	return len(r.plans) + 1
}
