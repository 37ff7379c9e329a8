package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/mmynk/roomsplit/internal/calculator"
	"github.com/mmynk/roomsplit/internal/models"
	"github.com/mmynk/roomsplit/internal/split"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	faintStyle    = lipgloss.NewStyle().Faint(true)
	labelStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).Width(12)
	nameStyle     = lipgloss.NewStyle().Width(18)
	amountStyle   = lipgloss.NewStyle().Width(10).Align(lipgloss.Right)
	categoryStyle = lipgloss.NewStyle().Width(11)
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func money(d decimal.Decimal) string {
	return d.StringFixed(calculator.Places)
}

func row(label, value string) string {
	return labelStyle.Render(label) + value + "\n"
}

type participantView struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Owed string `json:"owed,omitempty" yaml:"owed,omitempty"`
}

type receiptView struct {
	ID           string            `json:"id" yaml:"id"`
	Title        string            `json:"title" yaml:"title"`
	Category     models.Category   `json:"category" yaml:"category"`
	Date         string            `json:"date" yaml:"date"`
	Total        string            `json:"total,omitempty" yaml:"total,omitempty"`
	Participants []participantView `json:"participants" yaml:"participants"`
}

func newReceiptView(receipt *models.Receipt, participants []*models.Participant) *receiptView {
	v := &receiptView{
		ID:           receipt.ID,
		Title:        receipt.Title,
		Category:     receipt.Category,
		Date:         receipt.Date,
		Participants: make([]participantView, len(participants)),
	}
	if receipt.TotalAmount.Valid {
		v.Total = money(receipt.TotalAmount.Decimal)
	}
	for i, p := range participants {
		v.Participants[i] = participantView{ID: p.ID, Name: p.Name}
		if p.AmountOwed.Valid {
			v.Participants[i].Owed = money(p.AmountOwed.Decimal)
		}
	}
	return v
}

func (v *receiptView) Render() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(v.Title) + "\n")
	b.WriteString(row("Receipt", v.ID))
	b.WriteString(row("Category", string(v.Category)))
	b.WriteString(row("Date", v.Date))
	if v.Total != "" {
		b.WriteString(row("Total", v.Total))
	} else {
		b.WriteString(row("Total", faintStyle.Render("not split yet")))
	}
	b.WriteString("\n")
	for _, p := range v.Participants {
		owed := faintStyle.Render("-")
		if p.Owed != "" {
			owed = p.Owed
		}
		b.WriteString(nameStyle.Render(p.Name) + amountStyle.Render(owed) + "  " + faintStyle.Render(p.ID) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

type allocationView struct {
	ParticipantID string `json:"participant_id" yaml:"participant_id"`
	Name          string `json:"name" yaml:"name"`
	Selected      bool   `json:"selected" yaml:"selected"`
	Amount        string `json:"amount" yaml:"amount"`
}

type splitView struct {
	ReceiptID   string           `json:"receipt_id" yaml:"receipt_id"`
	Title       string           `json:"title" yaml:"title"`
	Category    models.Category  `json:"category" yaml:"category"`
	Date        string           `json:"date" yaml:"date"`
	Mode        models.SplitMode `json:"mode" yaml:"mode"`
	Total       string           `json:"total" yaml:"total"`
	Allocations []allocationView `json:"allocations" yaml:"allocations"`
	Allocated   string           `json:"allocated" yaml:"allocated"`
	Drift       string           `json:"drift" yaml:"drift"`
	Saved       bool             `json:"saved" yaml:"saved"`
	Mirrored    bool             `json:"mirrored" yaml:"mirrored"`
}

func newSplitView(result *split.Result) *splitView {
	v := &splitView{
		ReceiptID:   result.Receipt.ID,
		Title:       result.Receipt.Title,
		Category:    result.Receipt.Category,
		Date:        result.Receipt.Date,
		Mode:        result.Mode,
		Total:       money(result.Total),
		Allocations: make([]allocationView, len(result.Allocations)),
		Allocated:   money(result.Audit.Allocated),
		Drift:       money(result.Audit.Drift),
		Saved:       true,
		Mirrored:    result.Mirrored,
	}
	for i, a := range result.Allocations {
		v.Allocations[i] = allocationView{
			ParticipantID: a.ParticipantID,
			Name:          a.Name,
			Selected:      a.Selected,
			Amount:        money(a.Amount),
		}
	}
	return v
}

// newPreviewView describes an allocation that has not been saved.
func newPreviewView(state *split.EditState, total decimal.Decimal, owed map[string]decimal.Decimal) *splitView {
	audit := calculator.AuditAllocation(total, owed)
	v := &splitView{
		ReceiptID:   state.Receipt.ID,
		Title:       state.Receipt.Title,
		Category:    state.Receipt.Category,
		Date:        state.Receipt.Date,
		Mode:        state.Mode,
		Total:       money(total),
		Allocations: make([]allocationView, len(state.Participants)),
		Allocated:   money(audit.Allocated),
		Drift:       money(audit.Drift),
	}
	for i, p := range state.Participants {
		v.Allocations[i] = allocationView{
			ParticipantID: p.ID,
			Name:          p.Name,
			Selected:      state.IsSelected(p.ID),
			Amount:        money(owed[p.ID]),
		}
	}
	return v
}

func (v *splitView) Render() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(v.Title) + faintStyle.Render("  "+v.Date+"  "+string(v.Category)) + "\n")
	b.WriteString(row("Total", v.Total))
	b.WriteString(row("Mode", strings.ToLower(string(v.Mode))))
	b.WriteString("\n")
	for _, a := range v.Allocations {
		line := nameStyle.Render(a.Name) + amountStyle.Render(a.Amount)
		if !a.Selected {
			line = faintStyle.Render(nameStyle.Render(a.Name)+amountStyle.Render(a.Amount)) + faintStyle.Render("  excluded")
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
	if v.Drift != money(decimal.Zero) {
		b.WriteString(warnStyle.Render(fmt.Sprintf("Shares add up to %s (%s against the total)", v.Allocated, v.Drift)) + "\n")
	}
	switch {
	case !v.Saved:
		b.WriteString(faintStyle.Render("Preview only, nothing saved."))
	case v.Mirrored:
		b.WriteString(successStyle.Render("Saved. Added to history."))
	default:
		b.WriteString(successStyle.Render("Saved."))
	}
	return b.String()
}

type historyEntryView struct {
	ID       string          `json:"id" yaml:"id"`
	Category models.Category `json:"category" yaml:"category"`
	Date     string          `json:"date" yaml:"date"`
	Total    string          `json:"total" yaml:"total"`
}

type historyView struct {
	Filter  string             `json:"filter" yaml:"filter"`
	Entries []historyEntryView `json:"entries" yaml:"entries"`
}

func newHistoryView(filter string, entries []models.HistoryEntry) *historyView {
	v := &historyView{Filter: filter, Entries: make([]historyEntryView, len(entries))}
	for i, e := range entries {
		v.Entries[i] = historyEntryView{
			ID:       e.ID,
			Category: e.Category,
			Date:     e.Date,
			Total:    money(e.Total),
		}
	}
	return v
}

func (v *historyView) Render() string {
	if len(v.Entries) == 0 {
		return faintStyle.Render("No receipts in history.")
	}
	var b strings.Builder
	for _, e := range v.Entries {
		b.WriteString(nameStyle.Render(e.Date) + categoryStyle.Render(string(e.Category)) + amountStyle.Render(e.Total) + "  " + faintStyle.Render(e.ID) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

type clearedView struct {
	Path    string `json:"path" yaml:"path"`
	Removed int    `json:"removed" yaml:"removed"`
}

func (v *clearedView) Render() string {
	return successStyle.Render(fmt.Sprintf("Cleared %d receipt(s) from history.", v.Removed))
}
