package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/ddanshin/kopilka/internal/budget"
	"github.com/ddanshin/kopilka/internal/category"
	"github.com/ddanshin/kopilka/internal/transaction"
)

type budgetState int

const (
	budgetStateBrowse budgetState = iota
	budgetStateEdit
)

// BudgetsModel shows per-category limits with spending in the current window.
type BudgetsModel struct {
	CommonModel
	budgetService *budget.Service

	state    budgetState
	table    table.Model
	statuses []*budget.Status
	form     *huh.Form

	loading bool
	err     error
	status  string

	// Form bindings
	formCategory string
	formLimit    string
	formPeriod   string
}

func NewBudgetsModel(budgetSvc *budget.Service) BudgetsModel {
	columns := []table.Column{
		{Title: "Category", Width: 14},
		{Title: "Period", Width: 8},
		{Title: "Limit", Width: 10},
		{Title: "Spent", Width: 10},
		{Title: "Remaining", Width: 10},
		{Title: "Used", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return BudgetsModel{
		budgetService: budgetSvc,
		table:         t,
		loading:       true,
	}
}

func (m BudgetsModel) Title() string { return "Budgets" }

func (m BudgetsModel) ShortHelp() string {
	if m.state == budgetStateEdit {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | n: set budget | x: delete | r: refresh"
}

func (m BudgetsModel) Init() tea.Cmd {
	return m.loadStatusesCmd()
}

func (m BudgetsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadBudgetsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.statuses = msg.statuses
		m.err = nil
		m.refreshTable()

		return m, nil

	case budgetSavedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
		} else {
			m.status = "Budget saved."
		}

		m.state = budgetStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadStatusesCmd()

	case budgetDeletedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error deleting: %v", msg.err)
			return m, nil
		}

		m.status = "Budget deleted."

		return m, m.loadStatusesCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case budgetStateBrowse:
		return m.updateBrowse(msg)
	case budgetStateEdit:
		return m.updateEdit(msg)
	}

	return m, nil
}

func (m BudgetsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadStatusesCmd()
		case "n":
			return m.enterEditMode()
		case "x":
			idx := m.table.Cursor()
			if idx >= 0 && idx < len(m.statuses) {
				return m, m.deleteBudgetCmd(m.statuses[idx].Budget)
			}
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m BudgetsModel) enterEditMode() (tea.Model, tea.Cmd) {
	m.formCategory = string(category.Food)
	m.formLimit = ""
	m.formPeriod = string(budget.PeriodMonthly)

	options := make([]huh.Option[string], 0, len(category.All()))
	for _, c := range category.All() {
		options = append(options, huh.NewOption(string(c), string(c)))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("category").
				Title("Category").
				Options(options...).
				Value(&m.formCategory),

			huh.NewInput().
				Key("limit").
				Title("Limit").
				Placeholder("5000.00").
				Value(&m.formLimit).
				Validate(func(s string) error {
					d, err := decimal.NewFromString(strings.TrimSpace(s))
					if err != nil {
						return fmt.Errorf("enter an amount like 5000.00")
					}
					if !d.IsPositive() {
						return fmt.Errorf("limit must be positive")
					}
					return nil
				}),

			huh.NewSelect[string]().
				Key("period").
				Title("Period").
				Options(
					huh.NewOption("Monthly", string(budget.PeriodMonthly)),
					huh.NewOption("Weekly", string(budget.PeriodWeekly)),
				).
				Value(&m.formPeriod),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = budgetStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m BudgetsModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = budgetStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveBudgetCmd()
}

func (m BudgetsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading budgets...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := tableView

	if m.state == budgetStateEdit && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("Set Budget\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *BudgetsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.statuses))
	for _, st := range m.statuses {
		used := fmt.Sprintf("%.0f%%", st.Percentage)
		if st.Exceeded {
			used += " !"
		}

		rows = append(rows, table.Row{
			string(st.Budget.Category),
			string(st.Budget.Period),
			FormatAmount(st.Budget.LimitCents),
			FormatAmount(st.SpentCents),
			FormatAmount(st.RemainingCents),
			used,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadBudgetsMsg struct {
	statuses []*budget.Status
	err      error
}

func (m BudgetsModel) loadStatusesCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		statuses, err := m.budgetService.Statuses(ctx, time.Now().UTC())

		return loadBudgetsMsg{statuses: statuses, err: err}
	}
}

type budgetSavedMsg struct {
	err error
}

func (m BudgetsModel) saveBudgetCmd() tea.Cmd {
	cat := category.Category(m.formCategory)
	limit := m.formLimit
	period := budget.Period(m.formPeriod)

	return func() tea.Msg {
		d, err := decimal.NewFromString(strings.TrimSpace(limit))
		if err != nil {
			return budgetSavedMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		_, err = m.budgetService.Set(ctx, budget.SetParams{
			Category:   cat,
			LimitCents: transaction.CentsFromDecimal(d),
			Period:     period,
		})

		return budgetSavedMsg{err: err}
	}
}

type budgetDeletedMsg struct {
	err error
}

func (m BudgetsModel) deleteBudgetCmd(b *budget.Budget) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return budgetDeletedMsg{err: m.budgetService.Delete(ctx, b.ID)}
	}
}
