package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ddanshin/kopilka/internal/category"
	"github.com/ddanshin/kopilka/internal/chart"
	"github.com/ddanshin/kopilka/internal/learning"
	"github.com/ddanshin/kopilka/internal/period"
	"github.com/ddanshin/kopilka/internal/recognizer"
	"github.com/ddanshin/kopilka/internal/transaction"
)

const recognizeTimeout = 2 * time.Minute

type parseState int

const (
	parseStateFilePick parseState = iota
	parseStateParsing
	parseStateChart
	parseStatePeriod
	parseStateDrafts
	parseStateTransactions
	parseStateCommitting
	parseStateResult
)

// ParseModel drives the screenshot flow: pick an image, run recognition,
// select chart categories, review synthesized drafts, commit.
type ParseModel struct {
	CommonModel
	txService  *transaction.Service
	recService *recognizer.Service
	learner    *learning.Service

	state      parseState
	filePicker filepicker.Model
	spinner    spinner.Model

	imagePath string
	result    *recognizer.Result
	resolved  period.Resolved

	selected   map[int]bool
	choiceList list.Model

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	drafts    []chart.Draft
	draftList list.Model

	status string
	err    error
}

func NewParseModel(txSvc *transaction.Service, recSvc *recognizer.Service, learner *learning.Service) ParseModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	si := textinput.New()
	si.Placeholder = "YYYY-MM-DD"
	si.CharLimit = 10
	si.Width = 12
	si.Prompt = "Start Date: "

	ei := textinput.New()
	ei.Placeholder = "YYYY-MM-DD"
	ei.CharLimit = 10
	ei.Width = 12
	ei.Prompt = "End Date:   "

	return ParseModel{
		txService:  txSvc,
		recService: recSvc,
		learner:    learner,
		filePicker: fp,
		spinner:    sp,
		startInput: si,
		endInput:   ei,
		selected:   make(map[int]bool),
	}
}

func (m ParseModel) Title() string { return "Parse Screenshot" }

func (m ParseModel) ShortHelp() string {
	switch m.state {
	case parseStateChart:
		return "Space: toggle | a: all | n: none | p: edit period | Enter: confirm | Esc: back"
	case parseStateTransactions:
		return "Space: toggle | a: all | n: none | Enter: confirm | Esc: back"
	case parseStatePeriod:
		return "Tab: switch | Enter: apply | Esc: cancel"
	case parseStateDrafts:
		return "Enter: commit | Esc: back to categories"
	case parseStateResult:
		return "Esc: back"
	}

	return "Esc: back | Enter: select"
}

func (m ParseModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ParseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		switch m.state {
		case parseStateChart, parseStateTransactions:
			return m.updateChoices(msg)
		case parseStatePeriod:
			return m.updatePeriod(msg)
		case parseStateDrafts:
			if msg.Type == tea.KeyEnter {
				m.state = parseStateCommitting
				m.status = "Saving transactions..."

				return m, tea.Batch(m.spinner.Tick, m.commitDraftsCmd())
			}

			var cmd tea.Cmd
			m.draftList, cmd = m.draftList.Update(msg)

			return m, cmd
		}

	case parseResultMsg:
		return m.handleParseResult(msg)

	case draftsMsg:
		if msg.err != nil {
			m.state = parseStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.drafts = msg.drafts
		m.resolved = msg.resolved
		m.state = parseStateDrafts
		m.draftList = newDraftList(msg.drafts)

		return m, nil

	case commitDoneMsg:
		m.state = parseStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf("Created %d transactions.", msg.count)

		return m, nil

	case spinner.TickMsg:
		if m.state != parseStateParsing && m.state != parseStateCommitting {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	if m.state == parseStatePeriod {
		var cmd1, cmd2 tea.Cmd
		m.startInput, cmd1 = m.startInput.Update(msg)
		m.endInput, cmd2 = m.endInput.Update(msg)

		return m, tea.Batch(cmd1, cmd2)
	}

	if m.state != parseStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = parseStateParsing
		m.imagePath = path
		m.status = fmt.Sprintf("Recognizing %s...", path)

		return m, tea.Batch(m.spinner.Tick, m.recognizeCmd(path))
	}

	return m, cmd
}

func (m ParseModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case parseStateChart, parseStateTransactions:
		m.state = parseStateFilePick
		m.result = nil
		m.selected = make(map[int]bool)

		return m, nil
	case parseStatePeriod:
		m.state = parseStateChart
		m.startInput.Blur()
		m.endInput.Blur()

		return m, nil
	case parseStateDrafts:
		m.state = parseStateChart
		m.drafts = nil

		return m, nil
	case parseStateResult:
		m.state = parseStateFilePick
		m.err = nil
		m.status = ""

		return m, nil
	}

	return m, Back
}

func (m ParseModel) handleParseResult(msg parseResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.state = parseStateResult
		m.err = msg.err
		m.status = fmt.Sprintf("Error: %v", msg.err)

		return m, nil
	}

	m.result = msg.result
	m.selected = make(map[int]bool)

	if msg.result.Chart != nil {
		m.resolved = msg.result.Chart.ResolvePeriod()

		items := make([]list.Item, len(msg.result.Chart.Categories))
		for i, cc := range msg.result.Chart.Categories {
			m.selected[i] = true
			items[i] = chartChoiceItem{slice: cc, category: category.Classify(cc.Name), index: i}
		}

		m.choiceList = newChoiceList(items, chartChoiceDelegate{selected: &m.selected},
			fmt.Sprintf("Recognized %s chart (%s)", msg.result.Chart.Type, m.resolved.Kind))
		m.state = parseStateChart

		return m, nil
	}

	if len(msg.result.Transactions) > 0 {
		items := make([]list.Item, len(msg.result.Transactions))
		for i, tx := range msg.result.Transactions {
			m.selected[i] = true
			items[i] = parsedTxItem{tx: tx, index: i}
		}

		m.choiceList = newChoiceList(items, parsedTxDelegate{selected: &m.selected},
			"Recognized Transactions")
		m.state = parseStateTransactions

		return m, nil
	}

	m.state = parseStateResult
	m.status = "Nothing recognized in this image."

	return m, nil
}

func (m ParseModel) updateChoices(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		idx := m.choiceList.Index()
		m.selected[idx] = !m.selected[idx]

		return m, nil
	case "a":
		for i := range m.choiceList.Items() {
			m.selected[i] = true
		}

		return m, nil
	case "n":
		for i := range m.choiceList.Items() {
			m.selected[i] = false
		}

		return m, nil
	case "p":
		if m.state == parseStateChart {
			m.startInput.SetValue(FormatDate(m.resolved.Start))
			m.endInput.SetValue(FormatDate(m.resolved.End))
			m.focusIndex = 0
			m.startInput.Focus()
			m.endInput.Blur()
			m.state = parseStatePeriod
			m.status = ""

			return m, textinput.Blink
		}
	case "enter":
		if m.state == parseStateChart {
			return m, m.synthesizeCmd()
		}

		m.state = parseStateCommitting
		m.status = "Saving transactions..."

		return m, tea.Batch(m.spinner.Tick, m.commitParsedCmd())
	}

	var cmd tea.Cmd
	m.choiceList, cmd = m.choiceList.Update(msg)

	return m, cmd
}

func (m ParseModel) updatePeriod(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = (m.focusIndex + 1) % 2
		m.startInput.Blur()
		m.endInput.Blur()
		if m.focusIndex == 0 {
			m.startInput.Focus()
		} else {
			m.endInput.Focus()
		}

		return m, textinput.Blink

	case "enter":
		start, err := time.Parse(time.DateOnly, m.startInput.Value())
		if err != nil {
			m.status = "Invalid start date (YYYY-MM-DD)"
			return m, nil
		}

		end, err := time.Parse(time.DateOnly, m.endInput.Value())
		if err != nil {
			m.status = "Invalid end date (YYYY-MM-DD)"
			return m, nil
		}

		if end.Before(start) {
			start, end = end, start
		}

		// Adjusting the window keeps the resolved granularity.
		m.resolved.Start = start.UTC()
		m.resolved.End = end.UTC()
		m.status = ""
		m.state = parseStateChart
		m.startInput.Blur()
		m.endInput.Blur()

		return m, nil
	}

	var cmd1, cmd2 tea.Cmd
	m.startInput, cmd1 = m.startInput.Update(msg)
	m.endInput, cmd2 = m.endInput.Update(msg)

	return m, tea.Batch(cmd1, cmd2)
}

func (m ParseModel) View() string {
	switch m.state {
	case parseStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select a screenshot to parse:\n\n%s", m.filePicker.View()),
		)
	case parseStateParsing, parseStateCommitting:
		return lipgloss.NewStyle().Padding(2).Render(
			fmt.Sprintf("%s %s", m.spinner.View(), m.status),
		)
	case parseStateChart, parseStateTransactions:
		return lipgloss.NewStyle().Padding(1).Render(m.choiceList.View())
	case parseStatePeriod:
		errLine := ""
		if m.status != "" {
			errLine = "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(m.status)
		}

		return lipgloss.NewStyle().Padding(2).Render(
			fmt.Sprintf("Adjust Period (%s):\n\n%s\n%s\n\n(Enter to apply, Tab to switch, Esc to cancel)%s",
				m.resolved.Kind,
				m.startInput.View(),
				m.endInput.View(),
				errLine,
			),
		)
	case parseStateDrafts:
		header := fmt.Sprintf("Drafts for %s .. %s (%s period)",
			FormatDate(m.resolved.Start), FormatDate(m.resolved.End), m.resolved.Kind)

		return lipgloss.NewStyle().Padding(1).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				lipgloss.NewStyle().Bold(true).Render(header),
				"",
				m.draftList.View(),
			),
		)
	case parseStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ParseModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	color := lipgloss.Color("46")
	if m.err != nil {
		color = lipgloss.Color("196")
	}

	return style.Render(
		lipgloss.NewStyle().Foreground(color).Render(m.status) +
			"\n\n(Esc to go back)",
	)
}

// Messages

type parseResultMsg struct {
	result *recognizer.Result
	err    error
}

type draftsMsg struct {
	drafts   []chart.Draft
	resolved period.Resolved
	err      error
}

type commitDoneMsg struct {
	count int
	err   error
}

func (m ParseModel) recognizeCmd(path string) tea.Cmd {
	return func() tea.Msg {
		content, err := os.ReadFile(path)
		if err != nil {
			return parseResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), recognizeTimeout)
		defer cancel()

		result, err := m.recService.Recognize(ctx, content, path)
		if err != nil {
			return parseResultMsg{err: err}
		}

		return parseResultMsg{result: result}
	}
}

func (m ParseModel) synthesizeCmd() tea.Cmd {
	c := *m.result.Chart
	resolved := m.resolved

	var indices []int
	for i := range c.Categories {
		if m.selected[i] {
			indices = append(indices, i)
		}
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		drafts := chart.Synthesize(c, indices, resolved, m.learner.Classifier(ctx))

		return draftsMsg{drafts: drafts, resolved: resolved}
	}
}

func (m ParseModel) commitDraftsCmd() tea.Cmd {
	drafts := m.drafts
	imagePath := m.imagePath

	return func() tea.Msg {
		params := make([]transaction.CreateParams, len(drafts))
		for i, d := range drafts {
			params[i] = transaction.CreateParams{
				Amount:      transaction.CentsFromDecimal(d.Amount),
				Type:        transaction.TypeExpense,
				Category:    d.Category,
				Description: d.Description,
				Currency:    d.Currency,
				Date:        d.Date,
				Source:      transaction.SourceChart,
				ImagePath:   imagePath,
				RawText:     d.RawText,
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), recognizeTimeout)
		defer cancel()

		txs, err := m.txService.CreateBatch(ctx, params)
		if err != nil {
			return commitDoneMsg{err: err}
		}

		return commitDoneMsg{count: len(txs)}
	}
}

func (m ParseModel) commitParsedCmd() tea.Cmd {
	result := m.result
	selected := m.selected
	imagePath := m.imagePath

	return func() tea.Msg {
		var params []transaction.CreateParams

		for i, tx := range result.Transactions {
			if !selected[i] {
				continue
			}

			confidence := tx.Confidence
			params = append(params, transaction.CreateParams{
				Amount:       transaction.CentsFromDecimal(tx.Amount),
				Type:         transaction.TypeExpense,
				Category:     category.Normalize(tx.Category),
				Description:  tx.Description,
				Currency:     chart.DefaultCurrency,
				Date:         tx.Date,
				Source:       transaction.SourceRecognized,
				ImagePath:    imagePath,
				RawText:      result.RawText,
				AICategory:   tx.Category,
				AIConfidence: &confidence,
			})
		}

		if len(params) == 0 {
			return commitDoneMsg{}
		}

		ctx, cancel := context.WithTimeout(context.Background(), recognizeTimeout)
		defer cancel()

		txs, err := m.txService.CreateBatch(ctx, params)
		if err != nil {
			return commitDoneMsg{err: err}
		}

		return commitDoneMsg{count: len(txs)}
	}
}

func newChoiceList(items []list.Item, delegate list.ItemDelegate, title string) list.Model {
	l := list.New(items, delegate, 80, 20)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

// Chart category choice item

type chartChoiceItem struct {
	slice    chart.ChartCategory
	category category.Category
	index    int
}

func (i chartChoiceItem) Title() string       { return "" }
func (i chartChoiceItem) Description() string { return "" }
func (i chartChoiceItem) FilterValue() string { return "" }

type chartChoiceDelegate struct {
	selected *map[int]bool
}

func (d chartChoiceDelegate) Height() int                             { return 1 }
func (d chartChoiceDelegate) Spacing() int                            { return 0 }
func (d chartChoiceDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d chartChoiceDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(chartChoiceItem)
	if !ok {
		return
	}

	checkbox := "[ ]"
	if (*d.selected)[item.index] {
		checkbox = "[x]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	fmt.Fprintf(w, "%s%s %-30s %10s  %s\n",
		cursor, checkbox,
		item.slice.Name,
		FormatDecimal(item.slice.Value),
		item.category,
	)
}

// Parsed transaction choice item

type parsedTxItem struct {
	tx    recognizer.ParsedTransaction
	index int
}

func (i parsedTxItem) Title() string       { return "" }
func (i parsedTxItem) Description() string { return "" }
func (i parsedTxItem) FilterValue() string { return "" }

type parsedTxDelegate struct {
	selected *map[int]bool
}

func (d parsedTxDelegate) Height() int                             { return 1 }
func (d parsedTxDelegate) Spacing() int                            { return 0 }
func (d parsedTxDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d parsedTxDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(parsedTxItem)
	if !ok {
		return
	}

	checkbox := "[ ]"
	if (*d.selected)[item.index] {
		checkbox = "[x]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	fmt.Fprintf(w, "%s%s %s %10s  %-30s %s\n",
		cursor, checkbox,
		FormatDate(item.tx.Date),
		FormatDecimal(item.tx.Amount),
		item.tx.Description,
		item.tx.Category,
	)
}

// Draft preview item

type draftItem struct {
	draft chart.Draft
}

func (i draftItem) Title() string       { return "" }
func (i draftItem) Description() string { return "" }
func (i draftItem) FilterValue() string { return "" }

type draftDelegate struct{}

func (d draftDelegate) Height() int                             { return 1 }
func (d draftDelegate) Spacing() int                            { return 0 }
func (d draftDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d draftDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(draftItem)
	if !ok {
		return
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	fmt.Fprintf(w, "%s%s %10s %s  %-40s %s\n",
		cursor,
		FormatDate(item.draft.Date),
		FormatDecimal(item.draft.Amount),
		item.draft.Currency,
		item.draft.Description,
		item.draft.Category,
	)
}

func newDraftList(drafts []chart.Draft) list.Model {
	items := make([]list.Item, len(drafts))
	for i, d := range drafts {
		items[i] = draftItem{draft: d}
	}

	l := list.New(items, draftDelegate{}, 100, 18)
	l.Title = fmt.Sprintf("%d drafts ready to commit", len(drafts))
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}
