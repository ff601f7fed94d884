package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/ddanshin/kopilka/cmd/tui/internal/view"
	"github.com/ddanshin/kopilka/internal/budget"
	budgetStore "github.com/ddanshin/kopilka/internal/budget/store"
	"github.com/ddanshin/kopilka/internal/config"
	"github.com/ddanshin/kopilka/internal/database"
	"github.com/ddanshin/kopilka/internal/export"
	"github.com/ddanshin/kopilka/internal/learning"
	learningStore "github.com/ddanshin/kopilka/internal/learning/store"
	"github.com/ddanshin/kopilka/internal/recognizer"
	"github.com/ddanshin/kopilka/internal/transaction"
	txStore "github.com/ddanshin/kopilka/internal/transaction/store"
)

type model struct {
	txService         *transaction.Service
	learnService      *learning.Service
	budgetService     *budget.Service
	exportService     *export.Service
	recognizerService *recognizer.Service

	currentView View

	parseView  view.ParseModel
	txView     view.TransactionsModel
	budgetView view.BudgetsModel
	exportView view.ExportModel
}

type View int

const (
	ViewMenu         View = 0
	ViewParse        View = 1
	ViewTransactions View = 2
	ViewBudgets      View = 3
	ViewExport       View = 4
)

func initialModel() model {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	vision, err := recognizer.NewGeminiVision(ctx, cfg.Recognizer.Model)
	if err != nil {
		slog.Error("failed to create vision client", "error", err)
		os.Exit(1)
	}

	txSvc := transaction.NewService(txStore.New(db))
	learnSvc := learning.NewService(learningStore.New(db), logger)
	budgetSvc := budget.NewService(budgetStore.New(db), txSvc)
	expSvc := export.NewService(txSvc)
	recSvc := recognizer.NewService(vision, logger)

	return model{
		txService:         txSvc,
		learnService:      learnSvc,
		budgetService:     budgetSvc,
		exportService:     expSvc,
		recognizerService: recSvc,
		currentView:       ViewMenu,
		parseView:         view.NewParseModel(txSvc, recSvc, learnSvc),
		txView:            view.NewTransactionsModel(txSvc, learnSvc),
		budgetView:        view.NewBudgetsModel(budgetSvc),
		exportView:        view.NewExportModel(expSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewParse
				m.parseView = view.NewParseModel(m.txService, m.recognizerService, m.learnService)

				return m, m.parseView.Init()
			case "2":
				m.currentView = ViewTransactions
				m.txView = view.NewTransactionsModel(m.txService, m.learnService)

				return m, m.txView.Init()
			case "3":
				m.currentView = ViewBudgets
				m.budgetView = view.NewBudgetsModel(m.budgetService)

				return m, m.budgetView.Init()
			case "4":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.exportService)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewParse:
		var newModel tea.Model
		newModel, cmd = m.parseView.Update(msg)
		m.parseView = newModel.(view.ParseModel)
	case ViewTransactions:
		var newModel tea.Model
		newModel, cmd = m.txView.Update(msg)
		m.txView = newModel.(view.TransactionsModel)
	case ViewBudgets:
		var newModel tea.Model
		newModel, cmd = m.budgetView.Update(msg)
		m.budgetView = newModel.(view.BudgetsModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Kopilka TUI\n\n" +
				"1. Parse Screenshot\n" +
				"2. Manage Transactions\n" +
				"3. Budgets\n" +
				"4. Export CSV\n\n" +
				"q. Quit",
		)
	case ViewParse:
		return m.parseView.View()
	case ViewTransactions:
		return m.txView.View()
	case ViewBudgets:
		return m.budgetView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
