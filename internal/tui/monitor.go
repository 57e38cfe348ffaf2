package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kelsos/xos-wrap/internal/models"
	"github.com/kelsos/xos-wrap/internal/wrap"
)

const maxLogs = 10

type AttemptStatus struct {
	Position models.Position
	Stage    wrap.Stage
	Outcome  *models.Outcome
	Error    error
}

type Model struct {
	kind         models.OperationKind
	amount       string
	total        int
	attempts     []*AttemptStatus
	balances     *models.Balances
	question     *ContinueRequest
	logs         []string
	spinner      spinner.Model
	progress     progress.Model
	cancel       context.CancelFunc
	width        int
	height       int
	quit         bool
	done         bool
	errorCount   int
	successCount int
	run          *models.LoopRun
}

type StageUpdate struct {
	Position models.Position
	Stage    wrap.Stage
}

type AttemptSucceeded struct {
	Position models.Position
	Outcome  models.Outcome
}

type AttemptFailed struct {
	Position models.Position
	Error    error
}

// ContinueRequest asks whether the loop should go on after a failure. The
// answer is sent on Reply, which must be buffered.
type ContinueRequest struct {
	Position models.Position
	Error    error
	Reply    chan<- bool
}

type LogMessage struct {
	Message string
}

type RunFinished struct {
	Run models.LoopRun
}

// NewModel creates the monitor model for a run. cancel is called when the
// user quits before the run is over.
func NewModel(kind models.OperationKind, amount string, total int, cancel context.CancelFunc) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	pr := progress.New(progress.WithDefaultGradient())

	if cancel == nil {
		cancel = func() {}
	}

	return Model{
		kind:     kind,
		amount:   amount,
		total:    total,
		attempts: []*AttemptStatus{},
		logs:     []string{},
		spinner:  sp,
		progress: pr,
		cancel:   cancel,
		width:    80,
		height:   24,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		var quit bool
		m, quit = m.handleKeyMsg(msg)
		if quit {
			m.quit = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m = m.handleWindowSizeMsg(msg)

	case StageUpdate:
		m = m.handleStageUpdate(msg)

	case AttemptSucceeded:
		m = m.handleAttemptSucceeded(msg)

	case AttemptFailed:
		m = m.handleAttemptFailed(msg)

	case ContinueRequest:
		m.question = &msg

	case LogMessage:
		m = m.handleLogMessage(msg)

	case RunFinished:
		m.done = true
		m.run = &msg.Run
		m = m.handleLogMessage(LogMessage{Message: fmt.Sprintf("📊 Total success: %s", msg.Run.Summary())})

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		if progressModel, ok := progressModel.(progress.Model); ok {
			m.progress = progressModel
		}
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, bool) {
	key := msg.String()

	if key == "ctrl+c" {
		m = m.answer(false)
		m.cancel()
		return m, true
	}

	if m.question != nil {
		switch key {
		case "y", "Y", "enter":
			return m.answer(true), false
		case "n", "N", "q", "esc":
			return m.answer(false), false
		}
		return m, false
	}

	switch key {
	case "q":
		if !m.done {
			m.cancel()
		}
		return m, true
	case "enter":
		return m, m.done
	}
	return m, false
}

func (m Model) answer(proceed bool) Model {
	if m.question == nil {
		return m
	}
	m.question.Reply <- proceed
	if proceed {
		m = m.handleLogMessage(LogMessage{Message: "↪ Continuing with the next transaction"})
	} else {
		m = m.handleLogMessage(LogMessage{Message: "⏹ Stopping the loop"})
	}
	m.question = nil
	return m
}

func (m Model) handleWindowSizeMsg(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	m.progress.Width = msg.Width - 40
	return m
}

func (m Model) attempt(pos models.Position) *AttemptStatus {
	for _, a := range m.attempts {
		if a.Position.Current == pos.Current {
			return a
		}
	}
	return nil
}

func (m Model) handleStageUpdate(msg StageUpdate) Model {
	if a := m.attempt(msg.Position); a != nil {
		a.Stage = msg.Stage
		return m
	}
	m.attempts = append(m.attempts, &AttemptStatus{Position: msg.Position, Stage: msg.Stage})
	return m
}

func (m Model) handleAttemptSucceeded(msg AttemptSucceeded) Model {
	a := m.attempt(msg.Position)
	if a == nil {
		a = &AttemptStatus{Position: msg.Position}
		m.attempts = append(m.attempts, a)
	}
	outcome := msg.Outcome
	a.Outcome = &outcome
	m.successCount++

	if outcome.Balances != nil {
		m.balances = outcome.Balances
	}
	if outcome.Receipt != nil {
		m = m.handleLogMessage(LogMessage{Message: fmt.Sprintf("✅ %s confirmed in block %d, gas used %d",
			msg.Position, outcome.Receipt.BlockNumber, outcome.Receipt.GasUsed)})
	}
	if outcome.RefreshErr != nil {
		m = m.handleLogMessage(LogMessage{Message: fmt.Sprintf("⚠️ %s failed to refresh balances: %s",
			msg.Position, wrap.Describe(outcome.RefreshErr))})
	}
	return m
}

func (m Model) handleAttemptFailed(msg AttemptFailed) Model {
	a := m.attempt(msg.Position)
	if a == nil {
		a = &AttemptStatus{Position: msg.Position}
		m.attempts = append(m.attempts, a)
	}
	a.Error = msg.Error
	m.errorCount++
	return m.handleLogMessage(LogMessage{Message: fmt.Sprintf("❌ %s %s", msg.Position, wrap.Describe(msg.Error))})
}

func (m Model) handleLogMessage(msg LogMessage) Model {
	m.logs = append(m.logs, fmt.Sprintf("[%s] %s",
		time.Now().Format("15:04:05"), msg.Message))
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
	return m
}

func (m Model) completed() int {
	return m.successCount + m.errorCount
}

func (m Model) View() string {
	if m.quit {
		return "Shutting down...\n"
	}

	var s strings.Builder

	// Header
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginBottom(1)

	s.WriteString(headerStyle.Render(fmt.Sprintf("🔄 %s %s %s", m.kind.Verb(), m.amount, m.kind.Asset())))
	s.WriteString("\n\n")

	// Summary
	summaryStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("244"))

	summary := fmt.Sprintf("Transactions: %d/%d | ✅ Success: %d | ❌ Errors: %d",
		m.completed(), m.total, m.successCount, m.errorCount)
	if m.balances != nil {
		summary += fmt.Sprintf(" | 💰 XOS: %s | 💎 WXOS: %s", m.balances.Native, m.balances.Wrapped)
	}
	s.WriteString(summaryStyle.Render(summary))
	s.WriteString("\n")

	ratio := 0.0
	if m.total > 0 {
		ratio = float64(m.completed()) / float64(m.total)
	}
	s.WriteString(m.progress.ViewAs(ratio))
	s.WriteString("\n\n")

	// Attempts
	attemptSectionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1).
		Width(m.width - 2)

	var attempts strings.Builder
	attempts.WriteString("📊 Transactions\n")
	attempts.WriteString(strings.Repeat("─", 60) + "\n")

	for _, a := range m.visibleAttempts() {
		attempts.WriteString(m.renderAttempt(a) + "\n")
	}

	s.WriteString(attemptSectionStyle.Render(attempts.String()))
	s.WriteString("\n\n")

	// Logs section
	logSectionStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Width(m.width - 2).
		Height(8)

	var logSection strings.Builder
	logSection.WriteString("📝 Recent Logs\n")
	for _, log := range m.logs {
		logSection.WriteString(log + "\n")
	}

	s.WriteString(logSectionStyle.Render(logSection.String()))
	s.WriteString("\n\n")

	// Footer
	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	var footer string
	switch {
	case m.question != nil:
		questionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
		footer = questionStyle.Render(fmt.Sprintf("Continue with the next transaction after %s failed? [Y/n]", m.question.Position))
	case m.done:
		footer = footerStyle.Render(fmt.Sprintf("Total success: %s | Press 'enter' to continue", m.run.Summary()))
	default:
		footer = footerStyle.Render("Press 'q' to stop after the current step")
	}
	s.WriteString(footer)

	return s.String()
}

// visibleAttempts keeps the newest attempts that fit on screen.
func (m Model) visibleAttempts() []*AttemptStatus {
	limit := m.height - 24
	if limit < 5 {
		limit = 5
	}
	if len(m.attempts) <= limit {
		return m.attempts
	}
	return m.attempts[len(m.attempts)-limit:]
}

func (m Model) renderAttempt(a *AttemptStatus) string {
	stage := string(a.Stage)
	icon := getStageIcon(a.Stage)
	color := "39"
	indicator := m.spinner.View()

	var detail string
	switch {
	case a.Error != nil:
		icon, color, stage, indicator = "❌", "196", "failed", " "
		detail = wrap.Describe(a.Error)
	case a.Outcome != nil:
		icon, color, stage, indicator = "✅", "82", "confirmed", " "
		if r := a.Outcome.Receipt; r != nil {
			detail = fmt.Sprintf("block %d | gas %d | %s", r.BlockNumber, r.GasUsed, a.Outcome.At.Format("15:04:05"))
		}
	}

	line := fmt.Sprintf("%s %-7s %s %-10s", icon, a.Position, indicator, stage)
	if detail != "" {
		line += " " + truncate(detail, m.width-30)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(line)
}

func getStageIcon(stage wrap.Stage) string {
	switch stage {
	case wrap.StageValidating:
		return "🔎"
	case wrap.StageEstimating:
		return "⛽"
	case wrap.StageSubmitting:
		return "📤"
	case wrap.StageConfirming:
		return "⏳"
	default:
		return "❓"
	}
}

func truncate(s string, max int) string {
	if max < 4 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
