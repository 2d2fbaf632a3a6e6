package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/graphem/pkg/observability"
)

// errInterrupted is returned when the user quits the progress view. It
// wraps context.Canceled so main exits with the SIGINT status.
var errInterrupted = fmt.Errorf("interrupted: %w", context.Canceled)

var (
	barFilledStyle = lipgloss.NewStyle().Foreground(colorCyan)
	barEmptyStyle  = lipgloss.NewStyle().Foreground(colorDim)
)

const barWidth = 40

// =============================================================================
// Messages
// =============================================================================

type runStartMsg struct{ n, m, iterations int }

type iterationMsg struct {
	iter, total int
	maxStep     float64
}

type noticeMsg struct{ code, message string }

type runDoneMsg struct{ err error }

// =============================================================================
// ProgressModel - Layout progress view
// =============================================================================

// ProgressModel is the bubbletea model that renders engine progress. Each
// engine run (one per seed round) restarts the bar.
type ProgressModel struct {
	Title   string
	Run     int
	Iter    int
	Total   int
	MaxStep float64
	N, M    int
	Notices []string
	Started time.Time

	done        bool
	interrupted bool
}

// NewProgressModel creates a progress model with the given title.
func NewProgressModel(title string) ProgressModel {
	return ProgressModel{Title: title, Started: time.Now()}
}

func (m ProgressModel) Init() tea.Cmd {
	return nil
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.interrupted = true
			return m, tea.Quit
		}
	case runStartMsg:
		m.Run++
		m.N, m.M, m.Total, m.Iter = msg.n, msg.m, msg.iterations, 0
	case iterationMsg:
		m.Iter, m.Total, m.MaxStep = msg.iter, msg.total, msg.maxStep
	case noticeMsg:
		m.Notices = append(m.Notices, msg.code+": "+msg.message)
	case runDoneMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m ProgressModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.Title))
	if m.Run > 1 {
		b.WriteString(StyleDim.Render(fmt.Sprintf("  run %d", m.Run)))
	}
	b.WriteString("\n")

	filled := 0
	if m.Total > 0 {
		filled = barWidth * m.Iter / m.Total
	}
	b.WriteString(barFilledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(barEmptyStyle.Render(strings.Repeat("░", barWidth-filled)))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d/%d", m.Iter, m.Total)))
	b.WriteString("\n")

	b.WriteString(StyleDim.Render(fmt.Sprintf("%d vertices · %d edges · max step %.4g · %s",
		m.N, m.M, m.MaxStep, time.Since(m.Started).Round(100*time.Millisecond))))
	b.WriteString("\n")
	for _, n := range m.Notices {
		b.WriteString(statusWarning.line(StyleWarning.Render(n)) + "\n")
	}
	if !m.done {
		b.WriteString(StyleDim.Render("q quit"))
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// Hooks bridge
// =============================================================================

// progressHooks forwards engine events to a running program.
type progressHooks struct {
	observability.NoopEmbeddingHooks
	send func(tea.Msg)
}

func (h progressHooks) OnEmbedStart(n, m, dim, iterations int) {
	h.send(runStartMsg{n: n, m: m, iterations: iterations})
}

func (h progressHooks) OnIteration(iter, total int, maxStep float64) {
	h.send(iterationMsg{iter: iter, total: total, maxStep: maxStep})
}

func (h progressHooks) OnNotice(code, message string) {
	h.send(noticeMsg{code: code, message: message})
}

// runWithProgress runs fn while a progress view tracks the engine through
// the embedding hooks. Previously registered hooks keep receiving events.
func runWithProgress(ctx context.Context, title string, fn func() error) error {
	p := tea.NewProgram(NewProgressModel(title), tea.WithOutput(os.Stderr), tea.WithContext(ctx))

	prev := observability.Embedding()
	observability.SetEmbeddingHooks(observability.MultiEmbedding{prev, progressHooks{send: p.Send}})
	defer observability.SetEmbeddingHooks(prev)

	errCh := make(chan error, 1)
	go func() {
		err := fn()
		errCh <- err
		p.Send(runDoneMsg{err: err})
	}()

	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("progress view: %w", err)
	}
	if m, ok := final.(ProgressModel); ok && m.interrupted {
		return errInterrupted
	}
	return <-errCh
}
