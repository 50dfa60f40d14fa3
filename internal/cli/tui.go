package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/zclosure/pkg/closure"
	zerrors "github.com/matzehuels/zclosure/pkg/errors"
	"github.com/matzehuels/zclosure/pkg/pipeline"
)

var (
	tuiDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	tuiHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

const tickInterval = 100 * time.Millisecond

// =============================================================================
// Messages
// =============================================================================

type (
	eventMsg  closure.Event
	tickMsg   time.Time
	resultMsg struct {
		res *pipeline.Result
		err error
	}
)

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// =============================================================================
// ClosureModel - Live closure progress
// =============================================================================

// runState is the latest progress of one closure run.
type runState struct {
	round     int
	pool      int
	rewritten int
	done      bool
}

// ClosureModel is the bubbletea model showing the progress of every closure
// run. It quits when the pipeline finishes; q or ctrl+c cancels the pipeline
// and waits for it to stop.
type ClosureModel struct {
	runs       []runState
	start      time.Time
	elapsed    time.Duration
	cancel     context.CancelFunc
	cancelling bool

	Result *pipeline.Result
	Err    error
}

// NewClosureModel creates a model for the given number of runs. cancel stops
// the pipeline.
func NewClosureModel(runs int, cancel context.CancelFunc) ClosureModel {
	return ClosureModel{
		runs:   make([]runState, max(runs, 1)),
		start:  time.Now(),
		cancel: cancel,
	}
}

func (m ClosureModel) Init() tea.Cmd {
	return tick()
}

func (m ClosureModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if !m.cancelling {
				m.cancelling = true
				if m.cancel != nil {
					m.cancel()
				}
			}
		}
	case eventMsg:
		if msg.Run >= 0 && msg.Run < len(m.runs) {
			r := &m.runs[msg.Run]
			r.round, r.pool, r.done = msg.Round, msg.Pool, msg.Done
			if !msg.Done {
				r.rewritten = msg.Rewritten
			}
		}
	case tickMsg:
		m.elapsed = time.Since(m.start)
		return m, tick()
	case resultMsg:
		m.Result, m.Err = msg.res, msg.err
		m.elapsed = time.Since(m.start)
		return m, tea.Quit
	}
	return m, nil
}

func (m ClosureModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Z-closure"))
	b.WriteString(tuiDimStyle.Render(fmt.Sprintf("  %s", m.elapsed.Round(time.Millisecond))))
	b.WriteString("\n")
	if m.cancelling {
		b.WriteString(StyleWarning.Render("cancelling..."))
	} else {
		b.WriteString(tuiDimStyle.Render("q cancel"))
	}
	b.WriteString("\n\n")

	rows := make([][]string, len(m.runs))
	done := 0
	for i, r := range m.runs {
		status := "running"
		switch {
		case r.done:
			status = iconSuccess
			done++
		case r.round == 0:
			status = "waiting"
		}
		rows[i] = []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(r.round),
			strconv.Itoa(r.pool),
			strconv.Itoa(r.rewritten),
			status,
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Run", "Round", "Pool", "Rewritten", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return tuiHeaderStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Foreground(colorWhite).Padding(0, 1)
		})
	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(tuiDimStyle.Render(fmt.Sprintf("%d/%d runs done", done, len(m.runs))))
	b.WriteString("\n")

	return b.String()
}

// =============================================================================
// Program
// =============================================================================

// runWithTUI executes the pipeline while a ClosureModel shows its progress
// on stderr. Logging is silenced for the duration so it cannot tear the view.
func runWithTUI(ctx context.Context, runner *pipeline.Runner, input []byte, opts pipeline.Options) (*pipeline.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runs := opts.Runs
	if runs == 0 {
		runs = pipeline.DefaultRuns
	}
	if !opts.UsesZRule() {
		runs = 0
	}

	p := tea.NewProgram(NewClosureModel(runs, cancel), tea.WithOutput(os.Stderr))

	user := opts.Observer
	opts.Observer = func(e closure.Event) {
		p.Send(eventMsg(e))
		if user != nil {
			user(e)
		}
	}
	opts.Logger = log.New(io.Discard)

	go func() {
		res, err := runner.Execute(ctx, input, opts)
		p.Send(resultMsg{res: res, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("progress view: %w", err)
	}
	m := final.(ClosureModel)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Result == nil {
		return nil, zerrors.Cancelled(context.Canceled, "closure")
	}
	return m.Result, nil
}
