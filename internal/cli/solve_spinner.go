package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexanderramin/climbdiet/internal/cli/formatter"
	"github.com/alexanderramin/climbdiet/internal/service"
)

type solveFunc func(ctx context.Context) (*service.SolveResult, error)

type solveDoneMsg struct {
	res *service.SolveResult
	err error
}

// solveModel shows a spinner while a solve runs. Ctrl+C cancels the solve;
// the model still waits for the solver to return so its result is kept.
type solveModel struct {
	spinner   spinner.Model
	title     string
	ctx       context.Context
	cancel    context.CancelFunc
	solve     solveFunc
	started   time.Time
	cancelled bool
	done      bool
	res       *service.SolveResult
	err       error
}

func newSolveModel(ctx context.Context, title string, solve solveFunc) solveModel {
	ctx, cancel := context.WithCancel(ctx)
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(formatter.StylePurple),
	)
	return solveModel{
		spinner: s,
		title:   title,
		ctx:     ctx,
		cancel:  cancel,
		solve:   solve,
		started: time.Now(),
	}
}

func (m solveModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run)
}

func (m solveModel) run() tea.Msg {
	res, err := m.solve(m.ctx)
	return solveDoneMsg{res: res, err: err}
}

func (m solveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case solveDoneMsg:
		m.done, m.res, m.err = true, msg.res, msg.err
		m.cancel()
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			m.cancelled = true
			m.cancel()
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m solveModel) View() string {
	if m.done {
		return ""
	}
	status := fmt.Sprintf("%s %s", m.title, formatter.FormatElapsed(time.Since(m.started)))
	if m.cancelled {
		status = "cancelling, waiting for the solver to stop"
	}
	return fmt.Sprintf("  %s %s\n", m.spinner.View(), formatter.Dim(status))
}

// solveWithSpinner runs solve under a bubbletea program drawing to out.
func solveWithSpinner(ctx context.Context, out io.Writer, title string, solve solveFunc) (*service.SolveResult, error) {
	p := tea.NewProgram(newSolveModel(ctx, title, solve), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("running spinner: %w", err)
	}
	m := final.(solveModel)
	return m.res, m.err
}
