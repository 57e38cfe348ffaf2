package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kelsos/xos-wrap/internal/logger"
	"github.com/kelsos/xos-wrap/internal/models"
	"github.com/kelsos/xos-wrap/internal/wrap"
)

// RunMonitor shows a loop run in a full screen view. It implements
// wrap.Reporter and provides the continue question as a wrap.ContinueFunc.
type RunMonitor struct {
	program *tea.Program
	cancel  context.CancelFunc
	ctx     context.Context
}

// NewRunMonitor prepares the view for a run. Extra program options are
// used by tests to swap input and output.
func NewRunMonitor(ctx context.Context, req models.TransactionRequest, total int, opts ...tea.ProgramOption) *RunMonitor {
	ctx, cancel := context.WithCancel(ctx)
	model := NewModel(req.Kind, req.Amount, total, cancel)

	options := append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	return &RunMonitor{
		program: tea.NewProgram(model, options...),
		cancel:  cancel,
		ctx:     ctx,
	}
}

// Context is cancelled when the user quits the view.
func (rm *RunMonitor) Context() context.Context {
	return rm.ctx
}

func (rm *RunMonitor) Stop() {
	if rm.program != nil {
		rm.program.Quit()
	}
}

func (rm *RunMonitor) Stage(pos models.Position, stage wrap.Stage) {
	rm.program.Send(StageUpdate{Position: pos, Stage: stage})
}

func (rm *RunMonitor) Succeeded(pos models.Position, outcome models.Outcome) {
	rm.program.Send(AttemptSucceeded{Position: pos, Outcome: outcome})
}

func (rm *RunMonitor) Failed(pos models.Position, err error) {
	rm.program.Send(AttemptFailed{Position: pos, Error: err})
}

// Continue asks the user in the view whether to go on after a failure.
// It returns false when the view is closed before an answer is given.
func (rm *RunMonitor) Continue(ctx context.Context, pos models.Position, err error) bool {
	reply := make(chan bool, 1)
	rm.program.Send(ContinueRequest{Position: pos, Error: err, Reply: reply})

	select {
	case proceed := <-reply:
		return proceed
	case <-ctx.Done():
		return false
	case <-rm.ctx.Done():
		return false
	}
}

// Run starts execute in a goroutine with the monitor's context and blocks
// until the user closes the view. The run is complete when Run returns.
func (rm *RunMonitor) Run(execute func(ctx context.Context) models.LoopRun) (models.LoopRun, error) {
	var run models.LoopRun
	done := make(chan struct{})

	go func() {
		defer close(done)
		run = execute(rm.ctx)
		rm.program.Send(RunFinished{Run: run})
	}()

	_, err := rm.program.Run()
	rm.cancel()
	<-done

	if err != nil {
		logger.Error("Run monitor failed: %v", err)
		return run, fmt.Errorf("failed to run TUI: %w", err)
	}
	return run, nil
}
