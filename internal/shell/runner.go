package shell

import (
	"context"
	"io"

	"github.com/ethereum/go-ethereum/common"

	"github.com/kelsos/xos-wrap/internal/logger"
	"github.com/kelsos/xos-wrap/internal/models"
	"github.com/kelsos/xos-wrap/internal/tui"
	"github.com/kelsos/xos-wrap/internal/wrap"
)

// Engine is what a session drives. services.WrapService implements it.
type Engine interface {
	Address() common.Address
	Fees() models.FeeParams
	ReadBalances(ctx context.Context) (models.Balances, error)
	NewLoop(reporter wrap.Reporter, proceed wrap.ContinueFunc) *wrap.Loop
}

// Runner executes a loop run and displays its progress.
type Runner interface {
	Run(ctx context.Context, engine Engine, req models.TransactionRequest, repeat int) (models.LoopRun, error)
}

// ConsoleRunner prints progress line by line and asks Proceed after failures.
type ConsoleRunner struct {
	Out     io.Writer
	Proceed wrap.ContinueFunc
}

func (r ConsoleRunner) Run(ctx context.Context, engine Engine, req models.TransactionRequest, repeat int) (models.LoopRun, error) {
	loop := engine.NewLoop(NewConsoleReporter(r.Out), r.Proceed)
	return loop.Run(ctx, req, repeat), nil
}

// MonitorRunner shows the run in the full screen monitor.
type MonitorRunner struct{}

func (MonitorRunner) Run(ctx context.Context, engine Engine, req models.TransactionRequest, repeat int) (models.LoopRun, error) {
	monitor := tui.NewRunMonitor(ctx, req, repeat)
	loop := engine.NewLoop(monitor, monitor.Continue)
	return monitor.Run(func(ctx context.Context) models.LoopRun {
		return loop.Run(ctx, req, repeat)
	})
}

// ContinuePrompt asks through p whether to go on after a failed attempt.
func ContinuePrompt(p Prompter) wrap.ContinueFunc {
	return func(ctx context.Context, pos models.Position, _ error) bool {
		if ctx.Err() != nil {
			return false
		}
		proceed, err := p.Confirm("Continue with the next transaction?", true)
		if err != nil {
			logger.Warn("Continue prompt after %s failed: %v", pos, err)
			return false
		}
		return proceed
	}
}
