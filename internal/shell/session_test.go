package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/xos-wrap/internal/chain"
	"github.com/kelsos/xos-wrap/internal/config"
	"github.com/kelsos/xos-wrap/internal/models"
	"github.com/kelsos/xos-wrap/internal/services"
	"github.com/kelsos/xos-wrap/internal/units"
	"github.com/kelsos/xos-wrap/internal/wrap"
)

func TestMain(m *testing.M) {
	pterm.DisableStyling()
	os.Exit(m.Run())
}

func newSimulatedService(t *testing.T) *services.WrapService {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Simulate = true
	cfg.SimulatedBalance = "5"

	svc, err := services.NewWrapService(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(svc.Cleanup)
	return svc
}

func newTestSession(svc *services.WrapService, script string) (*Session, *bytes.Buffer) {
	var out bytes.Buffer
	prompter := NewLinePrompter(strings.NewReader(script), &out)
	runner := ConsoleRunner{Out: &out, Proceed: ContinuePrompt(prompter)}
	return NewSession(svc, prompter, runner, &out, false), &out
}

func TestSessionWrapLoop(t *testing.T) {
	svc := newSimulatedService(t)
	// wrap, invalid amount, valid amount, loop mode, 2 runs, confirm, no restart
	session, out := newTestSession(svc, "1\n0\n1\n2\n2\ny\nn\n")

	require.NoError(t, session.Run(context.Background()))

	output := out.String()
	assert.Contains(t, output, "XOS balance:  5.00000000")
	assert.Contains(t, output, "Amount of XOS (max 5.00000000)")
	assert.Contains(t, output, "Invalid amount: must be greater than 0")
	assert.Contains(t, output, "Mode: Loop (2x)")
	assert.Contains(t, output, "Transaction 2/2 confirmed in block")
	assert.Contains(t, output, "Total success: 2/2")
	assert.Contains(t, output, "Goodbye!")

	balances, err := svc.ReadBalances(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2.00000000", balances.Wrapped)
}

func TestSessionCancelReturnsToMenu(t *testing.T) {
	svc := newSimulatedService(t)
	// wrap, amount, single mode, decline, exit
	session, out := newTestSession(svc, "1\n1\n1\nn\n3\n")

	require.NoError(t, session.Run(context.Background()))

	assert.Contains(t, out.String(), "Transaction cancelled")
	assert.Contains(t, out.String(), "Mode: Single (1x)")
	assert.Equal(t, 0, svc.Ledger().Calls(chain.OpSubmit))
	assert.Equal(t, 2, svc.Ledger().Calls(chain.OpBalance))
}

func TestSessionUnwrapBoundedByWrappedBalance(t *testing.T) {
	svc := newSimulatedService(t)
	session, out := newTestSession(svc, "2\n1\n")

	err := session.Run(context.Background())

	assert.ErrorIs(t, err, io.EOF)
	assert.Contains(t, out.String(), "Amount of WXOS (max 0.00000000)")
	assert.Contains(t, out.String(), "exceeds the available balance")
	assert.Equal(t, 0, svc.Ledger().Calls(chain.OpEstimate))
}

func TestSessionDeclinesContinueAfterFailure(t *testing.T) {
	svc := newSimulatedService(t)
	svc.Ledger().Inject(chain.OpSubmit, 1, errors.New("nonce too low"))
	// wrap, amount, loop mode, 2 runs, confirm, stop after failure, no restart
	session, out := newTestSession(svc, "1\n1\n2\n2\ny\nn\nn\n")

	require.NoError(t, session.Run(context.Background()))

	output := out.String()
	assert.Contains(t, output, "Transaction 1/2 failed: failed to submit wrap: nonce too low")
	assert.Contains(t, output, "Continue with the next transaction? [Y/n]")
	assert.Contains(t, output, "Total success: 0/2")
	assert.Equal(t, 1, svc.Ledger().Calls(chain.OpSubmit))
}

func TestSessionRestart(t *testing.T) {
	svc := newSimulatedService(t)
	// wrap 1 once, restart, unwrap 0.5 once, stop
	session, out := newTestSession(svc, "1\n1\n1\ny\ny\n2\n0.5\n1\ny\nn\n")

	require.NoError(t, session.Run(context.Background()))

	assert.Contains(t, out.String(), "WXOS balance: 1.00000000")
	assert.Equal(t, 2, svc.Ledger().Calls(chain.OpSubmit))

	balances, err := svc.ReadBalances(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.50000000", balances.Wrapped)
}

func TestSessionStopsOnCancelledContext(t *testing.T) {
	svc := newSimulatedService(t)
	session, _ := newTestSession(svc, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, session.Run(ctx), context.Canceled)
}

func TestSessionTerminalSpinner(t *testing.T) {
	svc := newSimulatedService(t)
	var out bytes.Buffer
	prompter := NewLinePrompter(strings.NewReader("3\n"), &out)
	session := NewSession(svc, prompter, ConsoleRunner{Out: &out}, &out, true)

	require.NoError(t, session.Run(context.Background()))

	assert.Contains(t, out.String(), "Balances loaded")
	assert.Contains(t, out.String(), "XOS balance:  5.00000000")
}

func TestSessionSpinnerStartFailure(t *testing.T) {
	svc := newSimulatedService(t)
	var out bytes.Buffer
	prompter := NewLinePrompter(strings.NewReader("3\n"), &out)
	session := NewSession(svc, prompter, ConsoleRunner{Out: &out}, &out, true)
	session.startSpinner = func(io.Writer, string) (*pterm.SpinnerPrinter, error) {
		return nil, errors.New("no cursor control")
	}

	require.NoError(t, session.Run(context.Background()))

	assert.NotContains(t, out.String(), "Balances loaded")
	assert.Contains(t, out.String(), "XOS balance:  5.00000000")
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestConsoleReporterRefreshFailure(t *testing.T) {
	var out bytes.Buffer
	r := NewConsoleReporter(&out)

	r.Succeeded(models.Position{Current: 2, Total: 2}, models.Outcome{
		Status:     models.OutcomeConfirmed,
		Receipt:    &models.Receipt{BlockNumber: 77, GasUsed: 45_038, Status: 1},
		RefreshErr: &wrap.ChainQueryError{Asset: "WXOS", Err: errors.New("connection refused")},
		At:         time.Now(),
	})

	output := out.String()
	assert.Contains(t, output, "Transaction 2/2 confirmed in block 77")
	assert.Contains(t, output, "Failed to refresh balances: failed to read WXOS balance: connection refused")
	assert.NotContains(t, output, "XOS balance:")
}

func TestSessionReportsRefreshFailure(t *testing.T) {
	svc := newSimulatedService(t)
	// header read is OpBalance 1, the pre-run read 2, the refresh 3
	svc.Ledger().Inject(chain.OpBalance, 3, errors.New("connection refused"))
	// wrap 1 once, confirm, decline to continue, no restart
	session, out := newTestSession(svc, "1\n1\n1\ny\nn\nn\n")

	require.NoError(t, session.Run(context.Background()))

	output := out.String()
	assert.Contains(t, output, "Transaction 1/1 confirmed in block")
	assert.Contains(t, output, "Failed to refresh balances: failed to read XOS balance: connection refused")
	assert.Contains(t, output, "Continue with the next transaction? [Y/n]")
	assert.Contains(t, output, "Total success: 1/1")
}

func TestConsoleReporter(t *testing.T) {
	var out bytes.Buffer
	r := NewConsoleReporter(&out)
	pos := models.Position{Current: 1, Total: 3}
	wei, err := units.ParseEther("1.5")
	require.NoError(t, err)

	r.Stage(pos, wrap.StageEstimating)
	r.Succeeded(pos, models.Outcome{
		Receipt:  &models.Receipt{BlockNumber: 1234, GasUsed: 45_038, Status: 1},
		Balances: &models.Balances{Native: "3.49999950", Wrapped: units.FormatBalance(wei)},
		At:       time.Date(2025, 1, 2, 13, 14, 15, 0, time.Local),
	})
	r.Failed(pos, &wrap.ValidationError{Field: "amount", Input: "9", Err: wrap.ErrAmountExceedsBalance})

	output := out.String()
	assert.Contains(t, output, "Transaction 1/3: estimating")
	assert.Contains(t, output, "Transaction 1/3 confirmed in block 1234")
	assert.Contains(t, output, "Gas used: 45038")
	assert.Contains(t, output, "WXOS balance: 1.50000000")
	assert.Contains(t, output, "Time: 13:14:15")
	assert.Contains(t, output, "Invalid amount: exceeds the available balance")
}
