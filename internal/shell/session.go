package shell

import (
	"context"
	"fmt"
	"io"

	"github.com/pterm/pterm"

	"github.com/kelsos/xos-wrap/internal/logger"
	"github.com/kelsos/xos-wrap/internal/models"
	"github.com/kelsos/xos-wrap/internal/wrap"
)

const (
	actionWrap = iota
	actionUnwrap
	actionExit
)

const (
	modeSingle = iota
	modeLoop
)

// Session is the interactive menu loop: balances, choice, amount, mode,
// confirmation, execution and the restart question.
type Session struct {
	engine   Engine
	prompter Prompter
	runner   Runner
	out      io.Writer
	tty      bool

	startSpinner func(out io.Writer, text string) (*pterm.SpinnerPrinter, error)
}

// NewSession creates a session. On a terminal tty enables the balance spinner
// and screen clearing.
func NewSession(engine Engine, prompter Prompter, runner Runner, out io.Writer, tty bool) *Session {
	return &Session{
		engine:   engine,
		prompter: prompter,
		runner:   runner,
		out:      out,
		tty:      tty,

		startSpinner: func(out io.Writer, text string) (*pterm.SpinnerPrinter, error) {
			return pterm.DefaultSpinner.WithWriter(out).Start(text)
		},
	}
}

// Run loops until the user exits, an unrecoverable error occurs or ctx ends.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		balances, err := s.loadBalances(ctx)
		if err != nil {
			return err
		}
		s.showHeader(balances)

		action, err := s.prompter.Select("Choose an action:", []string{
			"Wrap XOS to WXOS",
			"Unwrap WXOS to XOS",
			"Exit",
		})
		if err != nil {
			return err
		}
		if action == actionExit {
			s.goodbye()
			return nil
		}

		kind := models.Wrap
		if action == actionUnwrap {
			kind = models.Unwrap
		}

		req, repeat, confirmed, err := s.collect(kind, balances)
		if err != nil {
			return err
		}
		if !confirmed {
			pterm.Warning.WithWriter(s.out).Println("Transaction cancelled")
			continue
		}

		run, err := s.runner.Run(ctx, s.engine, req, repeat)
		if err != nil {
			return err
		}
		pterm.Success.WithWriter(s.out).Printfln("Total success: %s", run.Summary())

		again, err := s.prompter.Confirm("Run another transaction?", true)
		if err != nil {
			return err
		}
		if !again {
			s.goodbye()
			return nil
		}
	}
}

// collect asks for amount, mode and confirmation. The amount is bounded by
// the balances shown in the header.
func (s *Session) collect(kind models.OperationKind, balances models.Balances) (models.TransactionRequest, int, bool, error) {
	bound := balances.Bound(kind)
	amount, err := s.prompter.Input(
		fmt.Sprintf("Amount of %s (max %s)", kind.Asset(), balances.Display(kind)),
		func(input string) error {
			_, err := wrap.ValidateAmount(input, bound)
			return err
		},
	)
	if err != nil {
		return models.TransactionRequest{}, 0, false, err
	}

	repeat, err := s.executionMode()
	if err != nil {
		return models.TransactionRequest{}, 0, false, err
	}

	mode := "Single"
	if repeat > 1 {
		mode = "Loop"
	}
	pterm.DefaultSection.WithWriter(s.out).Println("Summary")
	pterm.Info.WithWriter(s.out).Printfln("Action: %s %s %s", kind.Verb(), amount, kind.Asset())
	pterm.Info.WithWriter(s.out).Printfln("Mode: %s (%dx)", mode, repeat)

	confirmed, err := s.prompter.Confirm("Confirm transaction?", true)
	if err != nil {
		return models.TransactionRequest{}, 0, false, err
	}

	req := models.TransactionRequest{
		Kind:   kind,
		Amount: amount,
		Fees:   s.engine.Fees(),
	}
	logger.Info("Prepared %s of %s %s x%d (confirmed: %t)", kind, amount, kind.Asset(), repeat, confirmed)
	return req, repeat, confirmed, nil
}

func (s *Session) executionMode() (int, error) {
	mode, err := s.prompter.Select("Choose execution mode:", []string{
		"Execute once",
		"Execute repeatedly",
	})
	if err != nil {
		return 0, err
	}
	if mode == modeSingle {
		return 1, nil
	}

	count, err := s.prompter.Input("Number of executions", func(input string) error {
		_, err := wrap.ValidateRepeatCount(input)
		return err
	})
	if err != nil {
		return 0, err
	}
	return wrap.ValidateRepeatCount(count)
}

func (s *Session) loadBalances(ctx context.Context) (models.Balances, error) {
	var spinner *pterm.SpinnerPrinter
	if s.tty {
		started, err := s.startSpinner(s.out, "Loading balances...")
		if err != nil {
			logger.Debug("Balance spinner unavailable: %v", err)
		} else {
			spinner = started
		}
	}

	if spinner == nil {
		balances, err := s.engine.ReadBalances(ctx)
		if err != nil {
			pterm.Error.WithWriter(s.out).Println("Failed to load balances")
			return models.Balances{}, err
		}
		return balances, nil
	}

	balances, err := s.engine.ReadBalances(ctx)
	if err != nil {
		spinner.Fail("Failed to load balances")
		return models.Balances{}, err
	}
	spinner.Success("Balances loaded")
	return balances, nil
}

func (s *Session) showHeader(balances models.Balances) {
	if s.tty {
		fmt.Fprint(s.out, "\033[H\033[2J")
	}
	pterm.DefaultBox.
		WithTitle("XOS Wrap/Unwrap").
		WithTitleTopCenter().
		WithWriter(s.out).
		Println(fmt.Sprintf("Wallet: %s\nXOS balance:  %s\nWXOS balance: %s",
			s.engine.Address().Hex(), balances.Native, balances.Wrapped))
}

func (s *Session) goodbye() {
	pterm.Info.WithWriter(s.out).Println("Goodbye!")
}
