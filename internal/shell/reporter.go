package shell

import (
	"io"

	"github.com/pterm/pterm"

	"github.com/kelsos/xos-wrap/internal/models"
	"github.com/kelsos/xos-wrap/internal/wrap"
)

// ConsoleReporter prints loop progress with pterm, one line per event.
type ConsoleReporter struct {
	info    *pterm.PrefixPrinter
	success *pterm.PrefixPrinter
	failure *pterm.PrefixPrinter
	detail  *pterm.PrefixPrinter
}

func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{
		info:    pterm.Info.WithWriter(out),
		success: pterm.Success.WithWriter(out),
		failure: pterm.Error.WithWriter(out),
		detail:  pterm.Description.WithWriter(out),
	}
}

func (r *ConsoleReporter) Stage(pos models.Position, stage wrap.Stage) {
	r.info.Printfln("Transaction %s: %s", pos, stage)
}

func (r *ConsoleReporter) Succeeded(pos models.Position, outcome models.Outcome) {
	if outcome.Receipt != nil {
		r.success.Printfln("Transaction %s confirmed in block %d", pos, outcome.Receipt.BlockNumber)
		r.detail.Printfln("Gas used: %d", outcome.Receipt.GasUsed)
	} else {
		r.success.Printfln("Transaction %s confirmed", pos)
	}
	if outcome.Balances != nil {
		r.detail.Printfln("XOS balance: %s", outcome.Balances.Native)
		r.detail.Printfln("WXOS balance: %s", outcome.Balances.Wrapped)
	}
	if outcome.RefreshErr != nil {
		r.failure.Printfln("Failed to refresh balances: %s", wrap.Describe(outcome.RefreshErr))
	}
	r.detail.Printfln("Time: %s", outcome.At.Format("15:04:05"))
}

func (r *ConsoleReporter) Failed(pos models.Position, err error) {
	r.failure.Printfln("Transaction %s failed: %s", pos, wrap.Describe(err))
}
