package wrap

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/kelsos/xos-wrap/internal/logger"
	"github.com/kelsos/xos-wrap/internal/models"
)

// Reporter receives progress of a loop run. Calls happen on the goroutine
// running the loop, one at a time.
type Reporter interface {
	Stage(pos models.Position, stage Stage)
	Succeeded(pos models.Position, outcome models.Outcome)
	Failed(pos models.Position, err error)
}

// ContinueFunc decides whether the loop proceeds after a failed attempt.
type ContinueFunc func(ctx context.Context, pos models.Position, err error) bool

// AlwaysContinue keeps going after every failure.
func AlwaysContinue(context.Context, models.Position, error) bool { return true }

// NeverContinue aborts on the first failure.
func NeverContinue(context.Context, models.Position, error) bool { return false }

// Loop runs the same transaction request a number of times, one after another.
type Loop struct {
	executor *Executor
	reader   *BalanceReader
	reporter Reporter
	proceed  ContinueFunc
	now      func() time.Time
}

func NewLoop(executor *Executor, reader *BalanceReader, reporter Reporter, proceed ContinueFunc) *Loop {
	if reporter == nil {
		reporter = nopReporter{}
	}
	if proceed == nil {
		proceed = NeverContinue
	}
	return &Loop{
		executor: executor,
		reader:   reader,
		reporter: reporter,
		proceed:  proceed,
		now:      time.Now,
	}
}

// Run executes req repeat times. Every attempt re-checks the amount against
// the current balances first; the balances read after a confirmed attempt
// are reused for the next check. A failed refresh keeps the attempt confirmed
// but is reported and asks proceed like a failure. Context cancellation ends
// the run as aborted.
func (l *Loop) Run(ctx context.Context, req models.TransactionRequest, repeat int) models.LoopRun {
	run := models.LoopRun{
		ID:     uuid.NewString(),
		Kind:   req.Kind,
		Amount: req.Amount,
		Total:  repeat,
	}
	logger.Info("Run %s: %s %s %s x%d", run.ID, req.Kind.Verb(), req.Amount, req.Kind.Asset(), repeat)

	var latest *models.Balances
	for i := 1; i <= repeat; i++ {
		if ctx.Err() != nil {
			run.Aborted = true
			break
		}

		pos := models.Position{Current: i, Total: repeat}
		run.Current = i

		outcome := l.attempt(ctx, req, pos, latest)
		run.Attempts = append(run.Attempts, outcome)

		if outcome.Status == models.OutcomeConfirmed {
			run.SuccessCount++
			latest = outcome.Balances
			l.reporter.Succeeded(pos, outcome)
			if outcome.RefreshErr == nil {
				continue
			}
			logger.Warn("Run %s [%s] balance refresh: %v", run.ID, pos, outcome.RefreshErr)
			if ctx.Err() != nil || !l.proceed(ctx, pos, outcome.RefreshErr) {
				run.Aborted = true
				break
			}
			continue
		}

		latest = nil
		logger.Warn("Run %s [%s] %s: %v", run.ID, pos, outcome.Status, outcome.Err)
		l.reporter.Failed(pos, outcome.Err)

		if ctx.Err() != nil || !l.proceed(ctx, pos, outcome.Err) {
			run.Aborted = true
			break
		}
	}

	logger.Info("Run %s finished: %s succeeded (aborted: %t)", run.ID, run.Summary(), run.Aborted)
	return run
}

func (l *Loop) attempt(ctx context.Context, req models.TransactionRequest, pos models.Position, latest *models.Balances) models.Outcome {
	outcome := models.Outcome{Index: pos.Current, Status: models.OutcomePending}
	fail := func(err error) models.Outcome {
		outcome.Status = statusFor(err)
		outcome.Err = err
		outcome.At = l.now()
		return outcome
	}

	l.reporter.Stage(pos, StageValidating)
	if _, err := ValidateAmount(req.Amount, nil); err != nil {
		return fail(err)
	}
	if latest == nil {
		balances, err := l.reader.ReadBalances(ctx, l.executor.Address())
		if err != nil {
			return fail(err)
		}
		latest = &balances
	}
	if _, err := ValidateAmount(req.Amount, latest.Bound(req.Kind)); err != nil {
		return fail(err)
	}

	pending, err := l.executor.Execute(ctx, req, pos, func(s Stage) { l.reporter.Stage(pos, s) })
	if err != nil {
		return fail(err)
	}
	outcome.Handle = &pending.Handle

	l.reporter.Stage(pos, StageConfirming)
	receipt, err := l.executor.AwaitConfirmation(ctx, pending.Handle, l.executor.Confirmations())
	if err != nil {
		return fail(err)
	}
	outcome.Receipt = receipt
	outcome.Status = models.OutcomeConfirmed
	outcome.At = l.now()

	// A failed refresh does not undo the confirmed transaction.
	balances, err := l.reader.ReadBalances(ctx, l.executor.Address())
	if err != nil {
		outcome.RefreshErr = err
		return outcome
	}
	outcome.Balances = &balances
	return outcome
}

func statusFor(err error) models.OutcomeStatus {
	var submission *SubmissionError
	if errors.As(err, &submission) && submission.Ambiguous {
		return models.OutcomeUnknown
	}
	var timeout *ConfirmationTimeoutError
	if errors.As(err, &timeout) {
		return models.OutcomeUnknown
	}
	return models.OutcomeFailed
}

type nopReporter struct{}

func (nopReporter) Stage(models.Position, Stage)             {}
func (nopReporter) Succeeded(models.Position, models.Outcome) {}
func (nopReporter) Failed(models.Position, error)             {}
