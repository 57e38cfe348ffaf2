package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/kelsos/xos-wrap/internal/config"
	"github.com/kelsos/xos-wrap/internal/logger"
	"github.com/kelsos/xos-wrap/internal/models"
	"github.com/kelsos/xos-wrap/internal/services"
	"github.com/kelsos/xos-wrap/internal/shell"
	"github.com/kelsos/xos-wrap/internal/utils"
	"github.com/kelsos/xos-wrap/internal/wrap"
)

// applyEnvironment fills cfg from the environment. Flags given on the command
// line win over environment variables.
func applyEnvironment(cmd *cobra.Command, cfg *config.Config) {
	fromFlags := *cfg
	cfg.LoadFromEnvironment()

	if cmd.Flags().Changed("log-dir") {
		cfg.LogDir = fromFlags.LogDir
	}
	if cmd.Flags().Changed("confirm-timeout") {
		cfg.ConfirmTimeout = fromFlags.ConfirmTimeout
	}
}

func fail(err error) {
	if errors.Is(err, config.ErrMissingRPCURL) || errors.Is(err, config.ErrMissingPrivateKey) {
		pterm.Error.Printfln("%v. Make sure RPC_URL and PRIVATE_KEY are set in .env", err)
	} else {
		pterm.Error.Println(wrap.Describe(err))
	}
	logger.Close()
	os.Exit(1)
}

func newService(ctx context.Context, cfg *config.Config) *services.WrapService {
	svc, err := services.NewWrapService(ctx, cfg)
	if err != nil {
		fail(err)
	}
	return svc
}

func runInteractive(ctx context.Context, cfg *config.Config) {
	if err := logger.InitFileOnly(cfg.LogDir); err != nil {
		logger.Init()
		logger.Warn("Falling back to console logging: %v", err)
	}
	defer logger.Close()

	svc := newService(ctx, cfg)
	defer svc.Cleanup()

	tty := shell.IsTerminal(os.Stdin)
	prompter := shell.NewPrompter(os.Stdin, os.Stdout)

	var runner shell.Runner = shell.MonitorRunner{}
	if !tty {
		runner = shell.ConsoleRunner{Out: os.Stdout, Proceed: shell.ContinuePrompt(prompter)}
	}

	session := shell.NewSession(svc, prompter, runner, os.Stdout, tty)
	if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fail(err)
	}
}

func runBalance(ctx context.Context, cfg *config.Config) {
	logger.Init()

	svc := newService(ctx, cfg)
	defer svc.Cleanup()

	balances, err := svc.ReadBalances(ctx)
	if err != nil {
		fail(err)
	}

	if err := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Wallet", "XOS", "WXOS"},
		{svc.Address().Hex(), balances.Native, balances.Wrapped},
	}).Render(); err != nil {
		fail(err)
	}
}

// runOperation returns the process exit code: 1 when any attempt did not confirm.
func runOperation(ctx context.Context, cfg *config.Config, kind models.OperationKind, amount string, repeat int, continueOnError bool) int {
	logger.Init()

	if repeat < 1 {
		fail(&wrap.ValidationError{Field: "repeat count", Input: fmt.Sprint(repeat), Err: wrap.ErrInvalidRepeatCount})
	}

	svc := newService(ctx, cfg)
	defer svc.Cleanup()

	balances, err := svc.ReadBalances(ctx)
	if err != nil {
		fail(err)
	}
	if _, err := wrap.ValidateAmount(amount, balances.Bound(kind)); err != nil {
		fail(err)
	}

	proceed := wrap.NeverContinue
	if continueOnError {
		proceed = wrap.AlwaysContinue
	}

	req := models.TransactionRequest{Kind: kind, Amount: amount, Fees: svc.Fees()}
	run, _ := shell.ConsoleRunner{Out: os.Stdout, Proceed: proceed}.Run(ctx, svc, req, repeat)

	pterm.Info.Printfln("Total success: %s", run.Summary())
	if run.SuccessCount < run.Total {
		return 1
	}
	return 0
}

func newOperationCmd(kind models.OperationKind, cfg *config.Config, exitCode *int) *cobra.Command {
	var (
		amount          string
		repeat          int
		continueOnError bool
	)

	cmd := &cobra.Command{
		Use:   string(kind),
		Short: fmt.Sprintf("%s %s without prompts", kind.Verb(), kind.Asset()),
		Run: func(cmd *cobra.Command, args []string) {
			*exitCode = runOperation(cmd.Context(), cfg, kind, amount, repeat, continueOnError)
		},
	}

	cmd.Flags().StringVarP(&amount, "amount", "a", "", fmt.Sprintf("Amount of %s per transaction", kind.Asset()))
	cmd.Flags().IntVarP(&repeat, "repeat", "n", 1, "Number of transactions to send")
	cmd.Flags().BoolVarP(&continueOnError, "continue-on-error", "", false, "Keep going after a failed transaction")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func main() {
	cfg := config.NewConfig()
	exitCode := 0

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := &cobra.Command{
		Use:   "xos-wrap",
		Short: "Wrap XOS into WXOS and back",
		Long:  `xos-wrap converts native XOS into WXOS through the wrapper contract and back, one or many transactions at a time.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			utils.LoadEnvironment()
			applyEnvironment(cmd, cfg)
		},
		Run: func(cmd *cobra.Command, args []string) {
			runInteractive(cmd.Context(), cfg)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&cfg.Simulate, "simulate", "s", false, "Use an in-memory chain instead of RPC_URL")
	rootCmd.PersistentFlags().StringVarP(&cfg.LogDir, "log-dir", "", cfg.LogDir, "Directory for the interactive session log")
	rootCmd.PersistentFlags().DurationVarP(&cfg.ConfirmTimeout, "confirm-timeout", "", cfg.ConfirmTimeout, "How long to wait for confirmations")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "balance",
		Short: "Show XOS and WXOS balances of the configured wallet",
		Run: func(cmd *cobra.Command, args []string) {
			runBalance(cmd.Context(), cfg)
		},
	})
	rootCmd.AddCommand(newOperationCmd(models.Wrap, cfg, &exitCode))
	rootCmd.AddCommand(newOperationCmd(models.Unwrap, cfg, &exitCode))

	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		logger.Fatal("Failed to execute command: %v", err)
	}
	logger.Close()
	os.Exit(exitCode)
}
