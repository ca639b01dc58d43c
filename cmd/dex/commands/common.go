package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teranos/dex/am"
	"github.com/teranos/dex/display"
	"github.com/teranos/dex/engine"
	"github.com/teranos/dex/errors"
)

// reported marks an error whose failure was already written to the user
var reported = errors.New("reported")

// IsReported reports whether err was already shown, so main only sets the exit code
func IsReported(err error) bool {
	return errors.Is(err, reported)
}

// loadConfig loads am.toml / DEX_* configuration and applies --vault and --demo
func loadConfig(cmd *cobra.Command) (*am.Config, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}

	out := *cfg
	flags := cmd.Root().PersistentFlags()
	if flags.Changed("vault") {
		out.Vault.Path, _ = flags.GetString("vault")
	}
	if flags.Changed("demo") {
		demo, _ := flags.GetBool("demo")
		out.Vault.DemoMode = &demo
	}
	return &out, nil
}

// newEngine builds the engine for the configured vault
func newEngine(cmd *cobra.Command) (*engine.Engine, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(cfg.Vault.Path); err != nil {
		return nil, errors.WithHint(
			errors.Newf("vault not found: %s", cfg.Vault.Path),
			"set vault.path in am.toml, export VAULT_PATH, or pass --vault",
		)
	}
	return engine.New(engine.Options{Config: cfg})
}

// emit prints v as JSON, or as the text human renders
func emit(cmd *cobra.Command, v interface{}, human func() (string, error)) error {
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), v)
	}
	text, err := human()
	if err != nil {
		return err
	}
	if text != "" {
		fmt.Fprintln(cmd.OutOrStdout(), text)
	}
	return nil
}

// fail reports an operation error: a JSON failure object on stdout in JSON
// mode, a rendered message on stderr otherwise.
func fail(cmd *cobra.Command, err error) error {
	r := engine.AsRejection(err)
	if display.ShouldOutputJSON(cmd) {
		body := struct {
			Success bool `json:"success"`
			*engine.Rejection
		}{Rejection: r}
		if jerr := display.OutputJSON(cmd.OutOrStdout(), body); jerr != nil {
			return err
		}
	} else {
		fmt.Fprintln(cmd.ErrOrStderr(), display.Rejection(r))
	}
	return errors.Mark(err, reported)
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
