package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/jinzhu/copier"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/tendant/simple-signup/pkg/config"
	apperrors "github.com/tendant/simple-signup/pkg/errors"
	"github.com/tendant/simple-signup/pkg/signup"
	"github.com/tendant/simple-signup/pkg/signupclient"
)

type flagValues struct {
	apiURL     string
	signupPath string
	logLevel   string
	fields     map[signup.Field]*string
}

func newRootCommand() *cobra.Command {
	fv := flagValues{fields: make(map[signup.Field]*string)}

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account on a remote signup service",
		Long: `Create an account on a remote signup service.

With every field given as a flag the draft is submitted once. Otherwise the
fields are prompted for and the form is shown again until signup succeeds.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, fv)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&fv.apiURL, "api-url", "", "base URL of the signup service (env SIGNUP_API_URL)")
	flags.StringVar(&fv.signupPath, "signup-path", "", "path of the signup endpoint (env SIGNUP_PATH)")
	flags.StringVar(&fv.logLevel, "log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
	for _, f := range signup.Fields() {
		fv.fields[f] = flags.String(flagName(f), "", fmt.Sprintf("value for %s", labels[f]))
	}

	return cmd
}

func run(cmd *cobra.Command, fv flagValues) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if fv.apiURL != "" {
		cfg.ClientConfig.BaseURL = fv.apiURL
	}
	if fv.signupPath != "" {
		cfg.ClientConfig.SignupPath = fv.signupPath
	}
	if fv.logLevel != "" {
		cfg.LogConfig.Level = fv.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := config.ParseLevel(cfg.LogConfig.Level)
	if err != nil {
		return err
	}
	logger := slog.New(tint.NewHandler(cmd.ErrOrStderr(), &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	var opts signupclient.Options
	if err := copier.Copy(&opts, &cfg.ClientConfig); err != nil {
		return fmt.Errorf("failed to build client options: %w", err)
	}
	client := signupclient.NewWithOptions(opts, signupclient.WithLogger(logger))
	slog.Debug("Signup client configured", "url", client.URL())

	preset := make(map[signup.Field]string)
	for f, v := range fv.fields {
		if cmd.Flags().Changed(flagName(f)) {
			preset[f] = *v
		}
	}

	s := newSession(cmd.InOrStdin(), cmd.OutOrStdout())
	machine := signup.NewMachine(client,
		signup.WithMachineLogger(logger),
		signup.WithObserver(signup.LogObserver(logger)),
		signup.WithObserver(s.busyIndicator()),
	)
	s.form = signup.NewForm(cmd.Context(), machine, signup.WithFormLogger(logger))

	if len(preset) == len(signup.Fields()) {
		return s.submitOnce(cmd.Context(), preset)
	}
	return s.interactive(cmd.Context(), preset)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 when the user can fix the input, 3 when the service or
// network failed and 1 for anything else.
func exitCode(err error) int {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeClientValidation, apperrors.ErrCodeFieldSubmission:
		return 2
	case apperrors.ErrCodeGenericSubmission:
		return 3
	}
	return 1
}
