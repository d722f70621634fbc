package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aura-survey/backend/internal/client"
	"github.com/aura-survey/backend/internal/flow"
	"github.com/aura-survey/backend/internal/progress"
)

type options struct {
	server    string
	statePath string
	verbose   bool
}

func newRootCmd() *cobra.Command {
	_ = godotenv.Load()
	opts := &options{}

	root := &cobra.Command{
		Use:           "surveycli",
		Short:         "Answer the prediction survey from the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.server, "server", envOr("SURVEY_API_URL", "http://localhost:4000"), "survey API base URL")
	root.PersistentFlags().StringVar(&opts.statePath, "state", os.Getenv("SURVEY_STATE_FILE"), "progress file (default: user config dir)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log client activity to stderr")

	root.AddCommand(
		newRegisterCmd(opts),
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newTakeCmd(opts),
		newSummaryCmd(opts),
		newResetCmd(opts),
	)
	return root
}

// controller builds a flow controller from the global flags.
func (o *options) controller() (*flow.Controller, error) {
	path := o.statePath
	if path == "" {
		var err error
		if path, err = progress.DefaultPath(); err != nil {
			return nil, err
		}
	}
	logger := zap.NewNop()
	if o.verbose {
		cfg := zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stderr"}
		l, err := cfg.Build()
		if err != nil {
			return nil, err
		}
		logger = l
	}
	return flow.New(client.New(o.server), progress.NewStore(path), logger), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
