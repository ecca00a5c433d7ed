// Package servecmder provides the serve command: it runs the local
// development answer backend.
package servecmder

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Birmingham-AI/willAIam/pkg/config"
	"github.com/Birmingham-AI/willAIam/pkg/devserver"
	"github.com/Birmingham-AI/willAIam/pkg/logger"
)

type serveCommander struct {
	listen     string
	corpusPath string
	debug      bool
	configDir  string

	v *viper.Viper
}

var serveFlags = config.FlagSet{
	config.FlagServeListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "serve.listen",
		Description: "Address to listen on",
	},
	config.FlagCorpus: {
		Name:        "corpus",
		ViperKey:    "serve.corpus_path",
		Description: "Path to a TOML answer corpus (hot reloaded)",
	},
}

const serveLongDesc string = `Run the local development answer backend.

Serves the streaming ask endpoint and the feedback endpoint that the chat
and ask commands talk to. Answers come from a TOML corpus file when one is
configured; the corpus is hot reloaded on change.

Endpoints:
  GET  /ping          Health check
  POST /api/ask       Streamed answer (SSE)
  POST /v1/feedback   Feedback acknowledgement

Examples:
  willaiam serve
  willaiam serve --listen :9000 --corpus ./answers.toml`

const serveShortDesc string = "Run the local development backend"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.debug, _ = cmd.Flags().GetBool("debug")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, serveFlags, []string{
				config.FlagServeListen,
				config.FlagCorpus,
			})
			cmder.v = v
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, serveFlags, config.FlagServeListen, &cmder.listen)
	config.AddStringFlag(cmd, serveFlags, config.FlagCorpus, &cmder.corpusPath)

	return cmd
}

func (c *serveCommander) run(_ context.Context) error {
	log := logger.NewLogger(c.debug)
	defer func() { _ = log.Sync() }()

	server, err := devserver.NewServer(devserver.Config{
		ListenAddr: c.v.GetString("serve.listen"),
		CorpusPath: c.v.GetString("serve.corpus_path"),
	}, log)
	if err != nil {
		return err
	}

	log.Info("starting dev backend",
		zap.String("listen", c.v.GetString("serve.listen")),
		zap.String("corpus", c.v.GetString("serve.corpus_path")),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		log.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}
