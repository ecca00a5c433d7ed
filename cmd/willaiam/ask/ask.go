// Package askcmder provides the ask command: a one-shot question with a
// streamed answer.
package askcmder

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Birmingham-AI/willAIam/pkg/chat"
	"github.com/Birmingham-AI/willAIam/pkg/cliui"
	"github.com/Birmingham-AI/willAIam/pkg/config"
	"github.com/Birmingham-AI/willAIam/pkg/logger"
	"github.com/Birmingham-AI/willAIam/pkg/session"
)

type askCommander struct {
	target    string
	webSearch bool
	render    bool
	debug     bool
	configDir string

	v *viper.Viper
}

var askFlags = config.FlagSet{
	config.FlagBackendTarget: {
		Name:        "target",
		Shorthand:   "t",
		ViperKey:    "backend.target",
		Description: "Answer backend URL",
	},
	config.FlagWebSearch: {
		Name:        "web-search",
		Shorthand:   "w",
		ViperKey:    "backend.enable_web_search",
		Description: "Allow the backend to search the web",
	},
	config.FlagRenderMarkdown: {
		Name:        "render",
		ViperKey:    "chat.render_markdown",
		Description: "Render the completed answer as markdown",
	},
}

const askLongDesc string = `Ask the assistant a single question and stream the answer.

The question joins the stored conversation, so follow-up questions keep
their context across invocations. Use "willaiam reset" to start over.

Examples:
  willaiam ask "what was last month's talk about?"
  willaiam ask --render=false "give me the schedule as plain text"
  willaiam ask -t http://localhost:8000 "who spoke in June?"`

const askShortDesc string = "Ask a single question"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.debug, _ = cmd.Flags().GetBool("debug")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, askFlags, []string{
				config.FlagBackendTarget,
				config.FlagWebSearch,
				config.FlagRenderMarkdown,
			})
			cmder.v = v
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), strings.Join(args, " "))
		},
	}

	config.AddStringFlag(cmd, askFlags, config.FlagBackendTarget, &cmder.target)
	config.AddBoolFlag(cmd, askFlags, config.FlagWebSearch, &cmder.webSearch)
	config.AddBoolFlag(cmd, askFlags, config.FlagRenderMarkdown, &cmder.render)

	return cmd
}

func (c *askCommander) run(ctx context.Context, question string) error {
	log := logger.NewLogger(c.debug)
	defer func() { _ = log.Sync() }()

	render := c.v.GetBool("chat.render_markdown")

	errs := make(chan error, 1)
	hooks := chat.Hooks{
		OnError: func(err error) { errs <- err },
	}
	if !render {
		hooks.OnDelta = func(delta string) { fmt.Print(delta) }
	}

	s, err := session.New(ctx, c.v, c.configDir, log, hooks)
	if err != nil {
		return err
	}
	defer s.Close()

	ask := func() error {
		turn, err := s.Assembler.Start(ctx, question)
		if err != nil {
			return err
		}
		<-s.Assembler.Done()

		if turn.Status == chat.StatusErrored {
			// OnError fires exactly once for an errored turn.
			return <-errs
		}
		return nil
	}

	if render {
		// Buffered mode: spinner while the answer streams, then the
		// rendered markdown.
		if err := cliui.Step(os.Stderr, "thinking", ask); err != nil {
			fmt.Println(cliui.Notice(lastContent(s)))
			return err
		}

		rendered, err := cliui.RenderMarkdown(lastContent(s))
		if err != nil {
			log.Debug("markdown rendering failed, printing raw")
			rendered = lastContent(s) + "\n"
		}
		fmt.Print(rendered)
		return nil
	}

	if err := ask(); err != nil {
		fmt.Println()
		fmt.Println(cliui.Notice(lastContent(s)))
		return err
	}
	fmt.Println()
	return nil
}

// lastContent returns the content of the newest assistant turn.
func lastContent(s *session.Session) string {
	turns := s.Store.All()
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == chat.RoleAssistant {
			return turns[i].Content
		}
	}
	return ""
}
