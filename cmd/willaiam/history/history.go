// Package historycmder provides the history command: it prints the stored
// conversation.
package historycmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Birmingham-AI/willAIam/pkg/chat"
	"github.com/Birmingham-AI/willAIam/pkg/cliui"
	"github.com/Birmingham-AI/willAIam/pkg/config"
	"github.com/Birmingham-AI/willAIam/pkg/logger"
	"github.com/Birmingham-AI/willAIam/pkg/session"
)

type historyCommander struct {
	render    bool
	debug     bool
	configDir string

	v *viper.Viper
}

var historyFlags = config.FlagSet{
	config.FlagRenderMarkdown: {
		Name:        "render",
		ViperKey:    "chat.render_markdown",
		Description: "Render completed answers as markdown",
	},
}

const historyLongDesc string = `Show the stored conversation.

Prints every turn of the durable conversation, oldest first. Answers that
were stopped mid-stream or failed are marked. Completed answers render as
markdown unless --render=false.

Examples:
  willaiam history
  willaiam history --render=false`

const historyShortDesc string = "Show the stored conversation"

func NewHistoryCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.debug, _ = cmd.Flags().GetBool("debug")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, historyFlags, []string{
				config.FlagRenderMarkdown,
			})
			cmder.v = v
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	config.AddBoolFlag(cmd, historyFlags, config.FlagRenderMarkdown, &cmder.render)

	return cmd
}

func (c *historyCommander) run(ctx context.Context) error {
	log := logger.NewLogger(c.debug)
	defer func() { _ = log.Sync() }()

	s, err := session.New(ctx, c.v, c.configDir, log, chat.Hooks{})
	if err != nil {
		return err
	}
	defer s.Close()

	turns := s.Store.All()
	if len(turns) == 0 {
		fmt.Println("No conversation yet.")
		return nil
	}

	render := c.v.GetBool("chat.render_markdown")

	fmt.Println()
	for _, turn := range turns {
		if turn.Role == chat.RoleUser {
			fmt.Printf("%s %s\n", cliui.UserLabel("you>"), turn.Content)
			continue
		}

		fmt.Printf("%s", cliui.AssistantLabel("willaiam>"))
		switch turn.Status {
		case chat.StatusCancelled:
			fmt.Printf(" %s %s\n", turn.Content, cliui.Faint("(stopped)"))
		case chat.StatusErrored:
			fmt.Printf(" %s %s\n", cliui.Notice(turn.Content), cliui.Faint("(failed)"))
		default:
			if render {
				if rendered, err := cliui.RenderMarkdown(turn.Content); err == nil {
					fmt.Printf("\n%s", rendered)
					continue
				}
			}
			fmt.Printf(" %s\n", turn.Content)
		}
	}
	fmt.Println()

	return nil
}
