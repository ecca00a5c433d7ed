// Package resetcmder provides the reset command: it clears the stored
// conversation.
package resetcmder

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

type resetCommander struct {
	debug     bool
	configDir string

	v *viper.Viper
}

const resetLongDesc string = `Clear the stored conversation.

Removes every turn from the durable conversation record so the next
question starts fresh. Configuration is untouched.

Examples:
  willaiam reset`

const resetShortDesc string = "Clear the stored conversation"

func NewResetCmd() *cobra.Command {
	cmder := &resetCommander{}

	cmd := &cobra.Command{
		Use:   "reset",
		Short: resetShortDesc,
		Long:  resetLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.debug, _ = cmd.Flags().GetBool("debug")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return err
			}
			cmder.v = v
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	return cmd
}

func (c *resetCommander) run(ctx context.Context) error {
	log := logger.NewLogger(c.debug)
	defer func() { _ = log.Sync() }()

	s, err := session.New(ctx, c.v, c.configDir, log, chat.Hooks{})
	if err != nil {
		return err
	}
	defer s.Close()

	n := s.Store.Len()
	if err := s.Assembler.Reset(ctx); err != nil {
		return fmt.Errorf("resetting conversation: %w", err)
	}

	fmt.Printf("  %s Conversation reset (%d turns cleared)\n", cliui.SuccessMark, n)
	return nil
}
