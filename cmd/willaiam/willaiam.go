// Package willaiamcmder
package willaiamcmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/Birmingham-AI/willAIam/cmd/willaiam/ask"
	chatcmder "github.com/Birmingham-AI/willAIam/cmd/willaiam/chat"
	configcmder "github.com/Birmingham-AI/willAIam/cmd/willaiam/config"
	historycmder "github.com/Birmingham-AI/willAIam/cmd/willaiam/history"
	resetcmder "github.com/Birmingham-AI/willAIam/cmd/willaiam/reset"
	servecmder "github.com/Birmingham-AI/willAIam/cmd/willaiam/serve"
	versioncmder "github.com/Birmingham-AI/willAIam/cmd/version"
)

const willaiamLongDesc string = `willAIam is the Birmingham AI meetup assistant.

Ask about past talks, meetup logistics, and the community:
  willaiam ask "what was last month's talk about?"
  willaiam chat      Interactive conversation
  willaiam history   Show the stored conversation
  willaiam reset     Start the conversation over`

const willaiamShortDesc string = "willAIam - Birmingham AI meetup assistant"

func NewWillaiamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "willaiam",
		Short: willaiamShortDesc,
		Long:  willaiamLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .willaiam/ directory location")

	// Add subcommands
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(resetcmder.NewResetCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
