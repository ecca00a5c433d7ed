// Package configcmder provides the config command for managing persistent
// willaiam configuration stored in the .willaiam/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent willaiam configuration.

Configuration is stored as config.toml in the .willaiam/ directory and
provides default values for command flags. CLI flags always take precedence
over config file values.

Keys use dotted notation matching the TOML section structure:
  backend.target, backend.enable_web_search,
  feedback.target,
  storage.driver, storage.sqlite_path, storage.dsn,
  chat.failure_notice, chat.render_markdown,
  eventstream.provider, eventstream.brokers, eventstream.topic,
  serve.listen, serve.corpus_path

Use subcommands to get, set, or list configuration values:
  willaiam config set <key> <value>    Set a configuration value
  willaiam config get <key>            Get a configuration value
  willaiam config list                 List all configuration values

Examples:
  willaiam config set backend.target http://localhost:8000
  willaiam config set storage.driver sqlite
  willaiam config get backend.target
  willaiam config list`

const configShortDesc string = "Manage persistent willaiam configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
