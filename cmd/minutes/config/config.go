// Package configcmder provides the config command for managing persistent
// minutes configuration stored in the .minutes/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent minutes configuration.

Configuration is stored as config.toml in the .minutes/ directory and
provides default values for command flags. CLI flags always take precedence
over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.sqlite_path, storage.snapshot_path,
  api.listen, client.api_target,
  vector_store.provider, vector_store.target,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  llm.provider, llm.target, llm.model, llm.fallback,
  memory.provider, memory.target, memory.enabled,
  events.provider, events.brokers, events.topic

Use subcommands to get, set, or list configuration values:
  minutes config set <key> <value>    Set a configuration value
  minutes config get <key>            Get a configuration value
  minutes config list                 List all configuration values

Examples:
  minutes config set llm.provider openai
  minutes config set embedding.model nomic-embed-text
  minutes config get llm.provider
  minutes config list`

const configShortDesc string = "Manage persistent minutes configuration"

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
