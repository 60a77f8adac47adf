// Package minutescmder
package minutescmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/minutes/cmd/minutes/ask"
	configcmder "github.com/papercomputeco/minutes/cmd/minutes/config"
	ingestcmder "github.com/papercomputeco/minutes/cmd/minutes/ingest"
	ripplecmder "github.com/papercomputeco/minutes/cmd/minutes/ripple"
	servecmder "github.com/papercomputeco/minutes/cmd/minutes/serve"
	statuscmder "github.com/papercomputeco/minutes/cmd/minutes/status"
	whatifcmder "github.com/papercomputeco/minutes/cmd/minutes/whatif"
)

const minutesLongDesc string = `Minutes is persistent memory for your team's meetings.

Load meeting transcripts into an entity graph, then ask questions and
analyze the ripple effects of changing past decisions:
  minutes ingest <file|dir>   Load meeting records into the graph
  minutes ask <question>      Ask a question about past meetings
  minutes ripple <id> <new>   Analyze the impact of changing a decision
  minutes whatif <topic>      Analyze a hypothetical change
  minutes serve               Run the HTTP API and MCP server`

const minutesShortDesc string = "Minutes - Meeting Memory"

func NewMinutesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "minutes",
		Short: minutesShortDesc,
		Long:  minutesLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .minutes/ directory location")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(ingestcmder.NewIngestCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(ripplecmder.NewRippleCmd())
	cmd.AddCommand(whatifcmder.NewWhatIfCmd())
	cmd.AddCommand(statuscmder.NewStatusCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())

	return cmd
}
