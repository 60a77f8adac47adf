// Package askcmder provides the ask command for querying meeting memory.
package askcmder

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/minutes/cmd/minutes/runtime"
	"github.com/papercomputeco/minutes/pkg/cliui"
	"github.com/papercomputeco/minutes/pkg/logger"
	"github.com/papercomputeco/minutes/pkg/query"
)

type askCommander struct {
	configDir string
	topK      int
	fast      bool
	plain     bool
	debug     bool
	logger    *zap.Logger
}

const askLongDesc string = `Ask a natural-language question about past meetings.

Retrieves the most relevant meetings and decisions, enriches them with
graph context, and synthesizes an answer. With --fast, the memory service
answers directly when configured, falling back to the full path otherwise.

Examples:
  minutes ask "Why did we choose Stripe?"
  minutes ask --fast "Who owns the payments integration?"
  minutes ask --top-k 10 "What did we decide about the API redesign?"`

const askShortDesc string = "Ask a question about past meetings"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			return cmder.run(strings.Join(args, " "))
		},
	}

	cmd.Flags().IntVarP(&cmder.topK, "top-k", "k", 0, "Number of sources to retrieve (default from engine)")
	cmd.Flags().BoolVar(&cmder.fast, "fast", false, "Use the memory service when configured")
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Print the raw answer without markdown rendering")

	return cmd
}

func (c *askCommander) run(question string) error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	ctx := context.Background()

	components, err := runtime.Build(ctx, c.configDir, c.logger)
	if err != nil {
		return err
	}
	defer components.Close()

	var result query.Result
	err = cliui.Step(os.Stdout, "thinking", func() error {
		if c.fast {
			result = components.Engine.QueryFast(ctx, question)
		} else {
			result = components.Engine.Query(ctx, question, c.topK)
		}
		return nil
	})
	if err != nil {
		return err
	}

	answer := result.Answer
	if !c.plain {
		if rendered, err := cliui.RenderMarkdown(answer); err == nil {
			answer = rendered
		}
	}

	fmt.Println(answer)
	fmt.Printf("  %s · %d source(s) · %s\n\n",
		cliui.ConfidenceBadge(result.Confidence),
		len(result.Sources),
		cliui.DimStyle.Render(cliui.FormatDuration(result.Elapsed)),
	)

	return nil
}
