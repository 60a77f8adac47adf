// Package ripplecmder provides the ripple command for analyzing the
// downstream impact of changing a decision.
package ripplecmder

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/minutes/cmd/minutes/runtime"
	"github.com/papercomputeco/minutes/pkg/cliui"
	"github.com/papercomputeco/minutes/pkg/eventstream"
	"github.com/papercomputeco/minutes/pkg/logger"
	"github.com/papercomputeco/minutes/pkg/ripple"
)

type rippleCommander struct {
	configDir string
	oldValue  string
	debug     bool
	logger    *zap.Logger
}

const rippleLongDesc string = `Analyze the downstream impact of changing a decision.

Finds the action items and related decisions that depend on the given
decision, judges how each is affected by the change, and reports impacts
by severity along with the people to notify.

Examples:
  minutes ripple decision_001 "Use PayPal instead of Stripe"
  minutes ripple decision_001 "Use PayPal" --old "Use Stripe"`

const rippleShortDesc string = "Analyze the impact of changing a decision"

func NewRippleCmd() *cobra.Command {
	cmder := &rippleCommander{}

	cmd := &cobra.Command{
		Use:   "ripple <decision-id> <new value>",
		Short: rippleShortDesc,
		Long:  rippleLongDesc,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			return cmder.run(args[0], strings.Join(args[1:], " "))
		},
	}

	cmd.Flags().StringVar(&cmder.oldValue, "old", "", "Prior decision content (default: the stored decision)")

	return cmd
}

func (c *rippleCommander) run(decisionID, newValue string) error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	ctx := context.Background()

	components, err := runtime.Build(ctx, c.configDir, c.logger)
	if err != nil {
		return err
	}
	defer components.Close()

	var report ripple.Report
	err = cliui.Step(os.Stdout, "analyzing ripple effects", func() error {
		report = components.Detector.Detect(ctx, decisionID, newValue, c.oldValue)
		return nil
	})
	if err != nil {
		return err
	}

	if components.Publisher != nil {
		event := eventstream.NewRippleDetectedEvent(decisionID, report)
		if err := components.Publisher.PublishRipple(ctx, event); err != nil {
			c.logger.Warn("failed to publish ripple event", zap.Error(err))
		}
	}

	PrintReport(report)
	return nil
}

// PrintReport renders an impact report for the terminal. Shared with the
// whatif command.
func PrintReport(report ripple.Report) {
	fmt.Printf("\n  %s\n\n", cliui.KeyStyle.Render(report.ChangeDescription))

	if report.TotalAffected == 0 {
		fmt.Printf("  %s No downstream impacts found\n", cliui.SuccessMark)
	}

	for _, impact := range report.Impacts {
		fmt.Printf("  %s [%s] %s\n",
			cliui.SeverityBadge(impact.Severity),
			impact.Type,
			impact.Title,
		)
		fmt.Printf("      %s\n", cliui.DimStyle.Render(impact.Reason))
		fmt.Printf("      %s\n", impact.Suggestion)
	}

	if len(report.PeopleToNotify) > 0 {
		fmt.Printf("\n  %s %s\n",
			cliui.KeyStyle.Render("Notify:"),
			cliui.ValueStyle.Render(strings.Join(report.PeopleToNotify, ", ")),
		)
	}

	for _, suggestion := range report.Suggestions {
		fmt.Printf("  %s %s\n", cliui.DimStyle.Render("→"), suggestion)
	}

	fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render(cliui.FormatDuration(report.Elapsed)))
}
