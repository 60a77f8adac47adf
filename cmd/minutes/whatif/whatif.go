// Package whatifcmder provides the whatif command for analyzing
// hypothetical decision changes.
package whatifcmder

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/minutes/cmd/minutes/runtime"
	ripplecmder "github.com/papercomputeco/minutes/cmd/minutes/ripple"
	"github.com/papercomputeco/minutes/pkg/cliui"
	"github.com/papercomputeco/minutes/pkg/logger"
	"github.com/papercomputeco/minutes/pkg/ripple"
)

type whatIfCommander struct {
	configDir string
	debug     bool
	logger    *zap.Logger
}

const whatIfLongDesc string = `Analyze a hypothetical change without committing it.

Finds the latest decision on the given topic and reports what would be
affected if it changed as described. Nothing in the graph is modified.

Examples:
  minutes whatif payments "switch from Stripe to PayPal"
  minutes whatif "api design" "use GraphQL instead of REST"`

const whatIfShortDesc string = "Analyze a hypothetical decision change"

func NewWhatIfCmd() *cobra.Command {
	cmder := &whatIfCommander{}

	cmd := &cobra.Command{
		Use:   "whatif <topic> <change>",
		Short: whatIfShortDesc,
		Long:  whatIfLongDesc,
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

	return cmd
}

func (c *whatIfCommander) run(topic, change string) error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	ctx := context.Background()

	components, err := runtime.Build(ctx, c.configDir, c.logger)
	if err != nil {
		return err
	}
	defer components.Close()

	var report ripple.Report
	err = cliui.Step(os.Stdout, "analyzing hypothetical change", func() error {
		report = components.Detector.WhatIf(ctx, topic, change)
		return nil
	})
	if err != nil {
		return err
	}

	ripplecmder.PrintReport(report)
	return nil
}
