// Package ingestcmder provides the ingest command for loading meeting
// records into the graph.
package ingestcmder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/minutes/cmd/minutes/runtime"
	"github.com/papercomputeco/minutes/pkg/cliui"
	"github.com/papercomputeco/minutes/pkg/dotdir"
	"github.com/papercomputeco/minutes/pkg/ingest"
	"github.com/papercomputeco/minutes/pkg/logger"
)

type ingestCommander struct {
	configDir string
	force     bool
	debug     bool
	logger    *zap.Logger
}

const ingestLongDesc string = `Load meeting records into the graph.

Accepts a single JSON file or a directory of JSON files. Files already
ingested (tracked by content fingerprint in the .minutes/ ledger) are
skipped unless --force is given.

Examples:
  minutes ingest meetings/sprint_planning.json
  minutes ingest meetings/
  minutes ingest --force meetings/`

const ingestShortDesc string = "Load meeting records into the graph"

func NewIngestCmd() *cobra.Command {
	cmder := &ingestCommander{}

	cmd := &cobra.Command{
		Use:   "ingest <file|dir>",
		Short: ingestShortDesc,
		Long:  ingestLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			return cmder.run(args[0])
		},
	}

	cmd.Flags().BoolVarP(&cmder.force, "force", "f", false, "Re-ingest files already recorded in the ledger")

	return cmd
}

func (c *ingestCommander) run(path string) error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	ctx := context.Background()

	components, err := runtime.Build(ctx, c.configDir, c.logger)
	if err != nil {
		return err
	}
	defer components.Close()

	ddm := dotdir.NewManager()
	ledger, err := ddm.LoadLedger(c.configDir)
	if err != nil {
		return err
	}

	files, err := collectFiles(path)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .json files found at %s", path)
	}

	var total ingest.Counts
	loaded, skipped := 0, 0

	for _, file := range files {
		fingerprint, err := ingest.FingerprintFile(file)
		if err != nil {
			return fmt.Errorf("fingerprinting %s: %w", file, err)
		}

		if !c.force && ledger.Seen(fingerprint) {
			skipped++
			continue
		}

		err = cliui.Step(os.Stdout, filepath.Base(file), func() error {
			counts, err := components.Loader.LoadFile(ctx, file)
			if err != nil {
				return err
			}
			total.Add(counts)
			return nil
		})
		if err != nil {
			return err
		}

		ledger.Record(fingerprint, file)
		loaded++
	}

	if err := components.SaveSnapshot(); err != nil {
		return err
	}
	if err := ddm.SaveLedger(ledger, c.configDir); err != nil {
		return err
	}

	fmt.Printf("\n  %s Ingested %d file(s), skipped %d\n", cliui.SuccessMark, loaded, skipped)
	fmt.Printf("  %s %s\n\n",
		cliui.KeyStyle.Render("Added:"),
		cliui.ValueStyle.Render(formatCounts(total)),
	)

	return nil
}

// collectFiles returns the .json files to ingest, sorted by name.
func collectFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(path, entry.Name()))
	}
	sort.Strings(files)

	return files, nil
}

func formatCounts(c ingest.Counts) string {
	return fmt.Sprintf("%d meetings, %d decisions, %d actions, %d blockers, %d people",
		c.Meetings, c.Decisions, c.Actions, c.Blockers, c.People)
}
