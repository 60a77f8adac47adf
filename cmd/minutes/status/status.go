// Package statuscmder provides the status command for displaying the state
// of the local .minutes directory and server.
package statuscmder

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/minutes/pkg/cliui"
	"github.com/papercomputeco/minutes/pkg/config"
	"github.com/papercomputeco/minutes/pkg/dotdir"
	"github.com/papercomputeco/minutes/pkg/graph"
)

const statusLongDesc string = `Show the state of the local minutes installation.

Reads the local .minutes/ directory (or ~/.minutes/) to display the graph
snapshot statistics, the ingest ledger, and whether a minutes server is
reachable at the configured client target.

Examples:
  minutes status`

const statusShortDesc string = "Show graph and server status"

func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runStatus(configDir)
		},
	}

	return cmd
}

func runStatus(configDir string) error {
	ddm := dotdir.NewManager()

	dir, err := ddm.Target(configDir)
	if err != nil {
		return err
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return err
	}
	cfg, err := cfger.LoadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s  %s\n", cliui.KeyStyle.Render("Data dir:  "), cliui.DimStyle.Render(dir))

	printGraph(cfg, dir)
	printLedger(ddm, configDir)
	printServer(cfg.Client.APITarget)

	fmt.Println()
	return nil
}

func printGraph(cfg *config.Config, dir string) {
	snapshotPath := cfg.Storage.SnapshotPath
	if snapshotPath == "" {
		snapshotPath = filepath.Join(dir, "graph.json")
	}

	f, err := os.Open(snapshotPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Graph:     "), cliui.DimStyle.Render("empty (nothing ingested yet)"))
			return
		}
		fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Graph:     "), cliui.DimStyle.Render("unreadable: "+err.Error()))
		return
	}
	defer f.Close()

	store := graph.NewStore()
	if err := store.Restore(f); err != nil {
		fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Graph:     "), cliui.DimStyle.Render("corrupt snapshot: "+err.Error()))
		return
	}

	stats := store.Stats()
	fmt.Printf("  %s  %s\n",
		cliui.KeyStyle.Render("Graph:     "),
		cliui.ValueStyle.Render(fmt.Sprintf("%d meetings, %d decisions, %d actions, %d people, %d edges",
			stats.Meetings, stats.Decisions, stats.ActionItems, stats.People, stats.TotalEdges)),
	)
}

func printLedger(ddm *dotdir.Manager, configDir string) {
	ledger, err := ddm.LoadLedger(configDir)
	if err != nil {
		fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Ledger:    "), cliui.DimStyle.Render("unreadable: "+err.Error()))
		return
	}

	fmt.Printf("  %s  %s file(s) ingested\n",
		cliui.KeyStyle.Render("Ledger:    "),
		cliui.ValueStyle.Render(strconv.Itoa(len(ledger.Entries))),
	)
}

func printServer(target string) {
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(target + "/ping")
	if err != nil {
		fmt.Printf("  %s  %s %s\n",
			cliui.KeyStyle.Render("Server:    "),
			cliui.DimStyle.Render("not running at"),
			cliui.DimStyle.Render(target),
		)
		return
	}
	defer resp.Body.Close()

	fmt.Printf("  %s  %s %s\n",
		cliui.KeyStyle.Render("Server:    "),
		cliui.SuccessMark,
		cliui.ValueStyle.Render(target),
	)
}
