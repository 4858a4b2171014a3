package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Kruglikle/Free-room-MIET/pkg/cache"
	"github.com/Kruglikle/Free-room-MIET/pkg/config"
	"github.com/Kruglikle/Free-room-MIET/pkg/directory"
	"github.com/Kruglikle/Free-room-MIET/pkg/schedule"
	"github.com/Kruglikle/Free-room-MIET/pkg/upstream"
)

var rootCmd = &cobra.Command{
	Use:   "free-room-miet",
	Short: "Find free classrooms at MIET",
	Long: `free-room-miet aggregates the schedules of every student group at MIET
to work out which classrooms are free at a given day and pair. It serves a
chat over websocket, a JSON API, an interactive TUI and one-shot queries.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// newScheduler wires the full stack: config, schedule cache, upstream
// client, persisted directory and the aggregation engine.
func newScheduler() (*config.Config, *schedule.Scheduler) {
	cfg := config.Load()
	client := upstream.NewClient(cfg, cache.New[*upstream.Schedule](cfg.CacheTTL))
	dir := directory.New(cfg, client)
	dir.LoadFromDisk()
	return cfg, schedule.NewScheduler(client, dir)
}
