package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kruglikle/Free-room-MIET/pkg/chat"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat websocket and the JSON API",
	Long: `Start the HTTP server: /ws runs the step-by-step chat over websocket,
/api/free answers one-shot free-room queries and /healthz reports liveness.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, eng := newScheduler()
		if len(eng.Directory().Groups()) == 0 {
			fmt.Println("Warning: the group list is empty, run `free-room-miet groups` first.")
		}

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.ListenAddr
		}

		return chat.NewHandler(cfg, eng).Router().Run(addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", "", "Listen address (default from MIET_LISTEN_ADDR)")
}
