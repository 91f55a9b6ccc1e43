package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/planboard/internal/mirror"
	"github.com/mmynk/planboard/internal/remote"
	"github.com/mmynk/planboard/internal/rpc"
	"github.com/mmynk/planboard/internal/state"
	"github.com/mmynk/planboard/internal/syncbridge"
)

const flushTimeout = 10 * time.Second

var (
	flagMirrorFile string
	flagDebounce   time.Duration
	flagEcho       string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Keep a local JSON file in step with the shared document",
	Long: `Mirror the shared document into a local JSON file. Edits to the file are
pushed after the debounce window; remote changes are written back into it.
Changes made while offline are not queued.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVarP(&flagMirrorFile, "file", "f", "", "Mirror file (default from config)")
	syncCmd.Flags().DurationVar(&flagDebounce, "debounce", 0, "Debounce window (default from config)")
	syncCmd.Flags().StringVar(&flagEcho, "echo", "", "Echo suppression: token or window")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	file := cfg.Client.MirrorFile
	if flagMirrorFile != "" {
		file = flagMirrorFile
	}

	bridgeCfg := syncbridge.DefaultConfig()
	bridgeCfg.Debounce = cfg.Client.Debounce
	if flagDebounce > 0 {
		bridgeCfg.Debounce = flagDebounce
	}
	echo := cfg.Client.EchoStrategy
	if flagEcho != "" {
		echo = flagEcho
	}
	strategy, err := syncbridge.ParseEchoStrategy(echo)
	if err != nil {
		return err
	}
	bridgeCfg.EchoStrategy = strategy

	// Start from the current remote document so the mirror file is not
	// written with defaults first.
	initial, err := fetchDocument(ctx)
	if err != nil {
		return err
	}

	store := state.New(initial)
	client := remote.NewClient(remote.Config{
		BaseURL: cfg.Client.ServerURL,
		Path:    cfg.Client.Path,
		Token:   cfg.Client.Token,
	})
	bridge := syncbridge.New(store, client, nil, bridgeCfg)
	m := mirror.New(store, file, 0)

	// The bridge outlives the signal context so a pending edit can still be
	// written after Ctrl-C.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return client.Run(gctx) })
	g.Go(func() error { return bridge.Run(gctx) })
	g.Go(func() error { return m.Run(gctx) })
	g.Go(func() error {
		watchEvents(gctx, bridge)
		return nil
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
			return nil
		case <-ctx.Done():
		}
		if bridge.Status().Pending {
			flushCtx, flushCancel := context.WithTimeout(gctx, flushTimeout)
			if err := bridge.Flush(flushCtx); err != nil {
				slog.Warn("Final flush failed", "error", err)
			}
			flushCancel()
		}
		cancel()
		return nil
	})

	fmt.Println(okStyle.Render(fmt.Sprintf("Syncing %s with %s (Ctrl-C to stop)", file, cfg.Client.ServerURL)))
	return g.Wait()
}

// watchEvents prints the sync indicator transitions.
func watchEvents(ctx context.Context, bridge *syncbridge.Bridge) {
	events := bridge.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-events:
			switch e.Type {
			case syncbridge.EventConnectivity:
				if e.Connected {
					fmt.Println(okStyle.Render("● Online"))
				} else {
					fmt.Println(errorStyle.Render("○ Offline, changes are not queued"))
				}
			case syncbridge.EventSynchronized:
				fmt.Println(okStyle.Render(fmt.Sprintf("✓ Synchronized (revision %d)", e.Revision)))
			case syncbridge.EventSyncFailed:
				fmt.Println(errorStyle.Render("✗ Sync failed: " + e.Err.Error()))
			case syncbridge.EventSnapshotApplied:
				fmt.Println(labelStyle.Render(fmt.Sprintf("↓ Remote revision %d applied", e.Revision)))
			}
		}
	}
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent writes to the shared document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		resp, err := documentClient().History.CallUnary(cmd.Context(), connect.NewRequest(&rpc.HistoryRequest{
			Path:  cfg.Client.Path,
			Limit: 20,
		}))
		if err != nil {
			return err
		}
		for _, r := range resp.Msg.Revisions {
			fmt.Printf("  %5d  %s  %8d bytes  %s\n",
				r.Revision,
				time.UnixMilli(r.CreatedAt).Format("Jan 2 15:04:05"),
				r.Size,
				labelStyle.Render(r.Writer))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
