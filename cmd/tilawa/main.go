package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sonroyaalmerol/tilawa/internal/cache"
	"github.com/sonroyaalmerol/tilawa/internal/config"
	"github.com/sonroyaalmerol/tilawa/internal/handlers"
	"github.com/sonroyaalmerol/tilawa/internal/media"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var addr, level string

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the recitation player to hosts over WebSocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, addr, level)
		},
	}

	root := &cobra.Command{
		Use:          "tilawa",
		Short:        "Gapless sequential recitation player",
		Version:      appVersion(),
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.PersistentFlags().StringVar(&addr, "addr", "", "listen address (overrides LISTEN_ADDR)")
	root.PersistentFlags().StringVar(&level, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")

	root.AddCommand(serve, &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), appVersion())
		},
	})
	return root
}

func runServe(cmd *cobra.Command, addr, level string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.ListenAddr = addr
	}
	if level != "" {
		cfg.LogLevel = level
	}
	lvl, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	clips, err := cache.NewClipCache(cfg.CacheLimitBytes)
	if err != nil {
		return err
	}
	loader := media.NewLoader(cfg, clips)

	var out media.Output
	if spk, err := media.NewSpeaker(cfg.SampleRate); err != nil {
		slog.Warn("audio device unavailable, playing silently", "err", err)
		silent := media.NewSilent(cfg.SampleRate)
		go silent.Run(ctx)
		out = silent
	} else {
		defer spk.Close()
		out = spk
	}

	slog.Info("starting", "version", appVersion(), "addr", cfg.ListenAddr, "sampleRate", cfg.SampleRate)
	return handlers.NewServer(cfg, out, loader).Run(ctx)
}

func appVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi.Main.Version == "" {
		return "unknown"
	}
	return bi.Main.Version
}
