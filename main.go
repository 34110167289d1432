package main

import (
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.design/x/clipboard"

	"github.com/milk9111/parkkeeper/config"
	"github.com/milk9111/parkkeeper/fsm"
	"github.com/milk9111/parkkeeper/prefabs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	cfg.BindFlags(flag.CommandLine)
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	prefabs.SetDiskDir(cfg.PrefabDir)

	hasClipboard := true
	if err := clipboard.Init(); err != nil {
		logger.Warn("clipboard unavailable, diagrams go to the log", "err", err)
		hasClipboard = false
	}

	reg := prometheus.NewRegistry()
	metrics := fsm.NewMetrics(reg)
	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			logger.Info("serving metrics", "addr", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Error("metrics server", "err", err)
			}
		}()
	}

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("park keeper")

	game, err := NewGame(cfg, logger, metrics, hasClipboard)
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
