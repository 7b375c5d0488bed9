package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/nevermore/internal/config"
	"github.com/jwebster45206/nevermore/internal/logger"
	"github.com/jwebster45206/nevermore/internal/metrics"
	"github.com/jwebster45206/nevermore/internal/services/events"
	"github.com/jwebster45206/nevermore/internal/session"
	"github.com/jwebster45206/nevermore/pkg/dialogue"
	"github.com/jwebster45206/nevermore/pkg/story"
)

// The terminal belongs to the UI, so the console logs to a file unless
// LOG_FILE says otherwise.
const defaultLogFile = "nevermore.log"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.LogFile == "" {
		cfg.LogFile = defaultLogFile
	}

	w, closeLog, err := logger.OpenFile(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	log := logger.Setup(cfg, w)

	err = run(cfg, log)
	_ = closeLog() // Nothing useful to do with a close error on exit
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	log.Info("Starting Nevermore console",
		"environment", cfg.Environment,
		"opening", cfg.Opening,
		"story_file", cfg.StoryFile,
		"orientation_file", cfg.OrientationFile)

	content, err := session.LoadContent(cfg)
	if err != nil {
		log.Error("Failed to load story content", "error", err)
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()

	m := metrics.New()
	if cfg.MetricsAddr != "" {
		server := serveMetrics(cfg.MetricsAddr, m, log)
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Error("Metrics server forced to shutdown", "error", err)
			}
		}()
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = events.NewClient(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Warn("Story events disabled", "error", err)
			rdb = nil
		} else {
			defer func() {
				_ = rdb.Close() // Ignore error in defer
			}()
		}
	}

	var wg sync.WaitGroup
	newSession := func(player story.Player, presenter dialogue.Presenter) (*session.Session, error) {
		s, err := session.New(player, content, cfg.Opening, presenter, log, m)
		if err != nil {
			return nil, err
		}
		if rdb != nil {
			b := events.NewBroadcaster(rdb, s.ID, log)
			s.WithObserver(b)
			wg.Go(func() { b.Run(ctx) })
			log.Info("Broadcasting story events", "channel", events.Channel(s.ID))
		}
		return s, nil
	}

	p := tea.NewProgram(NewConsoleUI(newSession, cfg.PlayerName, log),
		tea.WithAltScreen(),
		tea.WithContext(ctx))
	final, runErr := p.Run()

	if ui, ok := final.(ConsoleUI); ok && ui.session != nil {
		if err := ui.session.End(); err != nil {
			log.Warn("Dialogue did not close cleanly", "error", err)
		}
	}
	cancel()
	wg.Wait()

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("error running program: %w", runErr)
	}
	log.Info("Console exited")
	return nil
}

func serveMetrics(addr string, m *metrics.Metrics, log *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	server := &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Metrics server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server failed", "error", err)
		}
	}()
	return server
}
