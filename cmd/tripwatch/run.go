package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nixlim/tripwatch/internal/alerts"
	"github.com/nixlim/tripwatch/internal/config"
	"github.com/nixlim/tripwatch/internal/events"
	"github.com/nixlim/tripwatch/internal/receiver"
	"github.com/nixlim/tripwatch/internal/storage"
	"github.com/nixlim/tripwatch/internal/trip"
	"github.com/nixlim/tripwatch/internal/tui"
)

func runDashboard(ctx context.Context, opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	// The dashboard owns the terminal, so logs go to the configured file or
	// nowhere.
	logger, closeLog, err := newLogger(cfg.Logging, io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	store, isPersistent, err := storage.NewStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("storage error: %w", err)
	}

	eventBuf := events.NewRingBuffer(cfg.Display.EventBufferSize)

	notifier, closeNotifier := buildNotifier(cfg.Notifications)
	wireStatusWatcher(store, alerts.NewStatusWatcher(), notifier, eventBuf)

	var recvLogger receiver.Logger
	if opts.debugPath != "" {
		debugFile, err := os.OpenFile(opts.debugPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			closeNotifier()
			_ = store.Close()
			return fmt.Errorf("failed to open debug log %q: %w", opts.debugPath, err)
		}
		defer debugFile.Close()
		recvLogger = receiver.NewFileLogger(debugFile)
	}

	ing := receiver.NewIngester(store, eventBuf, recvLogger)
	grpcRecv := receiver.NewGRPCReceiver(cfg.Receiver, ing)
	httpRecv := receiver.NewHTTPReceiver(cfg.Receiver, ing)

	recvCtx, cancelRecv := context.WithCancel(ctx)
	defer cancelRecv()

	if err := grpcRecv.Start(recvCtx); err != nil {
		closeNotifier()
		_ = store.Close()
		return fmt.Errorf("failed to start gRPC receiver: %w", err)
	}
	if err := httpRecv.Start(recvCtx); err != nil {
		grpcRecv.Stop()
		closeNotifier()
		_ = store.Close()
		return fmt.Errorf("failed to start HTTP receiver: %w", err)
	}

	shutdownMgr := tui.NewShutdownManager()
	shutdownMgr.StopReceivers = func(context.Context) error {
		grpcRecv.Stop()
		httpRecv.Stop()
		return nil
	}
	shutdownMgr.Cleanup = func() {
		if err := store.Close(); err != nil {
			slog.Error("closing store", "error", err)
		}
		closeNotifier()
	}

	var shutdownOnce sync.Once
	shutdown := func() {
		shutdownOnce.Do(func() {
			if err := shutdownMgr.Shutdown(); err != nil {
				slog.Warn("shutdown", "error", err)
			}
		})
	}

	model := tui.NewModel(cfg,
		tui.WithTripProvider(store),
		tui.WithEventProvider(eventBuf),
		tui.WithPersistenceFlag(isPersistent),
		tui.WithOnShutdown(shutdown),
	)

	p := tea.NewProgram(model, tea.WithAltScreen())

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			shutdown()
			p.Quit()
		case <-done:
		}
	}()

	_, err = p.Run()
	shutdown()
	return err
}

// buildNotifier assembles the configured notifiers. An unreachable broker
// disables AMQP publishing with a warning instead of failing startup.
func buildNotifier(cfg config.NotificationsConfig) (alerts.Notifier, func()) {
	notifiers := alerts.MultiNotifier{alerts.NewPlatformNotifier(cfg.SystemNotify)}
	closeFn := func() {}

	if cfg.AMQPEnabled {
		pub, err := alerts.DialAMQP(alerts.AMQPConfig{URL: cfg.AMQPURL, Exchange: cfg.AMQPExchange})
		if err != nil {
			slog.Warn("AMQP publishing disabled", "error", err)
		} else {
			notifiers = append(notifiers, pub)
			closeFn = func() {
				if err := pub.Close(); err != nil {
					slog.Warn("closing AMQP publisher", "error", err)
				}
			}
		}
	}
	return notifiers, closeFn
}

// wireStatusWatcher notifies n and records a feed entry whenever a trip's
// derived status changes. Trips already in the store seed the watcher so
// recovered state does not re-notify, and trips the store drops are
// forgotten so a reused ID starts again from safe.
func wireStatusWatcher(store trip.Store, w *alerts.StatusWatcher, n alerts.Notifier, sink events.Sink) {
	for _, t := range store.ListTrips() {
		w.Observe(t.ID, t.Status())
	}
	store.OnChange(func(t trip.Trip) {
		change, ok := w.Observe(t.ID, t.Status())
		if !ok {
			return
		}
		n.Notify(change)
		sink.Add(events.FormatChange(change))
	})
	store.OnRemove(w.Forget)
}
