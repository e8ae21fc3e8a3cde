package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/wricardo/mcp-training/tilegame/game/config"
	"github.com/wricardo/mcp-training/tilegame/game/service"
	"github.com/wricardo/mcp-training/tilegame/game/session"
	"golang.org/x/sync/errgroup"
)

const (
	cleanupInterval   = time.Hour
	sessionMaxAge     = 24 * time.Hour
	fsSyncInterval    = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
	maintenanceTagCln = "cleanup"
	maintenanceTagFS  = "fs-sync"
)

// services bundles the long-lived game components shared by both modes.
type services struct {
	game        service.GameService
	sessions    *session.Manager
	persistence session.SessionPersistence
	clock       quartz.Clock
	logger      *log.Logger
}

// initializeServices wires the config and session managers into the game
// service and reloads sessions persisted by a previous run.
func initializeServices(opts options, logger *log.Logger) (*services, error) {
	return newServices(opts, quartz.NewReal(), logger)
}

func newServices(opts options, clock quartz.Clock, logger *log.Logger) (*services, error) {
	configManager, err := config.NewManager(opts.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, err := session.NewFilePersistence(opts.sessionsDir, configManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence,
		session.WithClock(clock),
		session.WithLogger(logger.WithPrefix("sessions")),
	)
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		logger.Warn("failed to load persisted sessions", "err", err)
	}

	return &services{
		game:        service.NewGameService(sessionManager, configManager, service.WithLogger(logger.WithPrefix("game"))),
		sessions:    sessionManager,
		persistence: persistence,
		clock:       clock,
		logger:      logger,
	}, nil
}

// startMaintenance runs the session cleanup and filesystem sync loops on g
// until ctx is cancelled.
func (s *services) startMaintenance(ctx context.Context, g *errgroup.Group) {
	cleanup := s.sessionCleanup(ctx)
	fsSync := s.filesystemSync(ctx)
	g.Go(func() error { return ignoreCanceled(cleanup.Wait()) })
	g.Go(func() error { return ignoreCanceled(fsSync.Wait()) })
}

// sessionCleanup drops sessions from memory once they have been idle for
// sessionMaxAge. Their files stay on disk.
func (s *services) sessionCleanup(ctx context.Context) quartz.Waiter {
	return s.clock.TickerFunc(ctx, cleanupInterval, func() error {
		if removed := s.sessions.CleanupExpiredSessions(sessionMaxAge); removed > 0 {
			s.logger.Info("cleaned up expired sessions", "count", removed)
		}
		return nil
	}, maintenanceTagCln)
}

// filesystemSync removes sessions from memory whose file was deleted by hand.
func (s *services) filesystemSync(ctx context.Context) quartz.Waiter {
	return s.clock.TickerFunc(ctx, fsSyncInterval, func() error {
		s.pruneOrphans()
		return nil
	}, maintenanceTagFS)
}

func (s *services) pruneOrphans() int {
	if s.persistence == nil {
		return 0
	}

	pruned := 0
	for _, sess := range s.sessions.List() {
		if s.persistence.Exists(sess.ID) {
			continue
		}
		if err := s.sessions.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			s.logger.Debug("pruned session from memory, file deleted", "session", sess.ID)
		}
	}
	if pruned > 0 {
		s.logger.Info("filesystem sync pruned orphaned sessions", "count", pruned)
	}
	return pruned
}

// flush writes every in-memory session to disk before exit.
func (s *services) flush() {
	if err := s.sessions.SaveAllSessions(); err != nil {
		s.logger.Warn("failed to save sessions on shutdown", "err", err)
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
