package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/carecam/internal/ai"
	"github.com/kozaktomas/carecam/internal/camera"
	"github.com/kozaktomas/carecam/internal/config"
	"github.com/kozaktomas/carecam/internal/database"
	"github.com/kozaktomas/carecam/internal/database/mariadb"
	"github.com/kozaktomas/carecam/internal/database/postgres"
	"github.com/kozaktomas/carecam/internal/database/sqlite"
	"github.com/kozaktomas/carecam/internal/emotion"
	"github.com/kozaktomas/carecam/internal/logging"
	"github.com/kozaktomas/carecam/internal/monitor"
)

// loadRuntime reads configuration and builds the logger every command shares.
func loadRuntime() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// initSnapshotStore opens the configured snapshot backend and registers it globally.
// Callers close it with database.Close.
func initSnapshotStore(cfg *config.Config, log logrus.FieldLogger) error {
	log = log.WithField("driver", cfg.Database.Driver)
	log.Info("connecting to snapshot store")

	var err error
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		err = postgres.Initialize(&cfg.Database, log)
	case config.DriverMariaDB:
		err = mariadb.Initialize(&cfg.Database, log)
	default:
		err = sqlite.Initialize(&cfg.Database, log)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize %s snapshot store: %w", cfg.Database.Driver, err)
	}
	return nil
}

// newClassifier builds a classifier whose model is only constructed on first use.
func newClassifier(cfg *config.Config, log logrus.FieldLogger) *emotion.Classifier {
	aiCfg := cfg.AI
	loader := func(ctx context.Context) (ai.Model, error) {
		return ai.New(ctx, aiCfg)
	}
	return emotion.NewClassifier(cfg.AI.Enabled, loader, emotion.NewCatalog(cfg.Emotions),
		emotion.WithTimeout(cfg.AI.Timeout),
		emotion.WithLogger(log.WithField("component", "classifier")),
	)
}

// newSession wires camera, classifier, detector and recorder into one session.
// The snapshot store must be initialized first.
func newSession(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*monitor.Session, error) {
	source := camera.NewSource(cfg.Camera.Enabled, camera.NewDevice(cfg.Camera),
		camera.WithReadTimeout(cfg.Camera.ReadTimeout),
		camera.WithLogger(log.WithField("component", "camera")),
	)

	writer, err := database.GetSnapshotWriter(ctx)
	if err != nil {
		return nil, err
	}
	recorder, err := monitor.NewRecorder(cfg.Snapshot.Dir, writer,
		monitor.WithJPEGQuality(cfg.Snapshot.JPEGQuality),
		monitor.WithWriteTimeout(cfg.Snapshot.WriteTimeout),
		monitor.WithRecorderLogger(log.WithField("component", "recorder")),
	)
	if err != nil {
		return nil, err
	}

	return monitor.NewSession(source, newClassifier(cfg, log), monitor.NewSwitchDetector(cfg.Detector.SwitchThreshold), recorder,
		monitor.WithSessionLogger(log.WithField("component", "session")),
	), nil
}
