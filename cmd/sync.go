package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"webresource-sync/core/config"
	"webresource-sync/core/database"
	"webresource-sync/core/dataverse"
	"webresource-sync/core/journal"
	"webresource-sync/core/logger"
	"webresource-sync/core/reconcile"
	"webresource-sync/core/storage"
	"webresource-sync/feature/webresource"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// syncRun holds everything one invocation needs once the session is open.
type syncRun struct {
	client   dataverse.Client
	fs       afero.Fs
	cfg      *config.Config
	logger   *zap.Logger
	out      io.Writer
	runID    string
	solution string
	source   string
	dryRun   bool

	openStorage  func(storage.Config) (storage.Client, error)
	openDatabase func(context.Context, database.Config) (*gorm.DB, error)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	base, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = base.Sync() }()

	runID := uuid.NewString()
	l := logger.WithRun(base, runID, args[1])

	cs, err := dataverse.ParseConnectionString(args[0])
	if err != nil {
		return err
	}

	l.Info("Connecting", zap.Stringer("connection", cs))
	client, err := dataverse.NewClient(ctx, cs, cfg.Dataverse)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	run := &syncRun{
		client:       client,
		fs:           afero.NewOsFs(),
		cfg:          cfg,
		logger:       l,
		out:          cmd.OutOrStdout(),
		runID:        runID,
		solution:     args[1],
		source:       args[2],
		dryRun:       dryRun,
		openStorage:  storage.NewClient,
		openDatabase: database.Connect,
	}
	return run.execute(ctx)
}

// execute resolves the solution, then plans, applies and publishes.
func (r *syncRun) execute(ctx context.Context) (err error) {
	solution, err := webresource.ResolveSolution(ctx, r.client, r.solution, r.logger)
	if err != nil {
		if errors.Is(err, dataverse.ErrSolutionNotFound) {
			r.logger.Error("Solution not found")
		}
		return err
	}

	recorder, err := r.journal(ctx)
	if err != nil {
		return err
	}
	if err := recorder.Begin(ctx, &journal.Run{
		ID:       r.runID,
		Solution: solution.UniqueName,
		Source:   r.source,
		DryRun:   r.dryRun,
	}); err != nil {
		return err
	}

	result := &reconcile.ApplyResult{}
	defer func() {
		finishErr := recorder.Finish(context.WithoutCancel(ctx), r.runID, journal.Outcome{
			Created:   result.Created,
			Updated:   result.Updated,
			Published: result.Published,
			Err:       err,
		})
		if finishErr != nil {
			r.logger.Warn("Failed to finish journal run", zap.Error(finishErr))
		}
	}()

	backup, err := r.backup(ctx, solution.UniqueName)
	if err != nil {
		return err
	}

	adapter, err := webresource.NewAdapter(webresource.Options{
		Client:   r.client,
		Solution: *solution,
		Fs:       r.fs,
		Root:     r.source,
		Config:   r.cfg.Sync,
		Backup:   backup,
		Recorder: recorder,
		RunID:    r.runID,
		Logger:   r.logger,
	})
	if err != nil {
		return err
	}

	opts := reconcile.ReconcileOptions{DryRun: r.dryRun}

	plan, err := reconcile.ReconcileWithPlan(ctx, adapter, opts)
	if err != nil {
		return fmt.Errorf("failed to plan sync: %w", err)
	}

	printSyncReport(r.logger, r.out, plan)

	if r.dryRun {
		r.logger.Info("Dry-run mode: No changes were made.")
		return nil
	}

	applied, err := reconcile.ApplyPlan(ctx, adapter, plan, opts)
	if applied != nil {
		result = applied
	}
	if err != nil {
		return err
	}

	published, err := reconcile.PublishChanges(ctx, adapter, result, opts)
	if err != nil {
		return err
	}
	if !published {
		r.logger.Info("Skipping publish because no resources have changed")
	}

	r.logger.Info("All done",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Bool("published", published),
	)
	return nil
}

// journal opens the run journal when the database is enabled.
func (r *syncRun) journal(ctx context.Context) (journal.Recorder, error) {
	if !r.cfg.Database.Enabled {
		return journal.Nop(), nil
	}

	db, err := r.openDatabase(ctx, r.cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := journal.Migrate(db); err != nil {
		return nil, err
	}

	r.logger.Debug("Journal enabled", zap.String("driver", r.cfg.Database.Driver))
	return journal.NewRecorder(db), nil
}

// backup prepares the backup store when storage is enabled. Dry runs never write backups.
func (r *syncRun) backup(ctx context.Context, solution string) (webresource.Backup, error) {
	if !r.cfg.Storage.Enabled || r.dryRun {
		return nil, nil
	}

	client, err := r.openStorage(r.cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to storage: %w", err)
	}

	created, err := storage.EnsureBucket(ctx, client, r.cfg.Storage)
	if err != nil {
		return nil, err
	}
	if created {
		r.logger.Info("Created backup bucket", zap.String("bucket", r.cfg.Storage.Bucket))
	}

	return webresource.NewStorageBackup(client, r.cfg.Storage, solution, r.runID), nil
}
