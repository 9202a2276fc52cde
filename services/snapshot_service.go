package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/nkhatu/SwissRoundRobinApp-sub000/live"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/models"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/repositories"
	"github.com/nkhatu/SwissRoundRobinApp-sub000/storage"
)

type SnapshotService interface {
	// Export writes the tournament's live snapshot to object storage under a
	// fresh key and refreshes the tournament's latest.json.
	Export(ctx context.Context, tournamentID int) (*SnapshotInfo, error)
	Latest(ctx context.Context, tournamentID int) (*models.LiveSnapshot, error)
	// ExportActive exports every active tournament and returns how many succeeded.
	ExportActive(ctx context.Context) (int, error)
}

type SnapshotInfo struct {
	TournamentID int       `json:"tournament_id"`
	Key          string    `json:"key"`
	URL          string    `json:"url"`
	ExportedAt   time.Time `json:"exported_at"`
}

type snapshotService struct {
	tournamentRepo repositories.TournamentRepository
	standings      StandingsService
	store          storage.ObjectStore
	publisher      live.Publisher
	logger         *slog.Logger
}

func NewSnapshotService(
	tournamentRepo repositories.TournamentRepository,
	standings StandingsService,
	store storage.ObjectStore,
	publisher live.Publisher,
	logger *slog.Logger,
) SnapshotService {
	return &snapshotService{
		tournamentRepo: tournamentRepo,
		standings:      standings,
		store:          store,
		publisher:      publisher,
		logger:         logger,
	}
}

func snapshotKey(tournamentID int, name string) string {
	return fmt.Sprintf("tournaments/%d/snapshots/%s.json", tournamentID, name)
}

func (s *snapshotService) Export(ctx context.Context, tournamentID int) (*SnapshotInfo, error) {
	snap, err := s.standings.LiveSnapshot(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := snapshotKey(tournamentID, uuid.NewString())
	res, err := s.store.Upload(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to upload snapshot %s: %w", key, err)
	}
	if _, err := s.store.Upload(ctx, snapshotKey(tournamentID, "latest"), "application/json", bytes.NewReader(body)); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.WarnContext(ctx, "failed to remove orphaned snapshot", slog.String("key", key), slog.Any("error", delErr))
		}
		return nil, fmt.Errorf("failed to upload latest snapshot: %w", err)
	}

	info := &SnapshotInfo{
		TournamentID: tournamentID,
		Key:          res.Key,
		URL:          s.store.GetPublicURL(res.Key),
		ExportedAt:   snap.GeneratedAt,
	}
	s.logger.InfoContext(ctx, "snapshot exported", slog.Int("tournament_id", tournamentID), slog.String("key", info.Key))
	if s.publisher != nil {
		s.publisher.Publish(tournamentID, live.EventSnapshotExported, info)
	}
	return info, nil
}

func (s *snapshotService) Latest(ctx context.Context, tournamentID int) (*models.LiveSnapshot, error) {
	raw, err := s.store.Download(ctx, snapshotKey(tournamentID, "latest"))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: tournament %d", ErrSnapshotNotFound, tournamentID)
		}
		return nil, fmt.Errorf("failed to download snapshot: %w", err)
	}
	var snap models.LiveSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

func (s *snapshotService) ExportActive(ctx context.Context) (int, error) {
	active := models.StatusActive
	list, err := s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{Status: &active})
	if err != nil {
		return 0, classify(err)
	}
	exported := 0
	var errs []error
	for _, t := range list {
		if _, err := s.Export(ctx, t.ID); err != nil {
			s.logger.ErrorContext(ctx, "scheduled snapshot export failed", slog.Int("tournament_id", t.ID), slog.Any("error", err))
			errs = append(errs, err)
			continue
		}
		exported++
	}
	return exported, errors.Join(errs...)
}

// NewSnapshotScheduler runs ExportActive on the given cron spec. The caller
// starts and stops the returned scheduler.
func NewSnapshotScheduler(spec string, svc SnapshotService, timeout time.Duration, logger *slog.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		n, err := svc.ExportActive(ctx)
		if err != nil {
			logger.Warn("snapshot run finished with errors", slog.Int("exported", n), slog.Any("error", err))
			return
		}
		logger.Debug("snapshot run finished", slog.Int("exported", n))
	})
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot schedule %q: %w", spec, err)
	}
	return c, nil
}
