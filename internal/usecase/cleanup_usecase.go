package usecase

import (
	"context"
	stderrors "errors"
	"time"

	"medialib/internal/domain/entity"
	"medialib/internal/domain/repository"
	"medialib/internal/domain/service"
	"medialib/pkg/logger"
)

const (
	ReasonSuperseded         = "superseded"
	ReasonMediaDeleted       = "media_deleted"
	ReasonOrphanedUpload     = "orphaned_upload"
	ReasonOrphanedRelocation = "orphaned_relocation"

	defaultSweepBatch = 100
)

// CleanupUseCase removes storage objects nothing points at any more.
// Removal never fails the caller: objects that cannot be deleted right away
// are queued and retried by Sweep.
type CleanupUseCase struct {
	store       service.ObjectStore
	pendingRepo repository.PendingDeletionRepository
	maxAttempts int
	now         func() time.Time
}

func NewCleanupUseCase(store service.ObjectStore, pendingRepo repository.PendingDeletionRepository, maxAttempts int) *CleanupUseCase {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &CleanupUseCase{
		store:       store,
		pendingRepo: pendingRepo,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// Discard deletes the object at storagePath, queueing it on failure.
func (uc *CleanupUseCase) Discard(ctx context.Context, storagePath, reason string) {
	if storagePath == "" {
		return
	}

	// the request may be gone by the time cleanup runs
	ctx = context.WithoutCancel(ctx)

	err := uc.store.Delete(ctx, storagePath)
	if err == nil || stderrors.Is(err, service.ErrObjectNotFound) {
		logger.Debug("Removed storage object %s (%s)", storagePath, reason)
		return
	}

	logger.LogCleanupFailure(storagePath, reason, err)

	now := uc.now()
	pending := &entity.PendingDeletion{
		StoragePath: storagePath,
		Reason:      reason,
		Attempts:    1,
		LastError:   err.Error(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.pendingRepo.Create(ctx, pending); err != nil {
		logger.Error("Failed to queue storage object %s for cleanup: %v", storagePath, err)
	}
}

// Sweep retries queued deletions once and returns how many were resolved.
func (uc *CleanupUseCase) Sweep(ctx context.Context) (int, error) {
	pending, err := uc.pendingRepo.ListDue(ctx, defaultSweepBatch)
	if err != nil {
		return 0, err
	}

	resolved := 0
	for _, p := range pending {
		err := uc.store.Delete(ctx, p.StoragePath)
		if err == nil || stderrors.Is(err, service.ErrObjectNotFound) {
			if err := uc.pendingRepo.Delete(ctx, p.ID); err != nil {
				logger.Error("Failed to remove cleanup entry %s: %v", p.ID, err)
				continue
			}
			resolved++
			continue
		}

		p.Attempts++
		p.LastError = err.Error()
		p.UpdatedAt = uc.now()

		if p.Attempts >= uc.maxAttempts {
			logger.Error("Giving up on storage object %s after %d attempts: %v", p.StoragePath, p.Attempts, err)
			if err := uc.pendingRepo.Delete(ctx, p.ID); err != nil {
				logger.Error("Failed to remove cleanup entry %s: %v", p.ID, err)
			}
			continue
		}

		if err := uc.pendingRepo.Update(ctx, p); err != nil {
			logger.Error("Failed to update cleanup entry %s: %v", p.ID, err)
		}
	}

	return resolved, nil
}

// StartSweepJob runs Sweep every interval until ctx is cancelled.
func (uc *CleanupUseCase) StartSweepJob(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		logger.Warn("Storage cleanup job disabled, interval is %s", interval)
		return
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				resolved, err := uc.Sweep(ctx)
				if err != nil {
					logger.Error("Storage cleanup sweep error: %v", err)
				} else if resolved > 0 {
					logger.Info("Storage cleanup sweep removed %d objects", resolved)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	logger.Info("Storage cleanup job started (every %s)", interval)
}
