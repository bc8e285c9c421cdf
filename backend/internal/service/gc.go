package service

import (
	"context"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/itchan-dev/filesmanager/shared/logger"
	"github.com/itchan-dev/filesmanager/shared/middleware/metrics"
)

// variantSuffix matches the width suffix thumbnails add to their source path.
var variantSuffix = regexp.MustCompile(`_(500|250|100)$`)

// MediaGarbageCollector removes stored bytes that no file record points to.
// They are left behind when the metadata insert of an upload fails.
type MediaGarbageCollector struct {
	storage         GCStorage
	mediaStorage    GCMediaStorage
	safetyThreshold time.Duration

	mu               sync.Mutex
	lastCleanupStats CleanupStats
}

// CleanupStats tracks metrics from the last garbage collection run.
type CleanupStats struct {
	RunAt         time.Time
	FilesScanned  int
	OrphanedFiles int
	FilesDeleted  int
	DurationMs    int64
	Errors        []string
}

type GCStorage interface {
	AllFilePaths(ctx context.Context) ([]string, error)
}

// safetyThreshold is the minimum age a file must have before being deleted,
// so bytes of an upload whose record is not inserted yet survive.
func NewMediaGarbageCollector(storage GCStorage, mediaStorage GCMediaStorage, safetyThreshold time.Duration) *MediaGarbageCollector {
	return &MediaGarbageCollector{
		storage:         storage,
		mediaStorage:    mediaStorage,
		safetyThreshold: safetyThreshold,
	}
}

// StartBackgroundCleanup runs cleanup every interval until ctx is cancelled.
func (gc *MediaGarbageCollector) StartBackgroundCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	log := logger.For("media_gc")
	log.Info("started background cleanup", "interval", interval, "safety_threshold", gc.safetyThreshold)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := gc.RunCleanup(ctx); err != nil {
					log.Error("cleanup failed", "error", err)
					continue
				}
				stats := gc.GetLastCleanupStats()
				log.Info("cleanup completed",
					"scanned", stats.FilesScanned,
					"orphans", stats.OrphanedFiles,
					"deleted", stats.FilesDeleted,
					"duration_ms", stats.DurationMs,
					"errors", len(stats.Errors),
				)
			case <-ctx.Done():
				log.Info("shutting down")
				return
			}
		}
	}()
}

// sourcePath maps a thumbnail variant to the original it was rendered from.
func sourcePath(path string) string {
	return variantSuffix.ReplaceAllString(path, "")
}

// RunCleanup executes a single garbage collection cycle.
func (gc *MediaGarbageCollector) RunCleanup(ctx context.Context) error {
	startTime := time.Now()
	stats := CleanupStats{
		RunAt:  startTime,
		Errors: []string{},
	}

	dbPaths, err := gc.storage.AllFilePaths(ctx)
	if err != nil {
		return err
	}
	dbPathSet := make(map[string]struct{}, len(dbPaths))
	for _, path := range dbPaths {
		dbPathSet[filepath.ToSlash(path)] = struct{}{}
	}

	fsPaths, err := gc.mediaStorage.WalkFiles()
	if err != nil {
		return err
	}
	stats.FilesScanned = len(fsPaths)

	for _, fsPath := range fsPaths {
		if ctx.Err() != nil {
			break
		}
		normalized := filepath.ToSlash(fsPath)
		if _, ok := dbPathSet[normalized]; ok {
			continue
		}
		if _, ok := dbPathSet[sourcePath(normalized)]; ok {
			continue
		}

		modTime, err := gc.mediaStorage.GetFileModTime(fsPath)
		if err != nil {
			stats.Errors = append(stats.Errors, "stat error: "+fsPath+": "+err.Error())
			continue
		}
		if time.Since(modTime) < gc.safetyThreshold {
			continue
		}

		stats.OrphanedFiles++
		if err := gc.mediaStorage.DeleteFile(fsPath); err != nil {
			stats.Errors = append(stats.Errors, "delete error: "+fsPath+": "+err.Error())
			continue
		}
		stats.FilesDeleted++
		metrics.MediaGCDeletedTotal.Inc()
	}

	stats.DurationMs = time.Since(startTime).Milliseconds()
	gc.mu.Lock()
	gc.lastCleanupStats = stats
	gc.mu.Unlock()
	return nil
}

func (gc *MediaGarbageCollector) GetLastCleanupStats() CleanupStats {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.lastCleanupStats
}
