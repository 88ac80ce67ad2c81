// services/cache.go
package services

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alphabatem/common/context"
	"github.com/hailin-dev/rainclass/shared"
	log "github.com/sirupsen/logrus"
)

// CacheService is the durable completion record: one JSON object per
// credential identity mapping leaf/courseware id to true. A present entry
// means "do not re-drive"; absence means unknown. I/O failures degrade to
// "always re-drive", never to a crash.
type CacheService struct {
	context.DefaultService

	cacheDir string
	filePath string

	completed map[string]bool
}

const CACHE_SVC = "cache_svc"

func (svc CacheService) Id() string {
	return CACHE_SVC
}

func (svc *CacheService) Configure(ctx *context.Context) error {
	svc.cacheDir = os.Getenv("CACHE_DIR")
	if svc.cacheDir == "" {
		svc.cacheDir = shared.DefaultCacheDir
	}
	svc.completed = make(map[string]bool)

	return svc.DefaultService.Configure(ctx)
}

func (svc *CacheService) Start() error {
	credSvc := svc.Service(CREDENTIAL_SVC).(*CredentialService)

	if err := os.MkdirAll(svc.cacheDir, 0o755); err != nil {
		log.WithError(err).Warn("Cache directory unavailable, running without durable cache")
		return nil
	}

	svc.filePath = filepath.Join(svc.cacheDir, fmt.Sprintf("completed_leaf_%s.json", credSvc.Identity()))
	svc.load()
	return nil
}

func (svc *CacheService) load() {
	loaded := make(map[string]bool)
	if err := shared.LoadJSON(svc.filePath, &loaded); err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).Warn("Completion cache unreadable, starting empty")
		}
		return
	}
	svc.completed = loaded
	log.WithFields(log.Fields{"file": svc.filePath, "entries": len(loaded)}).Info("Completion cache loaded")
}

// IsCompleted reports whether id was already driven to completion.
func (svc *CacheService) IsCompleted(id string) bool {
	return svc.completed[id]
}

// MarkCompleted records id and rewrites the whole cache file. No batching:
// a mark is only issued after a drive fully returned, so an interrupt never
// leaves a half-done item recorded.
func (svc *CacheService) MarkCompleted(id string) {
	svc.completed[id] = true
	if svc.filePath == "" {
		return
	}
	if err := shared.SaveJSON(svc.filePath, svc.completed); err != nil {
		log.WithError(err).WithField("id", id).Warn("Failed to persist completion cache")
	}
}

// Entries returns the number of recorded completions.
func (svc *CacheService) Entries() int {
	return len(svc.completed)
}
