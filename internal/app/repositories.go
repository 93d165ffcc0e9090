package app

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/vk/jarsmith/internal/artifactcache"
	"github.com/vk/jarsmith/internal/config"
	"github.com/vk/jarsmith/internal/ctxlog"
	"github.com/vk/jarsmith/internal/repository"
)

// repositories builds the repository chain of model in declaration order.
// The artifact cache is opened only when a remote repository needs it; the
// returned function closes it.
func (a *App) repositories(ctx context.Context, model *config.Model) (repository.Chain, func(), error) {
	logger := ctxlog.FromContext(ctx)

	var (
		chain repository.Chain
		cache *artifactcache.Store
	)
	closeCache := func() {
		if cache == nil {
			return
		}
		if stats, err := cache.Stats(ctx); err == nil {
			logger.Debug("Artifact cache.", "path", cache.Root(), "entries", stats.Entries, "size", humanize.Bytes(uint64(stats.Bytes)))
		}
		if err := cache.Close(); err != nil {
			logger.Warn("Closing artifact cache failed.", "error", err)
		}
	}

	for _, r := range model.Repositories {
		if r.IsLocal() {
			chain = append(chain, repository.NewLocal(r.Name, r.Path))
			continue
		}
		if cache == nil {
			var err error
			cache, err = artifactcache.Open(ctx, a.config.CacheDir)
			if err != nil {
				return nil, func() {}, fmt.Errorf("open artifact cache: %w", err)
			}
		}
		chain = append(chain, repository.NewRemote(r.Name, r.URL, cache,
			repository.WithHTTPClient(a.httpClient),
			repository.WithOffline(a.config.Offline),
		))
	}
	logger.Debug("Repository chain ready.", "repositories", len(chain), "offline", a.config.Offline)
	return chain, closeCache, nil
}
