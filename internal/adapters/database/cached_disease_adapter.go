package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
	"github.com/kaayakalpa/healthfinder/internal/domain/providers"
	"github.com/kaayakalpa/healthfinder/internal/domain/repositories"
)

// Cache TTLs (in seconds)
const (
	activeCatalogTTL = 600
	diseaseByIDTTL   = 600
)

// ActiveCatalogCacheKey holds the serialized active disease catalog
const ActiveCatalogCacheKey = "diseases:active"

func diseaseCacheKey(id string) string {
	return fmt.Sprintf("disease:%s", id)
}

var _ repositories.DiseaseRepository = (*CachedDiseaseAdapter)(nil)

// CachedDiseaseAdapter wraps a DiseaseRepository with caching of the active
// catalog and single-disease lookups. Writes invalidate the affected keys.
type CachedDiseaseAdapter struct {
	adapter repositories.DiseaseRepository
	cache   providers.CacheProvider
	loads   singleflight.Group
}

// NewCachedDiseaseAdapter creates a new cached disease adapter
func NewCachedDiseaseAdapter(adapter repositories.DiseaseRepository, cache providers.CacheProvider) *CachedDiseaseAdapter {
	return &CachedDiseaseAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// ListActive returns the active catalog from cache, loading it once on a miss
// however many callers are waiting.
func (a *CachedDiseaseAdapter) ListActive(ctx context.Context) ([]*entities.Disease, error) {
	if cached, err := a.cache.Get(ctx, ActiveCatalogCacheKey); err == nil {
		var diseases []*entities.Disease
		if err := json.Unmarshal(cached, &diseases); err == nil {
			return diseases, nil
		}
		log.Warn().Err(err).Str("key", ActiveCatalogCacheKey).Msg("discarding unreadable cached catalog")
	}

	result, err, _ := a.loads.Do(ActiveCatalogCacheKey, func() (interface{}, error) {
		return a.Refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]*entities.Disease), nil
}

// Refresh reloads the active catalog from the underlying repository into the cache.
func (a *CachedDiseaseAdapter) Refresh(ctx context.Context) ([]*entities.Disease, error) {
	diseases, err := a.adapter.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(diseases); err == nil {
		if err := a.cache.Set(ctx, ActiveCatalogCacheKey, data, activeCatalogTTL); err != nil {
			log.Warn().Err(err).Str("key", ActiveCatalogCacheKey).Msg("failed to cache disease catalog")
		}
	}
	return diseases, nil
}

// GetByID retrieves a disease by ID with caching
func (a *CachedDiseaseAdapter) GetByID(ctx context.Context, id string) (*entities.Disease, error) {
	key := diseaseCacheKey(id)

	if cached, err := a.cache.Get(ctx, key); err == nil {
		var disease entities.Disease
		if err := json.Unmarshal(cached, &disease); err == nil {
			return &disease, nil
		}
	}

	disease, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(disease); err == nil {
		if err := a.cache.Set(ctx, key, data, diseaseByIDTTL); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to cache disease")
		}
	}
	return disease, nil
}

// GetByName is not cached
func (a *CachedDiseaseAdapter) GetByName(ctx context.Context, name string) (*entities.Disease, error) {
	return a.adapter.GetByName(ctx, name)
}

// List is not cached; filtered listings are cheap and varied
func (a *CachedDiseaseAdapter) List(ctx context.Context, filter repositories.DiseaseFilter) ([]*entities.Disease, error) {
	return a.adapter.List(ctx, filter)
}

// CountChildren is not cached
func (a *CachedDiseaseAdapter) CountChildren(ctx context.Context, id string) (int, error) {
	return a.adapter.CountChildren(ctx, id)
}

// Create creates a disease and invalidates the catalog
func (a *CachedDiseaseAdapter) Create(ctx context.Context, disease *entities.Disease) error {
	if err := a.adapter.Create(ctx, disease); err != nil {
		return err
	}
	a.invalidate(ctx, "")
	return nil
}

// Update updates a disease and invalidates its cached copies
func (a *CachedDiseaseAdapter) Update(ctx context.Context, disease *entities.Disease) error {
	if err := a.adapter.Update(ctx, disease); err != nil {
		return err
	}
	a.invalidate(ctx, disease.ID)
	return nil
}

// Delete deletes a disease and invalidates its cached copies
func (a *CachedDiseaseAdapter) Delete(ctx context.Context, id string) error {
	if err := a.adapter.Delete(ctx, id); err != nil {
		return err
	}
	a.invalidate(ctx, id)
	return nil
}

func (a *CachedDiseaseAdapter) invalidate(ctx context.Context, id string) {
	keys := []string{ActiveCatalogCacheKey}
	if id != "" {
		keys = append(keys, diseaseCacheKey(id))
	}
	for _, key := range keys {
		if err := a.cache.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to invalidate disease cache")
		}
	}
}
