package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
)

// DefaultCatalogWarmInterval is how often the active disease catalog is reloaded
const DefaultCatalogWarmInterval = 5 * time.Minute

// CatalogRefresher reloads the cached active disease catalog
type CatalogRefresher interface {
	Refresh(ctx context.Context) ([]*entities.Disease, error)
}

// CatalogWarmingService keeps the active disease catalog in cache so symptom
// searches never wait on a cold load
type CatalogWarmingService struct {
	catalog CatalogRefresher
}

// NewCatalogWarmingService creates a new catalog warming service
func NewCatalogWarmingService(catalog CatalogRefresher) *CatalogWarmingService {
	return &CatalogWarmingService{catalog: catalog}
}

// WarmCache reloads the catalog once
func (s *CatalogWarmingService) WarmCache(ctx context.Context) error {
	start := time.Now()
	diseases, err := s.catalog.Refresh(ctx)
	if err != nil {
		return err
	}
	log.Debug().
		Int("diseases", len(diseases)).
		Dur("duration", time.Since(start)).
		Msg("disease catalog warmed")
	return nil
}

// StartPeriodicWarming warms the catalog now and then every interval until ctx is done
func (s *CatalogWarmingService) StartPeriodicWarming(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultCatalogWarmInterval
	}

	if err := s.WarmCache(ctx); err != nil {
		log.Warn().Err(err).Msg("initial catalog warming failed")
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("stopping catalog warming")
				return
			case <-ticker.C:
				if err := s.WarmCache(ctx); err != nil {
					log.Warn().Err(err).Msg("periodic catalog warming failed")
				}
			}
		}
	}()
	log.Info().Dur("interval", interval).Msg("started periodic catalog warming")
}
