package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
	"github.com/kaayakalpa/healthfinder/internal/domain/providers"
	"github.com/kaayakalpa/healthfinder/internal/infrastructure/observability"
	"github.com/kaayakalpa/healthfinder/pkg/textmatch"
)

// Scoring constants for symptom matching. The values are tuned against the
// disease catalog and must stay in step with each other.
const (
	DefaultSymptomMatchLimit = 25

	// AI mapping
	mapExactScore        = 1.0
	mapContainmentScore  = 0.9
	mapRegionWeight      = 0.2
	mapMinScore          = 0.35
	mapRankBonusBase     = 0.3
	mapRankBonusStep     = 0.01
	mapSufficientMatches = 8

	// Local fallback
	fallbackNameContainsQuery = 6.0
	fallbackQueryContainsName = 5.0
	fallbackOverlapWeight     = 4.0
	fallbackDiceWeight        = 3.0
	fallbackRegionWeight      = 2.5
	fallbackMinScore          = 0.6

	defaultExtractionTimeout = 8 * time.Second
)

// SymptomMatcher ranks catalog diseases against a free-text symptom description.
// It asks a ConditionExtractor for candidate conditions, maps them onto the
// catalog, and tops the list up with a deterministic string-similarity match.
// It never fails: extractor problems degrade to the deterministic path.
type SymptomMatcher struct {
	extractor         providers.ConditionExtractor
	extractionTimeout time.Duration
}

// SymptomMatcherOption configures a SymptomMatcher
type SymptomMatcherOption func(*SymptomMatcher)

// WithExtractionTimeout bounds each extractor call
func WithExtractionTimeout(d time.Duration) SymptomMatcherOption {
	return func(m *SymptomMatcher) {
		if d > 0 {
			m.extractionTimeout = d
		}
	}
}

// NewSymptomMatcher creates a matcher. A nil extractor disables the AI path.
func NewSymptomMatcher(extractor providers.ConditionExtractor, opts ...SymptomMatcherOption) *SymptomMatcher {
	m := &SymptomMatcher{
		extractor:         extractor,
		extractionTimeout: defaultExtractionTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FindRelatedDiseases returns up to limit catalog diseases related to query,
// best first and without duplicate ids. limit <= 0 means DefaultSymptomMatchLimit.
func (m *SymptomMatcher) FindRelatedDiseases(ctx context.Context, query string, catalog []*entities.Disease, limit int) []*entities.Disease {
	if limit <= 0 {
		limit = DefaultSymptomMatchLimit
	}

	candidates := m.extractConditions(ctx, query)
	aiMapped := mapToCatalog(query, candidates, catalog)

	if len(aiMapped) >= mapSufficientMatches {
		return truncate(aiMapped, limit)
	}

	fallback := localFallbackMatch(query, catalog, limit)
	return truncate(mergeByID(aiMapped, fallback), limit)
}

func (m *SymptomMatcher) extractConditions(ctx context.Context, query string) []string {
	if m.extractor == nil {
		return nil
	}

	extractCtx, cancel := context.WithTimeout(ctx, m.extractionTimeout)
	defer cancel()

	conditions, err := m.extractor.ExtractConditions(extractCtx, query)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("condition extraction failed, using local matching only")
		return nil
	}
	return conditions
}

// mapToCatalog resolves each candidate condition name to its closest catalog
// entry. Earlier candidates claim an entry first and earn a larger rank bonus.
func mapToCatalog(query string, candidates []string, catalog []*entities.Disease) []*entities.Disease {
	if len(candidates) == 0 || len(catalog) == 0 {
		return nil
	}

	region := newRegionContext(query)
	names := make([]string, len(catalog))
	regionScores := make([]float64, len(catalog))
	for i, d := range catalog {
		if d == nil {
			continue
		}
		names[i] = textmatch.Normalize(d.Name)
		regionScores[i] = region.score(d.Name)
	}

	used := make(map[string]struct{})
	var ranked []entities.ScoredDisease

	for rank, candidate := range candidates {
		candidateNorm := textmatch.Normalize(candidate)
		if candidateNorm == "" {
			continue
		}

		var best *entities.Disease
		bestScore := 0.0

		for i, d := range catalog {
			nameNorm := names[i]
			if d == nil || nameNorm == "" {
				continue
			}

			score := nameSimilarity(candidateNorm, nameNorm) + regionScores[i]*mapRegionWeight
			if score > bestScore {
				best = d
				bestScore = score
			}
		}

		if best == nil || bestScore < mapMinScore {
			continue
		}
		if _, taken := used[best.ID]; taken {
			continue
		}
		used[best.ID] = struct{}{}

		bonus := max(0, mapRankBonusBase-float64(rank)*mapRankBonusStep)
		ranked = append(ranked, entities.ScoredDisease{Disease: best, Score: bestScore + bonus})
	}

	return sortScored(ranked)
}

func nameSimilarity(a, b string) float64 {
	switch {
	case a == b:
		return mapExactScore
	case strings.Contains(b, a) || strings.Contains(a, b):
		return mapContainmentScore
	default:
		return max(textmatch.DiceCoefficient(a, b), textmatch.TokenOverlapScore(a, b))
	}
}

// localFallbackMatch scores every catalog entry directly against query.
func localFallbackMatch(query string, catalog []*entities.Disease, limit int) []*entities.Disease {
	queryNorm := textmatch.Normalize(query)
	hasTokens := len(textmatch.Tokenize(queryNorm)) > 0
	region := newRegionContext(queryNorm)

	var scored []entities.ScoredDisease
	for _, d := range catalog {
		if d == nil {
			continue
		}
		nameNorm := textmatch.Normalize(d.Name)
		score := 0.0

		if queryNorm != "" && strings.Contains(nameNorm, queryNorm) {
			score += fallbackNameContainsQuery
		}
		if queryNorm != "" && nameNorm != "" && strings.Contains(queryNorm, nameNorm) {
			score += fallbackQueryContainsName
		}
		if hasTokens {
			score += textmatch.TokenOverlapScore(queryNorm, nameNorm) * fallbackOverlapWeight
		}
		score += textmatch.DiceCoefficient(queryNorm, nameNorm) * fallbackDiceWeight
		score += region.score(d.Name) * fallbackRegionWeight

		if score > fallbackMinScore {
			scored = append(scored, entities.ScoredDisease{Disease: d, Score: score})
		}
	}

	return truncate(sortScored(scored), limit)
}

// mergeByID concatenates lists keeping the first occurrence of each id.
func mergeByID(lists ...[]*entities.Disease) []*entities.Disease {
	seen := make(map[string]struct{})
	var merged []*entities.Disease
	for _, list := range lists {
		for _, d := range list {
			if _, ok := seen[d.ID]; ok {
				continue
			}
			seen[d.ID] = struct{}{}
			merged = append(merged, d)
		}
	}
	return merged
}

func sortScored(scored []entities.ScoredDisease) []*entities.Disease {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	out := make([]*entities.Disease, len(scored))
	for i, s := range scored {
		out[i] = s.Disease
	}
	return out
}

func truncate(list []*entities.Disease, limit int) []*entities.Disease {
	if limit >= 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}
