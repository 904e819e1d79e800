package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
)

func TestInferRegionProfile(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"I have had a severe headache on my left side for two days", "head"},
		{"sharp pain in lower abdomen", "abdomen"},
		{"tightness in chest when climbing stairs", "chest"},
		{"stiff lower back every morning", "back"},
		{"itchy red rash", ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			profile := inferRegionProfile(tt.query)
			if tt.want == "" {
				assert.Nil(t, profile)
				return
			}
			require.NotNil(t, profile)
			assert.Equal(t, tt.want, profile.key)
		})
	}
}

func TestInferRegionProfile_FirstMatchWins(t *testing.T) {
	// "head" is listed before "back"
	profile := inferRegionProfile("headache and back pain")
	require.NotNil(t, profile)
	assert.Equal(t, "head", profile.key)
}

func TestRegionContextScore(t *testing.T) {
	query := "I have had a severe headache on my left side for two days"

	assert.Greater(t, regionContextScore(query, "Migraine"), 0.0)
	assert.LessOrEqual(t, regionContextScore(query, "Lumbar Disc Disease"), 0.0)
	assert.Equal(t, 0.0, regionContextScore("itchy red rash", "Migraine"))
}

func TestRegionContextScore_GenericPainPenalty(t *testing.T) {
	// "knee pain" is negative for head and is a pain entry without head keywords
	assert.InDelta(t, -regionNegativePenalty-regionGenericPenalty, regionContextScore("head pain", "Knee Pain"), 1e-9)
	// no pain wording in the query: only the negative term applies
	assert.InDelta(t, -regionNegativePenalty, regionContextScore("head throbbing", "Knee Pain"), 1e-9)
	// keyword match lifts the generic penalty
	assert.InDelta(t, regionPositiveBoost, regionContextScore("head pain", "Headache"), 1e-9)
}

func TestMapToCatalog(t *testing.T) {
	catalog := []*entities.Disease{
		{ID: "1", Name: "Migraine"},
		{ID: "2", Name: "Lumbar Disc Disease"},
		{ID: "3", Name: "Tension Headache"},
	}

	t.Run("maps exact and containment matches in rank order", func(t *testing.T) {
		got := mapToCatalog("bad headache behind my eyes", []string{"migraine", "tension-type headache"}, catalog)
		require.Len(t, got, 2)
		assert.Equal(t, "1", got[0].ID)
		assert.Equal(t, "3", got[1].ID)
	})

	t.Run("skips candidates below threshold", func(t *testing.T) {
		got := mapToCatalog("itchy rash", []string{"zzzz", "  ", "!!"}, catalog)
		assert.Empty(t, got)
	})

	t.Run("each catalog entry is claimed once", func(t *testing.T) {
		got := mapToCatalog("itchy rash", []string{"Migraine", "migraine", "MIGRAINE"}, catalog)
		require.Len(t, got, 1)
		assert.Equal(t, "1", got[0].ID)
	})

	t.Run("stronger later candidate overtakes the rank bonus", func(t *testing.T) {
		// headache: containment 0.9 + 0.30, migraine: exact 1.0 + 0.29
		got := mapToCatalog("q", []string{"headache", "migraine"}, catalog)
		require.Len(t, got, 2)
		assert.Equal(t, "1", got[0].ID)
		assert.Equal(t, "3", got[1].ID)
	})

	t.Run("rank bonus breaks ties between equal matches", func(t *testing.T) {
		got := mapToCatalog("q", []string{"tension headache", "migraine"}, catalog)
		require.Len(t, got, 2)
		assert.Equal(t, "3", got[0].ID)
		assert.Equal(t, "1", got[1].ID)
	})

	t.Run("rank bonus bottoms out at zero", func(t *testing.T) {
		candidates := []string{"headache"}
		for range 30 {
			candidates = append(candidates, "zzzz")
		}
		candidates = append(candidates, "migraine")

		got := mapToCatalog("q", candidates, catalog)
		require.Len(t, got, 2)
		assert.Equal(t, "3", got[0].ID)
		assert.Equal(t, "1", got[1].ID)
	})

	t.Run("empty inputs", func(t *testing.T) {
		assert.Empty(t, mapToCatalog("q", nil, catalog))
		assert.Empty(t, mapToCatalog("q", []string{"Migraine"}, nil))
	})
}

func TestLocalFallbackMatch(t *testing.T) {
	catalog := []*entities.Disease{
		{ID: "1", Name: "Migraine"},
		{ID: "2", Name: "Lumbar Disc Disease"},
		{ID: "3", Name: "Tension Headache"},
	}

	got := localFallbackMatch("bad headache behind my eyes", catalog, 10)
	require.Len(t, got, 2)
	assert.Equal(t, "3", got[0].ID)
	assert.Equal(t, "1", got[1].ID)

	assert.Len(t, localFallbackMatch("bad headache behind my eyes", catalog, 1), 1)
	assert.Empty(t, localFallbackMatch("", catalog, 10))
}

func TestLocalFallbackMatch_ExactName(t *testing.T) {
	catalog := []*entities.Disease{
		{ID: "1", Name: "Asthma"},
		{ID: "2", Name: "Gout"},
	}

	got := localFallbackMatch("Gout", catalog, 10)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
}

func TestMergeByID(t *testing.T) {
	a := &entities.Disease{ID: "a"}
	b := &entities.Disease{ID: "b"}
	c := &entities.Disease{ID: "c"}

	merged := mergeByID([]*entities.Disease{a, b}, []*entities.Disease{b, c, a})
	assert.Equal(t, []*entities.Disease{a, b, c}, merged)
}
