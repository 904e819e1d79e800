package services

import (
	"strings"

	"github.com/kaayakalpa/healthfinder/pkg/textmatch"
)

const (
	regionPositiveBoost   = 1.5
	regionNegativePenalty = 1.2
	regionGenericPenalty  = 1.0
)

// regionProfile ties an anatomical region to the phrases that activate it and
// the disease-name terms that agree or disagree with it.
type regionProfile struct {
	key      string
	triggers []string
	positive []string
	negative []string
	keywords []string
}

// regionProfiles is checked in order; the first profile with a matching trigger wins.
var regionProfiles = []regionProfile{
	{
		key:      "head",
		triggers: []string{"head", "headache", "temple", "skull", "left side head", "right side head"},
		positive: []string{"migraine", "headache", "cluster", "tension", "sinusitis", "epilepsy", "stroke", "brain", "neurologic"},
		negative: []string{"back", "lumbar", "spine", "knee", "hip", "shoulder", "renal", "kidney"},
		keywords: []string{"head", "headache", "temple", "skull", "brain", "neurologic", "migraine"},
	},
	{
		key:      "abdomen",
		triggers: []string{"abdomen", "abdominal", "stomach", "belly", "lower abdomen"},
		positive: []string{"appendicitis", "gastritis", "ulcer", "crohn", "colitis", "pancreatitis", "gall", "intestinal", "gerd"},
		negative: []string{"headache", "migraine", "back pain", "lumbar"},
		keywords: []string{"abdomen", "abdominal", "stomach", "belly", "appendicitis", "gastric", "intestinal", "pancreatic"},
	},
	{
		key:      "chest",
		triggers: []string{"chest", "heart", "cardiac", "breath", "breathing", "lung"},
		positive: []string{"angina", "coronary", "heart", "arrhythmia", "pneumonia", "asthma", "copd", "pulmonary"},
		negative: []string{"appendicitis", "gastritis", "back pain"},
		keywords: []string{"chest", "heart", "cardiac", "lung", "pulmonary", "respiratory"},
	},
	{
		key:      "back",
		triggers: []string{"back", "spine", "lumbar", "lower back"},
		positive: []string{"lumbar", "disc", "spinal", "spondylitis", "musculoskeletal", "fibromyalgia"},
		negative: []string{"migraine", "appendicitis", "sinusitis"},
		keywords: []string{"back", "lumbar", "spine", "spinal"},
	},
}

// inferRegionProfile returns the first profile whose trigger occurs in the normalized query.
func inferRegionProfile(query string) *regionProfile {
	normalized := textmatch.Normalize(query)
	for i := range regionProfiles {
		if containsAny(normalized, regionProfiles[i].triggers) {
			return &regionProfiles[i]
		}
	}
	return nil
}

// regionContext is the per-query state needed to score disease names by region.
type regionContext struct {
	profile  *regionProfile
	asksPain bool
}

func newRegionContext(query string) regionContext {
	return regionContext{
		profile:  inferRegionProfile(query),
		asksPain: mentionsPain(strings.ToLower(query)),
	}
}

// score returns a signed adjustment for diseaseName: positive when the name fits
// the query's body region, negative when it belongs elsewhere.
func (rc regionContext) score(diseaseName string) float64 {
	if rc.profile == nil {
		return 0
	}

	nameNorm := textmatch.Normalize(diseaseName)
	score := 0.0

	if containsAny(nameNorm, rc.profile.positive) {
		score += regionPositiveBoost
	}
	if containsAny(nameNorm, rc.profile.negative) {
		score -= regionNegativePenalty
	}

	// A generic "X pain" entry from another region should not surface for a pain complaint.
	if rc.asksPain && mentionsPain(nameNorm) && !containsAny(nameNorm, rc.profile.keywords) {
		score -= regionGenericPenalty
	}

	return score
}

// regionContextScore scores diseaseName against the region inferred from query.
func regionContextScore(query, diseaseName string) float64 {
	return newRegionContext(query).score(diseaseName)
}

func mentionsPain(lowered string) bool {
	return strings.Contains(lowered, "pain") || strings.Contains(lowered, "ache")
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
