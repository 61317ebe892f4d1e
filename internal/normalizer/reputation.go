package normalizer

// ReputationSource supplies the 0–100 reputation score for a partner.
// Injectable so the static table can later be replaced by a learned model
// fed from settlement history.
type ReputationSource interface {
	Score(partnerID string) float64
}

// defaultReputationScore is assumed for partners without a track record.
const defaultReputationScore = 70

// StaticReputation is a fixed per-partner lookup table.
type StaticReputation struct {
	scores map[string]float64
}

// NewStaticReputation builds a table-backed reputation source.
func NewStaticReputation(scores map[string]float64) *StaticReputation {
	return &StaticReputation{scores: scores}
}

// DefaultReputation returns the seeded production table.
func DefaultReputation() *StaticReputation {
	return NewStaticReputation(map[string]float64{
		"apex-capital":    85,
		"meridian-credit": 78,
	})
}

// Score returns the partner's seeded score, or the default for unknown ids.
func (r *StaticReputation) Score(partnerID string) float64 {
	if s, ok := r.scores[partnerID]; ok {
		return s
	}
	return defaultReputationScore
}
