package ranker

import "github.com/lendora/auction/internal/domain"

// WeightVector distributes the overall score across the five component
// dimensions. Each vector sums to 1.0.
type WeightVector struct {
	Cost        float64
	Speed       float64
	Reliability float64
	Flexibility float64
	Approval    float64
}

// priorityWeights holds one fixed vector per priority mode, each assigning
// the heaviest share to its namesake dimension.
var priorityWeights = map[domain.PriorityMode]WeightVector{
	domain.PriorityLowestRate: {
		Cost: 0.45, Speed: 0.15, Reliability: 0.15, Flexibility: 0.10, Approval: 0.15,
	},
	domain.PriorityFastestDisbursal: {
		Cost: 0.20, Speed: 0.45, Reliability: 0.15, Flexibility: 0.05, Approval: 0.15,
	},
	domain.PriorityFlexibleTerms: {
		Cost: 0.20, Speed: 0.10, Reliability: 0.15, Flexibility: 0.40, Approval: 0.15,
	},
	domain.PriorityHighestApproval: {
		Cost: 0.20, Speed: 0.10, Reliability: 0.15, Flexibility: 0.10, Approval: 0.45,
	},
}

// WeightsFor returns the vector for the given priority mode. Unknown modes
// fall back to the lowest_rate vector.
func WeightsFor(mode domain.PriorityMode) WeightVector {
	if w, ok := priorityWeights[mode]; ok {
		return w
	}
	return priorityWeights[domain.PriorityLowestRate]
}

// Apply computes the weighted sum of the component scores.
func (w WeightVector) Apply(s domain.ComponentScores) float64 {
	return s.Cost*w.Cost +
		s.Speed*w.Speed +
		s.Reliability*w.Reliability +
		s.Flexibility*w.Flexibility +
		s.ApprovalProbability*w.Approval
}
