package dcf

// ConfidenceWeights is the policy table combining the four confidence
// sub-scores into the overall 1-10 score. The weighting is configuration,
// not logic: it loads from config/valuation.yaml and the defaults below are
// only the shipped baseline.
type ConfidenceWeights struct {
	HistoricalDataAdequacy float64 `yaml:"historical_data_adequacy"`
	FinancialDataQuality   float64 `yaml:"financial_data_quality"`
	IndustryStability      float64 `yaml:"industry_stability"`
	NormalizationImpact    float64 `yaml:"normalization_impact"`
}

// DefaultConfidenceWeights returns the shipped weighting policy.
func DefaultConfidenceWeights() ConfidenceWeights {
	return ConfidenceWeights{
		HistoricalDataAdequacy: 0.3,
		FinancialDataQuality:   0.3,
		IndustryStability:      0.2,
		NormalizationImpact:    0.2,
	}
}

// Assess combines the sub-scores into the overall confidence score. Inputs
// and output are clamped to the 1-10 scale; weights are normalized by their
// sum so a partially filled policy table still yields a sane score.
func (w ConfidenceWeights) Assess(in ConfidenceInputs) ConfidenceAssessment {
	total := w.HistoricalDataAdequacy + w.FinancialDataQuality + w.IndustryStability + w.NormalizationImpact
	if total == 0 {
		w = DefaultConfidenceWeights()
		total = 1.0
	}

	score := (w.HistoricalDataAdequacy*clampScore(in.HistoricalDataAdequacy) +
		w.FinancialDataQuality*clampScore(in.FinancialDataQuality) +
		w.IndustryStability*clampScore(in.IndustryStability) +
		w.NormalizationImpact*clampScore(in.NormalizationImpact)) / total

	return ConfidenceAssessment{
		Inputs:                 in,
		OverallConfidenceScore: clampScore(score),
	}
}

func clampScore(v float64) float64 {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}
