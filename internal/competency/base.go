package competency

// Contribution is one line of the base score breakdown.
type Contribution struct {
	Code     string  `json:"code"`
	Score    float64 `json:"score"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
	Scored   bool    `json:"scored"`
}

// BaseScore is the weighted average of competency percentages.
type BaseScore struct {
	Score         float64        `json:"score"`
	ScoredWeight  float64        `json:"scored_weight"`
	Contributions []Contribution `json:"contributions"`
}

// CalculateBase combines scores with the profile weights. Competencies that
// have no score are reported with Scored=false and their weight is left out
// of the denominator, so partial data is averaged over what was observed.
// Scores for codes outside the profile are ignored.
func CalculateBase(profile *WeightProfile, scores Scores) BaseScore {
	out := BaseScore{Contributions: make([]Contribution, 0, profile.Len())}

	var weighted float64
	for _, item := range profile.items {
		score, ok := scores[item.Code]
		c := Contribution{Code: item.Code, Weight: Round2(item.Weight), Scored: ok}
		if ok {
			score = Clamp(score, 0, 100)
			c.Score = score
			c.Weighted = Round2(score * item.Weight / 100)
			weighted += score * item.Weight
			out.ScoredWeight += item.Weight
		}
		out.Contributions = append(out.Contributions, c)
	}

	if out.ScoredWeight > 0 {
		out.Score = Round2(Clamp(weighted/out.ScoredWeight, 0, 100))
	}
	out.ScoredWeight = Round2(out.ScoredWeight)

	return out
}
