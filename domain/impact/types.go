package impact

import "fmt"

// Period is a validated row range [Start, End) over the analysed frame
type Period struct {
	Start int `json:"start"`
	End   int `json:"end"`

	// Labels are set when the period was given as datetime index labels
	StartLabel string `json:"start_label,omitempty"`
	EndLabel   string `json:"end_label,omitempty"`
}

// Len returns the number of rows covered by the period
func (p Period) Len() int {
	return p.End - p.Start
}

func (p Period) String() string {
	if p.StartLabel != "" {
		return fmt.Sprintf("[%s, %s]", p.StartLabel, p.EndLabel)
	}
	return fmt.Sprintf("[%d, %d)", p.Start, p.End)
}

// ModelArgs holds the validated model options of a request
type ModelArgs struct {
	Standardize bool  `json:"standardize"`
	NSims       int   `json:"n_sims"`
	Seed        int64 `json:"seed"`
}

// MuSig is the pre-period mean and standard deviation of the response
type MuSig struct {
	Mu  float64 `json:"mu"`
	Sig float64 `json:"sig"`
}

// Inferences holds every derived series aligned to the pre+post rows, in
// original units. Cumulative columns are zero over the pre-period.
type Inferences struct {
	Preds      []float64 `json:"preds"`
	PredsLower []float64 `json:"preds_lower"`
	PredsUpper []float64 `json:"preds_upper"`

	PointEffects      []float64 `json:"point_effects"`
	PointEffectsLower []float64 `json:"point_effects_lower"`
	PointEffectsUpper []float64 `json:"point_effects_upper"`

	PostCumY          []float64 `json:"post_cum_y"`
	PostCumPreds      []float64 `json:"post_cum_pred"`
	PostCumPredsLower []float64 `json:"post_cum_pred_lower"`
	PostCumPredsUpper []float64 `json:"post_cum_pred_upper"`

	PostCumEffects      []float64 `json:"post_cum_effects"`
	PostCumEffectsLower []float64 `json:"post_cum_effects_lower"`
	PostCumEffectsUpper []float64 `json:"post_cum_effects_upper"`

	// Index is the row label of each entry
	Index []string `json:"index"`
}

// NewInferences allocates all series for n rows
func NewInferences(n int) *Inferences {
	col := func() []float64 { return make([]float64, n) }
	return &Inferences{
		Preds: col(), PredsLower: col(), PredsUpper: col(),
		PointEffects: col(), PointEffectsLower: col(), PointEffectsUpper: col(),
		PostCumY: col(), PostCumPreds: col(), PostCumPredsLower: col(), PostCumPredsUpper: col(),
		PostCumEffects: col(), PostCumEffectsLower: col(), PostCumEffectsUpper: col(),
		Index: make([]string, n),
	}
}

// Len returns the number of rows
func (inf *Inferences) Len() int {
	return len(inf.Preds)
}

// Summary condenses the post-period into totals and averages
type Summary struct {
	Actual            float64 `json:"actual"`
	Predicted         float64 `json:"predicted"`
	PredictedLower    float64 `json:"predicted_lower"`
	PredictedUpper    float64 `json:"predicted_upper"`
	AbsEffect         float64 `json:"abs_effect"`
	AbsEffectLower    float64 `json:"abs_effect_lower"`
	AbsEffectUpper    float64 `json:"abs_effect_upper"`
	RelEffect         float64 `json:"rel_effect"`
	AverageActual     float64 `json:"average_actual"`
	AveragePredicted  float64 `json:"average_predicted"`
	AverageAbsEffect  float64 `json:"average_abs_effect"`
	PostPeriodLength  int     `json:"post_period_length"`
	PValue            float64 `json:"p_value"`
	Significant       bool    `json:"significant"`
	ConfidencePercent float64 `json:"confidence_percent"`
}

// Summarize derives the post-period totals from the final row of the cumulative series
func (inf *Inferences) Summarize(post Period, alpha, pValue float64) Summary {
	last := inf.Len() - 1
	n := float64(post.Len())
	s := Summary{
		Actual:            inf.PostCumY[last],
		Predicted:         inf.PostCumPreds[last],
		PredictedLower:    inf.PostCumPredsLower[last],
		PredictedUpper:    inf.PostCumPredsUpper[last],
		AbsEffect:         inf.PostCumEffects[last],
		AbsEffectLower:    inf.PostCumEffectsLower[last],
		AbsEffectUpper:    inf.PostCumEffectsUpper[last],
		PostPeriodLength:  post.Len(),
		PValue:            pValue,
		Significant:       pValue < alpha,
		ConfidencePercent: (1 - alpha) * 100,
	}
	s.AverageActual = s.Actual / n
	s.AveragePredicted = s.Predicted / n
	s.AverageAbsEffect = s.AbsEffect / n
	if s.Predicted != 0 {
		s.RelEffect = s.AbsEffect / s.Predicted
	}
	return s
}
