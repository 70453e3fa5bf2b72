package engine

import (
	"fmt"
	"time"
)

// Weights are the priority-score coefficients supplied by the caller.
type Weights struct {
	DaysSinceReturn float64
	CountingDelay   float64
	ValidationDelay float64
	OpenTablets     float64
}

// DefaultWeights returns the operational defaults.
func DefaultWeights() Weights {
	return Weights{
		DaysSinceReturn: 0.4,
		CountingDelay:   0.3,
		ValidationDelay: 0.2,
		OpenTablets:     0.1,
	}
}

// LevelScale maps a priority score to an ordinal label via ascending cutoffs
// with half-open [lower, upper) intervals. Labels has exactly one more entry
// than Cutoffs; scores at or above the last cutoff get the last label, so the
// level is monotonic non-decreasing in the score by construction.
type LevelScale struct {
	Cutoffs []float64
	Labels  []string
}

// DefaultLevelScale returns the operational defaults: Low below 15, Medium in
// [15, 25), High at 25 and above.
func DefaultLevelScale() LevelScale {
	return LevelScale{
		Cutoffs: []float64{15, 25},
		Labels:  []string{"Low", "Medium", "High"},
	}
}

// Validate checks the scale's shape: strictly ascending cutoffs and one more
// label than cutoff.
func (s LevelScale) Validate() error {
	if len(s.Labels) != len(s.Cutoffs)+1 {
		return fmt.Errorf("level scale: need %d labels for %d cutoffs, have %d",
			len(s.Cutoffs)+1, len(s.Cutoffs), len(s.Labels))
	}
	for i := 1; i < len(s.Cutoffs); i++ {
		if s.Cutoffs[i] <= s.Cutoffs[i-1] {
			return fmt.Errorf("level scale: cutoffs must be strictly ascending, got %v", s.Cutoffs)
		}
	}
	for _, l := range s.Labels {
		if l == "" {
			return fmt.Errorf("level scale: labels must not be empty")
		}
	}
	return nil
}

// LevelFor returns the label of the half-open interval containing score.
func (s LevelScale) LevelFor(score float64) string {
	for i, cutoff := range s.Cutoffs {
		if score < cutoff {
			return s.Labels[i]
		}
	}
	return s.Labels[len(s.Labels)-1]
}

// Urgency categories combine the score with the raw age of the slip, so a
// very old return surfaces even under unusual weight configurations.
const (
	UrgencyUrgent    = "Urgent"
	UrgencyAttention = "Attention"
	UrgencyNormal    = "Normal"
	UrgencyNone      = "None"
)

const (
	urgentScore    = 35.0
	urgentDays     = 30
	attentionScore = 20.0
	attentionDays  = 15
	normalScore    = 10.0
	normalDays     = 7
)

// PriorityScorer computes the derived urgency fields of a record. It runs
// exactly once per record, after deduplication; records are not mutated
// anywhere else afterwards.
type PriorityScorer struct {
	weights Weights
	scale   LevelScale

	// Now is the wall clock used for open-slip aging. Injectable so tests
	// are independent of the current date.
	Now func() time.Time
}

// NewPriorityScorer creates a scorer with the given configuration.
func NewPriorityScorer(w Weights, scale LevelScale) (*PriorityScorer, error) {
	if err := scale.Validate(); err != nil {
		return nil, err
	}
	return &PriorityScorer{weights: w, scale: scale, Now: time.Now}, nil
}

// Score populates DaysSinceReturn, PriorityScore, PriorityLevel and
// UrgencyCategory on the record.
func (p *PriorityScorer) Score(rec *DeliveryRecord) {
	rec.DaysSinceReturn = p.daysSinceReturn(rec)

	rec.PriorityScore = float64(rec.DaysSinceReturn)*p.weights.DaysSinceReturn +
		float64(rec.CountingDelay)*p.weights.CountingDelay +
		float64(rec.ValidationDelay)*p.weights.ValidationDelay +
		float64(rec.TotalOpen)*p.weights.OpenTablets

	rec.PriorityLevel = p.scale.LevelFor(rec.PriorityScore)
	rec.UrgencyCategory = urgencyFor(rec.PriorityScore, rec.DaysSinceReturn)
}

// daysSinceReturn ages a slip. Closed slips (no open tablets) anchor to their
// counted date when one exists: their age stops at closure, not at whenever
// the report happens to be observed. Open slips always age against now.
func (p *PriorityScorer) daysSinceReturn(rec *DeliveryRecord) int {
	if rec.ReturnDate == nil {
		return 0
	}

	ref := p.Now()
	if rec.TotalOpen == 0 && rec.CountedDate != nil {
		ref = *rec.CountedDate
	}

	days := int(ref.Sub(*rec.ReturnDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func urgencyFor(score float64, days int) string {
	switch {
	case score >= urgentScore || days >= urgentDays:
		return UrgencyUrgent
	case score >= attentionScore || days >= attentionDays:
		return UrgencyAttention
	case score >= normalScore || days >= normalDays:
		return UrgencyNormal
	default:
		return UrgencyNone
	}
}
