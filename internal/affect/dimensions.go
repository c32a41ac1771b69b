package affect

// #region dimension-keys

// Key identifies one affect dimension. The set of keys is fixed at compile
// time; dimension-specific behavior lives in the Dimensions table, not in
// per-dimension code.
type Key string

const (
	Valence       Key = "valence"
	Arousal       Key = "arousal"
	Attachment    Key = "attachment"
	Certainty     Key = "certainty"
	Novelty       Key = "novelty"
	Threat        Key = "threat"
	Frustration   Key = "frustration"
	Satiation     Key = "satiation"
	Vulnerability Key = "vulnerability"
	Coherence     Key = "coherence"
	Curiosity     Key = "curiosity"
)

// NumDimensions is the size of the affect vector.
const NumDimensions = 11

// #endregion dimension-keys

// #region dimension-table

// Dimension defines the dynamics of one affect variable.
type Dimension struct {
	Key       Key
	Inertia   float64 // resistance to instantaneous change, [0,1]
	DecayRate float64 // per-second pull toward baseline, >= 0
	Baseline  float64
	Min       float64
	Max       float64
}

// Dimensions is the fixed table driving all per-dimension behavior.
// Index order is the canonical enumeration order used for snapshots,
// vault serialization, and chain-log canonicalization.
var Dimensions = [NumDimensions]Dimension{
	{Key: Valence, Inertia: 0.30, DecayRate: 0.020, Baseline: 0.10, Min: -1, Max: 1},
	{Key: Arousal, Inertia: 0.20, DecayRate: 0.050, Baseline: 0.30, Min: 0, Max: 1},
	{Key: Attachment, Inertia: 0.60, DecayRate: 0.005, Baseline: 0.50, Min: 0, Max: 1},
	{Key: Certainty, Inertia: 0.40, DecayRate: 0.015, Baseline: 0.60, Min: 0, Max: 1},
	{Key: Novelty, Inertia: 0.10, DecayRate: 0.120, Baseline: 0.20, Min: 0, Max: 1},
	{Key: Threat, Inertia: 0.15, DecayRate: 0.080, Baseline: 0.05, Min: 0, Max: 1},
	{Key: Frustration, Inertia: 0.25, DecayRate: 0.040, Baseline: 0.10, Min: 0, Max: 1},
	{Key: Satiation, Inertia: 0.50, DecayRate: 0.010, Baseline: 0.50, Min: 0, Max: 1},
	{Key: Vulnerability, Inertia: 0.45, DecayRate: 0.025, Baseline: 0.20, Min: 0, Max: 1},
	{Key: Coherence, Inertia: 0.70, DecayRate: 0.008, Baseline: 0.70, Min: 0, Max: 1},
	{Key: Curiosity, Inertia: 0.20, DecayRate: 0.060, Baseline: 0.35, Min: 0, Max: 1},
}

// indexByKey maps a dimension key to its slot in the vector.
var indexByKey = func() map[Key]int {
	m := make(map[Key]int, NumDimensions)
	for i, d := range Dimensions {
		m[d.Key] = i
	}
	return m
}()

// IndexOf returns the vector slot for key, or -1 if key is unknown.
func IndexOf(key Key) int {
	if i, ok := indexByKey[key]; ok {
		return i
	}
	return -1
}

// #endregion dimension-table

// #region clamp

// Clamp restricts v to the dimension's hard range.
func (d Dimension) Clamp(v float64) float64 {
	if v < d.Min {
		return d.Min
	}
	if v > d.Max {
		return d.Max
	}
	return v
}

// #endregion clamp
