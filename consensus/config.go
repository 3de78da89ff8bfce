// Package consensus - reconciles redundant bounding-box annotations into
// scored consensus boxes.
package consensus

import "github.com/pkg/errors"

// Config defines every tunable of the consensus pipeline.
//
// The defaults mirror the behavior the score formulas were tuned against; no
// principled values have been derived from data, so treat them as provisional
// and override per dataset.
type Config struct {
	// IoUThreshold is the minimum IoU for two boxes to be considered the same
	// object during grouping and fusion. Must be in [0,1].
	IoUThreshold float32

	// MinScore drops consensus results scoring below it. A result scoring
	// exactly MinScore is kept. Must be in [0,1].
	MinScore float32

	// MaxIterations caps the outlier-refinement loop. Must be >= 1.
	MaxIterations int

	// MADScale is the k in the median ± k*MAD inlier band used by the
	// refiner. Must be > 0.
	MADScale float32

	// ConvergenceTol stops refinement once successive aggregates have
	// IoU >= 1 - ConvergenceTol. Must be in [0,1].
	ConvergenceTol float32

	// CountWeight and OverlapWeight blend the two base agreement scores:
	// member count over annotator cardinality, and mean/max pairwise IoU.
	// They must be non-negative and sum to a positive value.
	CountWeight   float32
	OverlapWeight float32

	// VariancePenaltyCap limits how much coordinate spread can subtract from
	// a group's base score.
	VariancePenaltyCap float32

	// AgreementWeight, RetentionWeight, TightnessWeight and ConvergenceWeight
	// blend the refined stability score.
	AgreementWeight   float32
	RetentionWeight   float32
	TightnessWeight   float32
	ConvergenceWeight float32

	// SkipBoxThreshold is forwarded to the weighted-fusion collaborator;
	// boxes with assigned confidence below it never enter fusion.
	SkipBoxThreshold float32
}

// DefaultConfig returns the documented default tuning.
//
// The base score is purely count-based (CountWeight 1, OverlapWeight 0) with
// a variance penalty capped at 0.2, and the refined stability score blends
// 0.4 agreement + 0.3 retention + 0.2 tightness + 0.1 convergence.
func DefaultConfig() Config {
	return Config{
		IoUThreshold:       0.5,
		MinScore:           0.2,
		MaxIterations:      3,
		MADScale:           2.5,
		ConvergenceTol:     0.05,
		CountWeight:        1.0,
		OverlapWeight:      0.0,
		VariancePenaltyCap: 0.2,
		AgreementWeight:    0.4,
		RetentionWeight:    0.3,
		TightnessWeight:    0.2,
		ConvergenceWeight:  0.1,
		SkipBoxThreshold:   0.0001,
	}
}

// Validate rejects out-of-range parameters before any processing starts.
// Nothing is silently clamped.
func (c Config) Validate() error {
	if c.IoUThreshold < 0 || c.IoUThreshold > 1 {
		return errors.Errorf("iou threshold %f outside [0,1]", c.IoUThreshold)
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		return errors.Errorf("min score %f outside [0,1]", c.MinScore)
	}
	if c.MaxIterations < 1 {
		return errors.Errorf("max iterations %d, need at least 1", c.MaxIterations)
	}
	if c.MADScale <= 0 {
		return errors.Errorf("mad scale %f, must be positive", c.MADScale)
	}
	if c.ConvergenceTol < 0 || c.ConvergenceTol > 1 {
		return errors.Errorf("convergence tolerance %f outside [0,1]", c.ConvergenceTol)
	}
	if c.CountWeight < 0 || c.OverlapWeight < 0 {
		return errors.New("base score weights must be non-negative")
	}
	if c.CountWeight+c.OverlapWeight <= 0 {
		return errors.New("base score weights must not both be zero")
	}
	if c.VariancePenaltyCap < 0 {
		return errors.Errorf("variance penalty cap %f, must be non-negative", c.VariancePenaltyCap)
	}
	if c.AgreementWeight < 0 || c.RetentionWeight < 0 ||
		c.TightnessWeight < 0 || c.ConvergenceWeight < 0 {
		return errors.New("stability weights must be non-negative")
	}
	if c.SkipBoxThreshold < 0 || c.SkipBoxThreshold > 1 {
		return errors.Errorf("skip box threshold %f outside [0,1]", c.SkipBoxThreshold)
	}
	return nil
}
