// Package attainment computes course and program outcome attainment from raw
// assessment marks. Every function is pure: callers supply entity snapshots
// and a Policy, and receive results without any storage side effects.
package attainment

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/noah-isme/obe-attainment-api/internal/models"
	appErrors "github.com/noah-isme/obe-attainment-api/pkg/errors"
)

// MaxLevel is the highest attainment level.
const MaxLevel = 3

// TypeWeights are the relative weights of internal and external assessments in a blended percent.
type TypeWeights struct {
	Internal float64 `json:"internal"`
	External float64 `json:"external"`
}

// Policy is the institution-specific rule set applied to a calculation.
type Policy struct {
	// TargetPercent is the score a student must reach on a question to count as meeting it.
	TargetPercent float64 `json:"targetPercent"`
	// LevelThresholds are the ascending lower bounds of levels 1, 2 and 3.
	LevelThresholds [MaxLevel]float64 `json:"levelThresholds"`
	TypeWeights     TypeWeights       `json:"assessmentTypeWeights"`
}

// DefaultPolicy returns the documented defaults: a 60% target, cut points at
// target-10, target and target+10, and a 40/60 internal/external split.
func DefaultPolicy() Policy {
	return Policy{
		TargetPercent:   60,
		LevelThresholds: [MaxLevel]float64{50, 60, 70},
		TypeWeights:     TypeWeights{Internal: 40, External: 60},
	}
}

// Validate rejects policies the engine cannot apply consistently.
func (p Policy) Validate() error {
	if !finite(p.TargetPercent) || p.TargetPercent <= 0 || p.TargetPercent > 100 {
		return appErrors.Clone(appErrors.ErrValidation, "target percent must be within (0, 100]")
	}
	prev := math.Inf(-1)
	for _, cut := range p.LevelThresholds {
		if !finite(cut) || cut < 0 || cut > 100 {
			return appErrors.Clone(appErrors.ErrValidation, "level thresholds must be within [0, 100]")
		}
		if cut <= prev {
			return appErrors.Clone(appErrors.ErrValidation, "level thresholds must be strictly ascending")
		}
		prev = cut
	}
	w := p.TypeWeights
	if !finite(w.Internal) || !finite(w.External) || w.Internal < 0 || w.External < 0 {
		return appErrors.Clone(appErrors.ErrValidation, "assessment type weights must be non-negative")
	}
	if w.Internal+w.External <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "assessment type weights must not both be zero")
	}
	return nil
}

// Level maps a percent to a discrete attainment level. A percent equal to a
// cut point belongs to the higher level.
func (p Policy) Level(percent float64) int {
	for i := MaxLevel - 1; i >= 0; i-- {
		if percent >= p.LevelThresholds[i] {
			return i + 1
		}
	}
	return 0
}

// Weight returns the blend weight for an assessment category.
func (p Policy) Weight(category models.AssessmentCategory) float64 {
	switch category {
	case models.AssessmentCategoryInternal:
		return p.TypeWeights.Internal
	case models.AssessmentCategoryExternal:
		return p.TypeWeights.External
	default:
		return 0
	}
}

// Fingerprint renders the policy as a compact, stable string for cache keys.
func (p Policy) Fingerprint() string {
	cuts := make([]string, len(p.LevelThresholds))
	for i, cut := range p.LevelThresholds {
		cuts[i] = formatNumber(cut)
	}
	return fmt.Sprintf("t%s|l%s|w%s,%s",
		formatNumber(p.TargetPercent),
		strings.Join(cuts, ","),
		formatNumber(p.TypeWeights.Internal),
		formatNumber(p.TypeWeights.External))
}

// Round rounds a percent to two decimals, half to even.
func Round(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func invalidInput(format string, args ...interface{}) error {
	return appErrors.Clone(appErrors.ErrInvalidInput, fmt.Sprintf(format, args...))
}
