package attainment

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/obe-attainment-api/internal/models"
	appErrors "github.com/noah-isme/obe-attainment-api/pkg/errors"
)

func TestPolicyLevelBoundaries(t *testing.T) {
	p := DefaultPolicy()
	cases := []struct {
		percent float64
		level   int
	}{
		{0, 0},
		{49.99, 0},
		{50, 1},
		{59.99, 1},
		{60, 2},
		{69.99, 2},
		{70, 3},
		{100, 3},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.level, p.Level(tc.percent), "percent %v", tc.percent)
	}
}

func TestPolicyValidate(t *testing.T) {
	require.NoError(t, DefaultPolicy().Validate())

	invalid := map[string]func(p *Policy){
		"zero target":       func(p *Policy) { p.TargetPercent = 0 },
		"target above 100":  func(p *Policy) { p.TargetPercent = 101 },
		"nan target":        func(p *Policy) { p.TargetPercent = math.NaN() },
		"equal cut points":  func(p *Policy) { p.LevelThresholds = [3]float64{50, 50, 70} },
		"descending cuts":   func(p *Policy) { p.LevelThresholds = [3]float64{70, 60, 50} },
		"cut above 100":     func(p *Policy) { p.LevelThresholds = [3]float64{50, 60, 101} },
		"negative weight":   func(p *Policy) { p.TypeWeights.Internal = -1 },
		"both weights zero": func(p *Policy) { p.TypeWeights = TypeWeights{} },
		"infinite weight":   func(p *Policy) { p.TypeWeights.External = math.Inf(1) },
	}
	for name, mutate := range invalid {
		p := DefaultPolicy()
		mutate(&p)
		err := p.Validate()
		require.Error(t, err, name)
		assert.True(t, appErrors.Is(err, appErrors.ErrValidation), name)
	}
}

func TestPolicyWeightAndFingerprint(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, 40.0, p.Weight(models.AssessmentCategoryInternal))
	assert.Equal(t, 60.0, p.Weight(models.AssessmentCategoryExternal))
	assert.Equal(t, 0.0, p.Weight("OTHER"))
	assert.Equal(t, "t60|l50,60,70|w40,60", p.Fingerprint())

	p.TargetPercent = 62.5
	assert.Equal(t, "t62.5|l50,60,70|w40,60", p.Fingerprint())
}

func TestRound(t *testing.T) {
	assert.Equal(t, 66.67, Round(200.0/3))
	assert.Equal(t, 75.0, Round(75))
	assert.Equal(t, 0.12, Round(0.125))
}
