package attainment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/obe-attainment-api/internal/models"
	appErrors "github.com/noah-isme/obe-attainment-api/pkg/errors"
)

func coResult(id, code string, percent float64, available bool) models.CoAttainmentResult {
	r := models.CoAttainmentResult{COID: id, Code: code, DataAvailable: available}
	if available {
		r.Percent = percent
		r.Level = DefaultPolicy().Level(percent)
	}
	return r
}

func programOutcomes(codes ...string) []models.ProgramOutcome {
	out := make([]models.ProgramOutcome, 0, len(codes))
	for _, code := range codes {
		out = append(out, models.ProgramOutcome{ID: "id-" + code, ProgramID: "prog-1", Code: code})
	}
	return out
}

func TestResolveProgramOutcomesWeightedAverage(t *testing.T) {
	in := ProgramInput{
		Outcomes: programOutcomes("PO1"),
		Courses: []CourseResults{{
			Course:  models.Course{ID: "c1", Code: "CS101"},
			Results: []models.CoAttainmentResult{coResult("co1", "CO1", 90, true), coResult("co2", "CO2", 30, true)},
		}},
		Mappings: []models.CoPoMapping{{COID: "co2", POID: "id-PO1", Level: 1}, {COID: "co1", POID: "id-PO1", Level: 3}},
	}

	results, err := ResolveProgramOutcomes(in, DefaultPolicy())
	require.NoError(t, err)
	require.Len(t, results, 1)

	po := results[0]
	assert.True(t, po.DataAvailable)
	assert.Equal(t, 75.0, po.Percent)
	assert.Equal(t, 3, po.Level)
	require.Len(t, po.Contributors, 2)
	assert.Equal(t, "CO1", po.Contributors[0].COCode)
	assert.Equal(t, 3, po.Contributors[0].MappingLevel)
	assert.Equal(t, "CS101", po.Contributors[1].CourseCode)
}

func TestResolveProgramOutcomesEqualPercentIgnoresMappingLevels(t *testing.T) {
	const p = 63.33
	results := []models.CoAttainmentResult{coResult("co1", "CO1", p, true), coResult("co2", "CO2", p, true), coResult("co3", "CO3", p, true)}
	distributions := [][3]int{{1, 1, 1}, {1, 2, 3}, {3, 3, 1}, {2, 1, 3}}
	for _, levels := range distributions {
		in := ProgramInput{
			Outcomes: programOutcomes("PO1"),
			Courses:  []CourseResults{{Course: models.Course{Code: "CS"}, Results: results}},
			Mappings: []models.CoPoMapping{
				{COID: "co1", POID: "id-PO1", Level: levels[0]},
				{COID: "co2", POID: "id-PO1", Level: levels[1]},
				{COID: "co3", POID: "id-PO1", Level: levels[2]},
			},
		}
		out, err := ResolveProgramOutcomes(in, DefaultPolicy())
		require.NoError(t, err)
		assert.Equal(t, p, out[0].Percent, "levels %v", levels)
	}
}

func TestResolveProgramOutcomesExcludesUnavailableCOs(t *testing.T) {
	in := ProgramInput{
		Outcomes: programOutcomes("PO2", "PO1"),
		Courses: []CourseResults{
			{Course: models.Course{Code: "MA201"}, Results: []models.CoAttainmentResult{coResult("co1", "CO1", 90, true)}},
			{Course: models.Course{Code: "CS101"}, Results: []models.CoAttainmentResult{coResult("co2", "CO1", 0, false)}},
		},
		Mappings: []models.CoPoMapping{
			{COID: "co1", POID: "id-PO1", Level: 1},
			{COID: "co2", POID: "id-PO1", Level: 3},
			{COID: "co2", POID: "id-PO2", Level: 2},
			{COID: "foreign", POID: "id-PO2", Level: 3},
		},
	}

	results, err := ResolveProgramOutcomes(in, DefaultPolicy())
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "PO1", results[0].Code)
	assert.Equal(t, 90.0, results[0].Percent)
	assert.Len(t, results[0].Contributors, 1)

	assert.Equal(t, "PO2", results[1].Code)
	assert.False(t, results[1].DataAvailable)
	assert.Equal(t, 0, results[1].Level)
	assert.Equal(t, 0.0, results[1].Percent)
	assert.NotNil(t, results[1].Contributors)
	assert.Empty(t, results[1].Contributors)
}

func TestResolveProgramOutcomesContributorOrderIsStable(t *testing.T) {
	in := ProgramInput{
		Outcomes: programOutcomes("PO1"),
		Courses: []CourseResults{
			{Course: models.Course{Code: "MA201"}, Results: []models.CoAttainmentResult{coResult("m1", "CO1", 80, true), coResult("m2", "CO2", 70, true)}},
			{Course: models.Course{Code: "CS101"}, Results: []models.CoAttainmentResult{coResult("c1", "CO1", 60, true)}},
		},
		Mappings: []models.CoPoMapping{
			{COID: "m2", POID: "id-PO1", Level: 2},
			{COID: "m1", POID: "id-PO1", Level: 2},
			{COID: "c1", POID: "id-PO1", Level: 2},
		},
	}

	results, err := ResolveProgramOutcomes(in, DefaultPolicy())
	require.NoError(t, err)
	got := make([]string, 0, 3)
	for _, c := range results[0].Contributors {
		got = append(got, c.COCode+"@"+c.CourseCode)
	}
	assert.Equal(t, []string{"CO1@CS101", "CO1@MA201", "CO2@MA201"}, got)
	assert.Equal(t, 70.0, results[0].Percent)
}

func TestResolveProgramOutcomesRejectsBadMappings(t *testing.T) {
	for _, level := range []int{0, 4, -1} {
		_, err := ResolveProgramOutcomes(ProgramInput{
			Outcomes: programOutcomes("PO1"),
			Mappings: []models.CoPoMapping{{COID: "co1", POID: "id-PO1", Level: level}},
		}, DefaultPolicy())
		require.Error(t, err)
		assert.True(t, appErrors.Is(err, appErrors.ErrInvalidInput), "level %d", level)
	}

	_, err := ResolveProgramOutcomes(ProgramInput{
		Outcomes: programOutcomes("PO1"),
		Mappings: []models.CoPoMapping{{COID: "co1", POID: "id-PO1", Level: 1}, {COID: "co1", POID: "id-PO1", Level: 2}},
	}, DefaultPolicy())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidInput))
}
