package attainment

import (
	"sort"

	"github.com/noah-isme/obe-attainment-api/internal/models"
)

// CourseResults pairs a course of the program with its resolved CO attainment.
type CourseResults struct {
	Course  models.Course
	Results []models.CoAttainmentResult
}

// ProgramInput is the data snapshot needed to resolve the POs of one program.
type ProgramInput struct {
	Outcomes []models.ProgramOutcome
	Courses  []CourseResults
	Mappings []models.CoPoMapping
}

type courseOutcomeRef struct {
	result     models.CoAttainmentResult
	courseCode string
}

// ResolveProgramOutcomes computes one PoAttainmentResult per program outcome as
// the mapping-level weighted average of the contributing CO percents. Only COs
// of the supplied courses with available data contribute. Results are ordered
// by PO code and contributors by CO code then course code.
func ResolveProgramOutcomes(in ProgramInput, policy Policy) ([]models.PoAttainmentResult, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	seen := make(map[[2]string]struct{}, len(in.Mappings))
	for _, m := range in.Mappings {
		if m.Level < 1 || m.Level > MaxLevel {
			return nil, invalidInput("mapping of CO %s to PO %s has level %d outside 1-%d", m.COID, m.POID, m.Level, MaxLevel)
		}
		key := [2]string{m.COID, m.POID}
		if _, dup := seen[key]; dup {
			return nil, invalidInput("duplicate mapping of CO %s to PO %s", m.COID, m.POID)
		}
		seen[key] = struct{}{}
	}

	cos := make(map[string]courseOutcomeRef)
	for _, course := range in.Courses {
		for _, r := range course.Results {
			cos[r.COID] = courseOutcomeRef{result: r, courseCode: course.Course.Code}
		}
	}

	contributors := make(map[string][]models.PoContributor, len(in.Outcomes))
	for _, m := range in.Mappings {
		ref, ok := cos[m.COID]
		if !ok || !ref.result.DataAvailable {
			continue
		}
		contributors[m.POID] = append(contributors[m.POID], models.PoContributor{
			COID:         m.COID,
			COCode:       ref.result.Code,
			CourseCode:   ref.courseCode,
			MappingLevel: m.Level,
			Percent:      ref.result.Percent,
		})
	}

	results := make([]models.PoAttainmentResult, 0, len(in.Outcomes))
	for _, po := range in.Outcomes {
		list := contributors[po.ID]
		sortContributors(list)

		result := models.PoAttainmentResult{
			POID:         po.ID,
			Code:         po.Code,
			Description:  po.Description,
			Contributors: list,
		}
		if result.Contributors == nil {
			result.Contributors = []models.PoContributor{}
		}

		weighted, levels := 0.0, 0
		for _, c := range list {
			weighted += float64(c.MappingLevel) * c.Percent
			levels += c.MappingLevel
		}
		if levels > 0 {
			result.Percent = clampPercent(Round(weighted / float64(levels)))
			result.Level = policy.Level(result.Percent)
			result.DataAvailable = true
		}
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Code != results[j].Code {
			return results[i].Code < results[j].Code
		}
		return results[i].POID < results[j].POID
	})
	return results, nil
}

func sortContributors(list []models.PoContributor) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.COCode != b.COCode {
			return a.COCode < b.COCode
		}
		if a.CourseCode != b.CourseCode {
			return a.CourseCode < b.CourseCode
		}
		return a.COID < b.COID
	})
}
