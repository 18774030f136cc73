package dto

// PolicyOverrides are optional per-request changes to the configured
// attainment policy. Thresholds is a comma separated list of three ascending
// level cut points, e.g. "50,60,70".
type PolicyOverrides struct {
	TargetPercent  *float64 `form:"targetPercent" json:"targetPercent,omitempty" validate:"omitempty,gt=0,lte=100"`
	Thresholds     string   `form:"thresholds" json:"thresholds,omitempty" validate:"omitempty,max=64"`
	InternalWeight *float64 `form:"internalWeight" json:"internalWeight,omitempty" validate:"omitempty,gte=0"`
	ExternalWeight *float64 `form:"externalWeight" json:"externalWeight,omitempty" validate:"omitempty,gte=0"`
}

// CourseAttainmentQuery are the query parameters of the course endpoints.
type CourseAttainmentQuery struct {
	SectionID string `form:"sectionId" validate:"omitempty,max=64"`
	PolicyOverrides
}

// ProgramAttainmentQuery are the query parameters of the program endpoints.
type ProgramAttainmentQuery struct {
	PolicyOverrides
}

// PurgeCacheQuery narrows a cache purge to one course or program.
type PurgeCacheQuery struct {
	ID string `form:"id" validate:"omitempty,max=64"`
}
