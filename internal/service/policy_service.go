package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/obe-attainment-api/internal/attainment"
	"github.com/noah-isme/obe-attainment-api/internal/dto"
	"github.com/noah-isme/obe-attainment-api/pkg/config"
	appErrors "github.com/noah-isme/obe-attainment-api/pkg/errors"
)

// PolicyService resolves the effective attainment policy of a request from the
// configured defaults and the caller's overrides.
type PolicyService struct {
	defaults  attainment.Policy
	validator *validator.Validate
}

// NewPolicyService constructs a PolicyService. The defaults must be valid.
func NewPolicyService(defaults attainment.Policy, validate *validator.Validate) (*PolicyService, error) {
	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("default attainment policy: %w", err)
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PolicyService{defaults: defaults, validator: validate}, nil
}

// PolicyFromConfig converts configuration into a policy.
func PolicyFromConfig(cfg config.AttainmentConfig) (attainment.Policy, error) {
	if len(cfg.LevelThresholds) != attainment.MaxLevel {
		return attainment.Policy{}, fmt.Errorf("expected %d level thresholds, got %d", attainment.MaxLevel, len(cfg.LevelThresholds))
	}
	policy := attainment.Policy{
		TargetPercent: cfg.TargetPercent,
		TypeWeights:   attainment.TypeWeights{Internal: cfg.InternalWeight, External: cfg.ExternalWeight},
	}
	copy(policy.LevelThresholds[:], cfg.LevelThresholds)
	return policy, nil
}

// Defaults returns the configured policy.
func (s *PolicyService) Defaults() attainment.Policy {
	return s.defaults
}

// Resolve applies overrides on top of the defaults and validates the result.
func (s *PolicyService) Resolve(overrides dto.PolicyOverrides) (attainment.Policy, error) {
	if err := s.validator.Struct(overrides); err != nil {
		return attainment.Policy{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid policy overrides")
	}

	policy := s.defaults
	if overrides.TargetPercent != nil {
		policy.TargetPercent = *overrides.TargetPercent
	}
	if overrides.InternalWeight != nil {
		policy.TypeWeights.Internal = *overrides.InternalWeight
	}
	if overrides.ExternalWeight != nil {
		policy.TypeWeights.External = *overrides.ExternalWeight
	}
	if raw := strings.TrimSpace(overrides.Thresholds); raw != "" {
		thresholds, err := parseThresholds(raw)
		if err != nil {
			return attainment.Policy{}, err
		}
		policy.LevelThresholds = thresholds
	}

	if err := policy.Validate(); err != nil {
		return attainment.Policy{}, err
	}
	return policy, nil
}

func parseThresholds(raw string) ([attainment.MaxLevel]float64, error) {
	var out [attainment.MaxLevel]float64
	parts := strings.Split(raw, ",")
	if len(parts) != attainment.MaxLevel {
		return out, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("thresholds must list %d comma separated values", attainment.MaxLevel))
	}
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return out, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("threshold %q is not a number", part))
		}
		out[i] = v
	}
	return out, nil
}
