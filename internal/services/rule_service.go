package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"torqbay/internal/caching"
	"torqbay/internal/catalog"
	"torqbay/internal/common"
	"torqbay/internal/models"
	"torqbay/internal/repositories"
)

// RuleServiceInterface is the admin surface for installation price rules.
type RuleServiceInterface interface {
	UpsertRule(ctx context.Context, rule *models.InstallationRule) error
	ListRules(ctx context.Context, limit, offset int) ([]*models.InstallationRule, error)
	DeactivateRule(ctx context.Context, id uuid.UUID) error
}

type ruleService struct {
	ruleRepo repositories.InstallationRuleRepository
	index    *catalog.Index
	cacheSvc caching.CacheService
}

// NewRuleService creates a new installation rule service instance
func NewRuleService(ruleRepo repositories.InstallationRuleRepository, index *catalog.Index, cacheSvc caching.CacheService) RuleServiceInterface {
	return &ruleService{
		ruleRepo: ruleRepo,
		index:    index,
		cacheSvc: cacheSvc,
	}
}

// UpsertRule validates the key triple against the category tree and writes
// the rule. Writing the same key twice replaces the earlier rule.
func (s *ruleService) UpsertRule(ctx context.Context, rule *models.InstallationRule) error {
	if rule == nil {
		return fmt.Errorf("%w: rule is required", common.ErrInvalidInput)
	}
	if err := common.ValidateRequiredString(rule.Category, "category"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	if _, ok := s.index.GetLineage(rule.Category); !ok {
		return fmt.Errorf("%w: unknown category %q", common.ErrInvalidInput, rule.Category)
	}
	if rule.SubCategory != nil {
		if _, ok := s.index.GetLineage(*rule.SubCategory); !ok {
			return fmt.Errorf("%w: unknown sub-category %q", common.ErrInvalidInput, *rule.SubCategory)
		}
	}
	if rule.SubSubCategory != nil {
		if rule.SubCategory == nil {
			return fmt.Errorf("%w: sub-sub-category requires a sub-category", common.ErrInvalidInput)
		}
		if _, ok := s.index.GetLineage(*rule.SubSubCategory); !ok {
			return fmt.Errorf("%w: unknown sub-sub-category %q", common.ErrInvalidInput, *rule.SubSubCategory)
		}
	}
	if len(rule.SegmentRates) == 0 {
		return fmt.Errorf("%w: rule needs at least one segment rate", common.ErrInvalidInput)
	}
	for segment, rate := range rule.SegmentRates {
		if !models.ValidSegment(segment) {
			return fmt.Errorf("%w: unknown segment %q", common.ErrInvalidInput, segment)
		}
		// Zero is allowed: an explicit rate of 0 means free installation.
		if rate < 0 {
			return fmt.Errorf("%w: rate for %s cannot be negative", common.ErrInvalidInput, segment)
		}
	}

	if err := s.ruleRepo.Upsert(ctx, rule); err != nil {
		return fmt.Errorf("failed to save rule: %w", err)
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *ruleService) ListRules(ctx context.Context, limit, offset int) ([]*models.InstallationRule, error) {
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	return s.ruleRepo.List(ctx, limit, offset)
}

func (s *ruleService) DeactivateRule(ctx context.Context, id uuid.UUID) error {
	if err := s.ruleRepo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("failed to deactivate rule: %w", err)
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *ruleService) invalidateCache(ctx context.Context) {
	if s.cacheSvc == nil {
		return
	}
	if err := s.cacheSvc.InvalidateRules(ctx); err != nil {
		log.Printf("WARN: failed to invalidate rule cache: %v", err)
	}
}
