package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"torqbay/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InstallationRuleRepository stores category-level installation price tables.
// Lookups are exact-match on the (category, sub_category, sub_sub_category)
// triple; fallback across specificity levels belongs to the resolver, not
// the store.
type InstallationRuleRepository interface {
	// FindRule returns the single active rule whose key triple exactly
	// matches, with nil levels matched against NULL. Nil result, nil error
	// means no rule exists for the key.
	FindRule(ctx context.Context, category string, subCategory, subSubCategory *string) (*models.InstallationRule, error)
	// Upsert writes a rule; an existing rule with the same key triple is
	// replaced. Idempotent by key.
	Upsert(ctx context.Context, rule *models.InstallationRule) error
	List(ctx context.Context, limit, offset int) ([]*models.InstallationRule, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type installationRuleRepo struct {
	db DB
}

func NewInstallationRuleRepo(db DB) InstallationRuleRepository {
	return &installationRuleRepo{db: db}
}

const ruleColumns = `id, category, sub_category, sub_sub_category, segment_rates, is_active, created_at, updated_at`

func (r *installationRuleRepo) scanRule(row pgx.Row) (*models.InstallationRule, error) {
	rule := &models.InstallationRule{}
	var rates []byte
	err := row.Scan(&rule.ID, &rule.Category, &rule.SubCategory, &rule.SubSubCategory,
		&rates, &rule.IsActive, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(rates) > 0 {
		if err := json.Unmarshal(rates, &rule.SegmentRates); err != nil {
			return nil, fmt.Errorf("decode segment rates: %w", err)
		}
	}
	return rule, nil
}

func (r *installationRuleRepo) FindRule(ctx context.Context, category string, subCategory, subSubCategory *string) (*models.InstallationRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM installation_rules
		WHERE category = $1
		  AND sub_category IS NOT DISTINCT FROM $2
		  AND sub_sub_category IS NOT DISTINCT FROM $3
		  AND is_active = TRUE
	`
	rule, err := r.scanRule(r.db.QueryRow(ctx, query, category, subCategory, subSubCategory))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return rule, err
}

func (r *installationRuleRepo) Upsert(ctx context.Context, rule *models.InstallationRule) error {
	rates, err := json.Marshal(rule.SegmentRates)
	if err != nil {
		return err
	}
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	// Unique expression index on (category, COALESCE(sub_category, ''),
	// COALESCE(sub_sub_category, '')) backs the conflict target; NULL levels
	// would otherwise never conflict.
	query := `
		INSERT INTO installation_rules (id, category, sub_category, sub_sub_category, segment_rates, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (category, COALESCE(sub_category, ''), COALESCE(sub_sub_category, ''))
		DO UPDATE SET segment_rates = EXCLUDED.segment_rates, is_active = EXCLUDED.is_active, updated_at = NOW()
	`
	_, err = r.db.Exec(ctx, query, rule.ID, rule.Category, rule.SubCategory, rule.SubSubCategory, rates, rule.IsActive)
	return err
}

func (r *installationRuleRepo) List(ctx context.Context, limit, offset int) ([]*models.InstallationRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM installation_rules
		ORDER BY category, sub_category NULLS FIRST, sub_sub_category NULLS FIRST
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*models.InstallationRule
	for rows.Next() {
		rule, err := r.scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *installationRuleRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE installation_rules SET is_active = FALSE, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
