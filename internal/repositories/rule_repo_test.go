package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"torqbay/internal/models"
)

func stringPtr(s string) *string { return &s }

type RuleRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    InstallationRuleRepository
	context context.Context
}

func (suite *RuleRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewInstallationRuleRepo(mock)
	suite.context = context.Background()
}

func (suite *RuleRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestRuleRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RuleRepoTestSuite))
}

func ruleRows(rule *models.InstallationRule, rates string) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "category", "sub_category", "sub_sub_category", "segment_rates", "is_active", "created_at", "updated_at",
	}).AddRow(rule.ID, rule.Category, rule.SubCategory, rule.SubSubCategory, []byte(rates), rule.IsActive, time.Now(), time.Now())
}

func (suite *RuleRepoTestSuite) TestFindRule_ExactMatchWithSubCategory() {
	rule := &models.InstallationRule{
		ID:          uuid.New(),
		Category:    "seat-covers",
		SubCategory: stringPtr("seat-covers-leatherette"),
		IsActive:    true,
	}

	suite.mock.ExpectQuery(`FROM installation_rules`).
		WithArgs("seat-covers", rule.SubCategory, (*string)(nil)).
		WillReturnRows(ruleRows(rule, `{"Sedan": 1500, "SUV": 2000}`))

	found, err := suite.repo.FindRule(suite.context, "seat-covers", rule.SubCategory, nil)
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), found)
	assert.Equal(suite.T(), rule.ID, found.ID)
	assert.Equal(suite.T(), 1500.0, found.SegmentRates[models.SegmentSedan])
	assert.Equal(suite.T(), 2000.0, found.SegmentRates[models.SegmentSUV])
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *RuleRepoTestSuite) TestFindRule_CategoryLevelKeyUsesNulls() {
	rule := &models.InstallationRule{
		ID:       uuid.New(),
		Category: "alloy-wheels",
		IsActive: true,
	}

	suite.mock.ExpectQuery(`FROM installation_rules`).
		WithArgs("alloy-wheels", (*string)(nil), (*string)(nil)).
		WillReturnRows(ruleRows(rule, `{"Hatchback": 400}`))

	found, err := suite.repo.FindRule(suite.context, "alloy-wheels", nil, nil)
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), found)
	assert.Nil(suite.T(), found.SubCategory)
	assert.Nil(suite.T(), found.SubSubCategory)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *RuleRepoTestSuite) TestFindRule_NoRowIsNotAnError() {
	suite.mock.ExpectQuery(`FROM installation_rules`).
		WithArgs("horns", (*string)(nil), (*string)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "category", "sub_category", "sub_sub_category", "segment_rates", "is_active", "created_at", "updated_at",
		}))

	found, err := suite.repo.FindRule(suite.context, "horns", nil, nil)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), found)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *RuleRepoTestSuite) TestUpsert_AssignsIDAndWrites() {
	rule := &models.InstallationRule{
		Category:     "seat-covers",
		SubCategory:  stringPtr("seat-covers-leatherette"),
		SegmentRates: map[models.Segment]float64{models.SegmentSedan: 1500},
		IsActive:     true,
	}

	suite.mock.ExpectExec(`INSERT INTO installation_rules`).
		WithArgs(pgxmock.AnyArg(), rule.Category, rule.SubCategory, (*string)(nil), pgxmock.AnyArg(), true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Upsert(suite.context, rule)
	require.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), uuid.Nil, rule.ID)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *RuleRepoTestSuite) TestUpsert_SecondWriteSameKeySucceeds() {
	rule := &models.InstallationRule{
		ID:           uuid.New(),
		Category:     "floor-mats",
		SegmentRates: map[models.Segment]float64{models.SegmentSUV: 350},
		IsActive:     true,
	}

	// Replay of the same key conflicts and updates in place.
	suite.mock.ExpectExec(`INSERT INTO installation_rules`).
		WithArgs(rule.ID, rule.Category, (*string)(nil), (*string)(nil), pgxmock.AnyArg(), true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO installation_rules`).
		WithArgs(rule.ID, rule.Category, (*string)(nil), (*string)(nil), pgxmock.AnyArg(), true).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(suite.T(), suite.repo.Upsert(suite.context, rule))
	require.NoError(suite.T(), suite.repo.Upsert(suite.context, rule))
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *RuleRepoTestSuite) TestDeactivate() {
	id := uuid.New()
	suite.mock.ExpectExec(`UPDATE installation_rules SET is_active = FALSE`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.Deactivate(suite.context, id)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *RuleRepoTestSuite) TestList() {
	broad := &models.InstallationRule{ID: uuid.New(), Category: "seat-covers", IsActive: true}
	narrow := &models.InstallationRule{
		ID:          uuid.New(),
		Category:    "seat-covers",
		SubCategory: stringPtr("seat-covers-fabric"),
		IsActive:    true,
	}

	rows := pgxmock.NewRows([]string{
		"id", "category", "sub_category", "sub_sub_category", "segment_rates", "is_active", "created_at", "updated_at",
	}).
		AddRow(broad.ID, broad.Category, broad.SubCategory, broad.SubSubCategory, []byte(`{"Sedan": 1000}`), true, time.Now(), time.Now()).
		AddRow(narrow.ID, narrow.Category, narrow.SubCategory, narrow.SubSubCategory, []byte(`{"Sedan": 800}`), true, time.Now(), time.Now())

	suite.mock.ExpectQuery(`FROM installation_rules`).
		WithArgs(50, 0).
		WillReturnRows(rows)

	rules, err := suite.repo.List(suite.context, 50, 0)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), rules, 2)
	assert.Equal(suite.T(), broad.ID, rules[0].ID)
	assert.Equal(suite.T(), 800.0, rules[1].SegmentRates[models.SegmentSedan])
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}
