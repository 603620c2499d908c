package repositories

import (
	"context"
	"testing"
	"time"

	"retailops/internal/models"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

var orderRuleRowColumns = []string{
	"id", "rule_type", "prod_no", "manufacturer_id", "category_no", "cannot_order",
	"shipped_as_case", "min_order_amount", "min_case_quantity", "notes",
	"effective_start_date", "effective_end_date",
}

type OrderRuleRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    OrderRuleRepository
	context context.Context
	asOf    time.Time
	start   time.Time
}

func (suite *OrderRuleRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewOrderRuleRepo(mock)
	suite.context = context.Background()
	suite.asOf = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	suite.start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

func (suite *OrderRuleRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestOrderRuleRepoTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRuleRepoTestSuite))
}

func (suite *OrderRuleRepoTestSuite) productRuleRow(rows *pgxmock.Rows, id int64, prodNo int64) *pgxmock.Rows {
	return rows.AddRow(id, models.RuleTypeProduct, &prodNo, nil, nil, false,
		true, nil, nil, nil, suite.start, models.RuleEffectiveEndSentinel)
}

func (suite *OrderRuleRepoTestSuite) TestFindActiveForProduct_SingleRule() {
	rows := suite.productRuleRow(pgxmock.NewRows(orderRuleRowColumns), 1, 100001)
	suite.mock.ExpectQuery(`SELECT .+\s+FROM order_rules\s+WHERE rule_type = \$1 AND prod_no = \$2 AND effective_start_date <= \$3 AND effective_end_date >= \$3`).
		WithArgs(models.RuleTypeProduct, int64(100001), suite.asOf).
		WillReturnRows(rows)

	rules, err := suite.repo.FindActiveForProduct(suite.context, 100001, suite.asOf)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), rules, 1)
	assert.Equal(suite.T(), int64(1), rules[0].ID)
	assert.True(suite.T(), rules[0].ShippedAsCase)
	assert.Equal(suite.T(), int64(100001), *rules[0].ProdNo)
}

func (suite *OrderRuleRepoTestSuite) TestFindActiveForProduct_AllOverlappingRulesReturned() {
	rows := pgxmock.NewRows(orderRuleRowColumns)
	rows = suite.productRuleRow(rows, 1, 100001)
	rows = suite.productRuleRow(rows, 2, 100001)
	suite.mock.ExpectQuery(`SELECT .+\s+FROM order_rules\s+WHERE rule_type = \$1 AND prod_no = \$2`).
		WithArgs(models.RuleTypeProduct, int64(100001), suite.asOf).
		WillReturnRows(rows)

	rules, err := suite.repo.FindActiveForProduct(suite.context, 100001, suite.asOf)
	assert.NoError(suite.T(), err)
	// Overlap detection is the caller's job; both rules come back, id ascending.
	assert.Len(suite.T(), rules, 2)
	assert.Equal(suite.T(), int64(1), rules[0].ID)
	assert.Equal(suite.T(), int64(2), rules[1].ID)
}

func (suite *OrderRuleRepoTestSuite) TestFindActiveForCategory_NoRules() {
	suite.mock.ExpectQuery(`SELECT .+\s+FROM order_rules\s+WHERE rule_type = \$1 AND category_no = \$2`).
		WithArgs(models.RuleTypeCategory, "000011", suite.asOf).
		WillReturnRows(pgxmock.NewRows(orderRuleRowColumns))

	rules, err := suite.repo.FindActiveForCategory(suite.context, "000011", suite.asOf)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), rules)
}

func (suite *OrderRuleRepoTestSuite) TestFindActiveForManufacturer_WindowArgs() {
	minAmount := int64(5000)
	mfrID := int64(7)
	rows := pgxmock.NewRows(orderRuleRowColumns).
		AddRow(int64(3), models.RuleTypeManufacturer, nil, &mfrID, nil, false,
			false, &minAmount, nil, nil, suite.start, models.RuleEffectiveEndSentinel)
	suite.mock.ExpectQuery(`SELECT .+\s+FROM order_rules\s+WHERE rule_type = \$1 AND manufacturer_id = \$2`).
		WithArgs(models.RuleTypeManufacturer, mfrID, suite.asOf).
		WillReturnRows(rows)

	rules, err := suite.repo.FindActiveForManufacturer(suite.context, mfrID, suite.asOf)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), rules, 1)
	assert.Equal(suite.T(), int64(5000), *rules[0].MinOrderAmount)
}

func (suite *OrderRuleRepoTestSuite) TestFindConflicts() {
	rows := pgxmock.NewRows([]string{"rule_type", "subject", "rule_count"}).
		AddRow(models.RuleTypeProduct, "100001", 2).
		AddRow(models.RuleTypeCategory, "000011", 3)
	suite.mock.ExpectQuery(`SELECT rule_type, COALESCE\(prod_no::text, COALESCE\(manufacturer_id::text, category_no\)\) AS subject, COUNT\(\*\) AS rule_count`).
		WithArgs(suite.asOf).
		WillReturnRows(rows)

	conflicts, err := suite.repo.FindConflicts(suite.context, suite.asOf)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), conflicts, 2)
	assert.Equal(suite.T(), models.RuleTypeProduct, conflicts[0].Type)
	assert.Equal(suite.T(), "100001", conflicts[0].Subject)
	assert.Equal(suite.T(), 2, conflicts[0].RuleCount)
	assert.Equal(suite.T(), models.RuleTypeCategory, conflicts[1].Type)
}

func (suite *OrderRuleRepoTestSuite) TestCreate_ReturnsGeneratedID() {
	prodNo := int64(100001)
	rule := &models.OrderRule{
		Type:               models.RuleTypeProduct,
		ProdNo:             &prodNo,
		ShippedAsCase:      true,
		EffectiveStartDate: suite.start,
		EffectiveEndDate:   models.RuleEffectiveEndSentinel,
	}

	suite.mock.ExpectQuery(`INSERT INTO order_rules`).
		WithArgs(rule.Type, rule.ProdNo, rule.ManufacturerID, rule.CategoryNo, rule.CannotOrder, rule.ShippedAsCase, rule.MinOrderAmount, rule.MinCaseQuantity, rule.Notes, rule.EffectiveStartDate, rule.EffectiveEndDate).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

	err := suite.repo.Create(suite.context, rule)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(42), rule.ID)
}

func (suite *OrderRuleRepoTestSuite) TestDelete() {
	suite.mock.ExpectExec(`DELETE FROM order_rules WHERE id = \$1`).
		WithArgs(int64(42)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := suite.repo.Delete(suite.context, 42)
	assert.NoError(suite.T(), err)
}
