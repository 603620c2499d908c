package services

import (
	"context"
	"testing"
	"time"

	"retailops/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type MockRuleResolver struct {
	mock.Mock
}

func (m *MockRuleResolver) ResolveProduct(ctx context.Context, prodNo int64) ([]*models.OrderRule, error) {
	args := m.Called(ctx, prodNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OrderRule), args.Error(1)
}

func (m *MockRuleResolver) ResolveManufacturer(ctx context.Context, mfrID int64) ([]*models.OrderRule, error) {
	args := m.Called(ctx, mfrID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OrderRule), args.Error(1)
}

func (m *MockRuleResolver) ResolveCategory(ctx context.Context, cateNo string) ([]*models.OrderRule, error) {
	args := m.Called(ctx, cateNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OrderRule), args.Error(1)
}

type OrderValidatorTestSuite struct {
	suite.Suite
	resolver  *MockRuleResolver
	validator OrderValidator
	ctx       context.Context
}

func (suite *OrderValidatorTestSuite) SetupTest() {
	suite.resolver = &MockRuleResolver{}
	suite.resolver.Test(suite.T())
	suite.validator = NewOrderValidator(suite.resolver, zap.NewNop())
	suite.ctx = context.Background()
}

func (suite *OrderValidatorTestSuite) TearDownTest() {
	suite.resolver.AssertExpectations(suite.T())
}

func TestOrderValidatorTestSuite(t *testing.T) {
	suite.Run(t, new(OrderValidatorTestSuite))
}

func caseProduct() *models.Product {
	return &models.Product{
		ProdNo:         100001,
		Name:           "Boxed Tea",
		CostPrice:      10,
		OuterQuantity:  2,
		InnerQuantity:  3,
		CategoryNo:     "000011",
		ManufacturerID: 7,
	}
}

func caseRule() *models.OrderRule {
	prodNo := int64(100001)
	return &models.OrderRule{
		ID:                 1,
		Type:               models.RuleTypeProduct,
		ProdNo:             &prodNo,
		ShippedAsCase:      true,
		EffectiveStartDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		EffectiveEndDate:   models.RuleEffectiveEndSentinel,
	}
}

func (suite *OrderValidatorTestSuite) expectNoGroupRules(p *models.Product) {
	suite.resolver.On("ResolveCategory", suite.ctx, p.CategoryNo).Return([]*models.OrderRule{}, nil)
	suite.resolver.On("ResolveManufacturer", suite.ctx, p.ManufacturerID).Return([]*models.OrderRule{}, nil)
}

func (suite *OrderValidatorTestSuite) TestWholeCaseQuantityPasses() {
	p := caseProduct()
	suite.resolver.On("ResolveProduct", suite.ctx, p.ProdNo).Return([]*models.OrderRule{caseRule()}, nil)
	suite.expectNoGroupRules(p)

	errs, err := suite.validator.Validate(suite.ctx, []OrderLine{{Product: p, Quantity: 6}})
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), errs)
}

func (suite *OrderValidatorTestSuite) TestPartialCaseQuantityFails() {
	p := caseProduct()
	suite.resolver.On("ResolveProduct", suite.ctx, p.ProdNo).Return([]*models.OrderRule{caseRule()}, nil)
	suite.expectNoGroupRules(p)

	errs, err := suite.validator.Validate(suite.ctx, []OrderLine{{Product: p, Quantity: 5}})
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), errs, 1)
	assert.Equal(suite.T(), models.ErrCodeNotAsCase, errs[0].Code)
	assert.Equal(suite.T(), p.ProdNo, errs[0].Obj)
	assert.Contains(suite.T(), errs[0].Message, "0.8333")
}

func (suite *OrderValidatorTestSuite) TestCaseMultiplesNeverFlagged() {
	p := caseProduct()
	suite.resolver.On("ResolveProduct", suite.ctx, p.ProdNo).Return([]*models.OrderRule{caseRule()}, nil)
	suite.resolver.On("ResolveCategory", suite.ctx, p.CategoryNo).Return([]*models.OrderRule{}, nil)
	suite.resolver.On("ResolveManufacturer", suite.ctx, p.ManufacturerID).Return([]*models.OrderRule{}, nil)

	for _, multiple := range []int{1, 2, 5, 40} {
		qty := multiple * p.CaseSize()
		errs, err := suite.validator.Validate(suite.ctx, []OrderLine{{Product: p, Quantity: qty}})
		assert.NoError(suite.T(), err)
		assert.Empty(suite.T(), errs, "quantity %d is a whole number of cases", qty)
	}
}

func (suite *OrderValidatorTestSuite) TestNonPositiveQuantityReportsOnlyQuantityTooLow() {
	p := caseProduct()
	suite.expectNoGroupRules(p)

	errs, err := suite.validator.Validate(suite.ctx, []OrderLine{{Product: p, Quantity: 0}})
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), errs, 1)
	assert.Equal(suite.T(), models.ErrCodeQuantityTooLow, errs[0].Code)
}

func (suite *OrderValidatorTestSuite) TestAmbiguousProductRulesBlock() {
	p := caseProduct()
	other := caseProduct()
	other.ProdNo = 100002

	suite.resolver.On("ResolveProduct", suite.ctx, p.ProdNo).Return([]*models.OrderRule{caseRule(), caseRule()}, nil)
	suite.resolver.On("ResolveProduct", suite.ctx, other.ProdNo).Return([]*models.OrderRule{}, nil)
	suite.resolver.On("ResolveCategory", suite.ctx, p.CategoryNo).Return([]*models.OrderRule{}, nil)
	suite.resolver.On("ResolveManufacturer", suite.ctx, p.ManufacturerID).Return([]*models.OrderRule{}, nil)

	lines := []OrderLine{
		{Product: p, Quantity: 5},
		{Product: other, Quantity: 3},
	}
	errs, err := suite.validator.Validate(suite.ctx, lines)
	assert.NoError(suite.T(), err)

	// The ambiguous product reports multiple_rules and nothing else;
	// the rest of the batch is still validated.
	assert.Len(suite.T(), errs, 1)
	assert.Equal(suite.T(), models.ErrCodeMultipleRules, errs[0].Code)
	assert.Equal(suite.T(), p.ProdNo, errs[0].Obj)
}

func (suite *OrderValidatorTestSuite) TestCannotOrderCoOccursWithCaseCheck() {
	p := caseProduct()
	rule := caseRule()
	rule.CannotOrder = true
	suite.resolver.On("ResolveProduct", suite.ctx, p.ProdNo).Return([]*models.OrderRule{rule}, nil)
	suite.expectNoGroupRules(p)

	errs, err := suite.validator.Validate(suite.ctx, []OrderLine{{Product: p, Quantity: 5}})
	assert.NoError(suite.T(), err)

	codes := make([]string, len(errs))
	for i, e := range errs {
		codes[i] = e.Code
	}
	assert.Contains(suite.T(), codes, models.ErrCodeCannotOrder)
	assert.Contains(suite.T(), codes, models.ErrCodeNotAsCase)
}

func (suite *OrderValidatorTestSuite) TestProductMinimumAmount() {
	p := caseProduct()
	rule := caseRule()
	rule.ShippedAsCase = false
	minAmount := int64(500)
	rule.MinOrderAmount = &minAmount
	suite.resolver.On("ResolveProduct", suite.ctx, p.ProdNo).Return([]*models.OrderRule{rule}, nil)
	suite.expectNoGroupRules(p)

	// 10 * 6 = 60, below 500
	errs, err := suite.validator.Validate(suite.ctx, []OrderLine{{Product: p, Quantity: 6}})
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), errs, 1)
	assert.Equal(suite.T(), models.ErrCodeProductPriceTooLow, errs[0].Code)
}

func (suite *OrderValidatorTestSuite) TestProductMinimumCaseCount() {
	p := caseProduct()
	rule := caseRule()
	rule.ShippedAsCase = false
	minCases := int64(3)
	rule.MinCaseQuantity = &minCases
	suite.resolver.On("ResolveProduct", suite.ctx, p.ProdNo).Return([]*models.OrderRule{rule}, nil)
	suite.expectNoGroupRules(p)

	// 6 units = 1 case, below the 3 case minimum
	errs, err := suite.validator.Validate(suite.ctx, []OrderLine{{Product: p, Quantity: 6}})
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), errs, 1)
	assert.Equal(suite.T(), models.ErrCodeOrderQuantityTooLow, errs[0].Code)
}

func (suite *OrderValidatorTestSuite) TestManufacturerMinimumAmountFlagsManufacturer() {
	p := caseProduct()
	p.CostPrice = 100
	minAmount := int64(5000)
	mfrRule := &models.OrderRule{
		ID:             2,
		Type:           models.RuleTypeManufacturer,
		ManufacturerID: &p.ManufacturerID,
		MinOrderAmount: &minAmount,
	}

	suite.resolver.On("ResolveProduct", suite.ctx, p.ProdNo).Return([]*models.OrderRule{}, nil)
	suite.resolver.On("ResolveCategory", suite.ctx, p.CategoryNo).Return([]*models.OrderRule{}, nil)
	suite.resolver.On("ResolveManufacturer", suite.ctx, p.ManufacturerID).Return([]*models.OrderRule{mfrRule}, nil)

	// 100 * 10 = 1000, below the 5000 manufacturer minimum
	errs, err := suite.validator.Validate(suite.ctx, []OrderLine{{Product: p, Quantity: 10}})
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), errs, 1)
	assert.Equal(suite.T(), models.ErrCodeGroupPriceTooLow, errs[0].Code)
	assert.Equal(suite.T(), "manufacturer", errs[0].ObjType)
	assert.Equal(suite.T(), p.ManufacturerID, errs[0].Obj)
}

func (suite *OrderValidatorTestSuite) TestCategoryCannotOrderShortCircuitsGroupChecks() {
	p := caseProduct()
	minAmount := int64(99999)
	cateNo := p.CategoryNo
	cateRule := &models.OrderRule{
		ID:             3,
		Type:           models.RuleTypeCategory,
		CategoryNo:     &cateNo,
		CannotOrder:    true,
		MinOrderAmount: &minAmount,
	}

	suite.resolver.On("ResolveProduct", suite.ctx, p.ProdNo).Return([]*models.OrderRule{}, nil)
	suite.resolver.On("ResolveCategory", suite.ctx, p.CategoryNo).Return([]*models.OrderRule{cateRule}, nil)
	suite.resolver.On("ResolveManufacturer", suite.ctx, p.ManufacturerID).Return([]*models.OrderRule{}, nil)

	errs, err := suite.validator.Validate(suite.ctx, []OrderLine{{Product: p, Quantity: 6}})
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), errs, 1)
	assert.Equal(suite.T(), models.ErrCodeCannotOrder, errs[0].Code)
	assert.Equal(suite.T(), "category", errs[0].ObjType)
	assert.Equal(suite.T(), p.CategoryNo, errs[0].Obj)
}

func (suite *OrderValidatorTestSuite) TestValidationIsIdempotent() {
	first := caseProduct()
	second := caseProduct()
	second.ProdNo = 100002
	second.CategoryNo = "000012"
	second.ManufacturerID = 8

	suite.resolver.On("ResolveProduct", suite.ctx, first.ProdNo).Return([]*models.OrderRule{caseRule()}, nil)
	suite.resolver.On("ResolveProduct", suite.ctx, second.ProdNo).Return([]*models.OrderRule{}, nil)
	suite.resolver.On("ResolveCategory", suite.ctx, first.CategoryNo).Return([]*models.OrderRule{}, nil)
	suite.resolver.On("ResolveCategory", suite.ctx, second.CategoryNo).Return([]*models.OrderRule{}, nil)
	suite.resolver.On("ResolveManufacturer", suite.ctx, first.ManufacturerID).Return([]*models.OrderRule{}, nil)
	suite.resolver.On("ResolveManufacturer", suite.ctx, second.ManufacturerID).Return([]*models.OrderRule{}, nil)

	lines := []OrderLine{
		{Product: first, Quantity: 5},
		{Product: second, Quantity: 0},
	}

	errsA, err := suite.validator.Validate(suite.ctx, lines)
	assert.NoError(suite.T(), err)
	errsB, err := suite.validator.Validate(suite.ctx, lines)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), errsA, errsB)
}

func TestGroupingIsAPartition(t *testing.T) {
	mk := func(prodNo int64, cateNo string, mfrID int64) OrderLine {
		return OrderLine{
			Product:  &models.Product{ProdNo: prodNo, CategoryNo: cateNo, ManufacturerID: mfrID},
			Quantity: 1,
		}
	}
	lines := []OrderLine{
		mk(1, "000011", 7),
		mk(2, "000011", 8),
		mk(3, "001122", 7),
		mk(4, "001122", 8),
		mk(5, "112233", 9),
	}

	byCategory := GroupByCategory(lines)
	byManufacturer := GroupByManufacturer(lines)

	for name, groups := range map[string][][]OrderLine{
		"category":     flatten(byCategory),
		"manufacturer": flatten(byManufacturer),
	} {
		seen := make(map[int64]int)
		total := 0
		for _, group := range groups {
			for _, line := range group {
				seen[line.Product.ProdNo]++
				total++
			}
		}
		assert.Equal(t, len(lines), total, "%s grouping changed the line count", name)
		for _, line := range lines {
			assert.Equal(t, 1, seen[line.Product.ProdNo], "%s grouping duplicated or dropped product %d", name, line.Product.ProdNo)
		}
	}
}

func flatten[K int64 | string](m map[K][]OrderLine) [][]OrderLine {
	out := make([][]OrderLine, 0, len(m))
	for _, g := range m {
		out = append(out, g)
	}
	return out
}
