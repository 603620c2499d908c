package services

import (
	"context"
	"testing"
	"time"

	"retailops/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateWithItems(ctx context.Context, batch []*models.OrderWithItems) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByNo(ctx context.Context, orderNo int64) (*models.Order, error) {
	args := m.Called(ctx, orderNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, limit, offset int) ([]*models.Order, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByManufacturer(ctx context.Context, mfrID int64, limit, offset int) ([]*models.Order, error) {
	args := m.Called(ctx, mfrID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockOrderRepository) LastNumberInRange(ctx context.Context, low, high int64) (int64, error) {
	args := m.Called(ctx, low, high)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Update(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func TestDayPrefix(t *testing.T) {
	tests := []struct {
		day  time.Time
		want string
	}{
		{time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), "20243115"},
		{time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), "20244231"},
		{time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), "20254001"},
		{time.Date(1999, 9, 9, 0, 0, 0, 0, time.UTC), "19993909"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DayPrefix(tt.day))
	}
}

type NumberAllocatorTestSuite struct {
	suite.Suite
	orderRepo *MockOrderRepository
	allocator NumberAllocator
	ctx       context.Context
	day       time.Time
}

func (suite *NumberAllocatorTestSuite) SetupTest() {
	suite.orderRepo = &MockOrderRepository{}
	suite.orderRepo.Test(suite.T())
	suite.allocator = NewNumberAllocator(suite.orderRepo)
	suite.ctx = context.Background()
	suite.day = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
}

func (suite *NumberAllocatorTestSuite) TearDownTest() {
	suite.orderRepo.AssertExpectations(suite.T())
}

func TestNumberAllocatorTestSuite(t *testing.T) {
	suite.Run(t, new(NumberAllocatorTestSuite))
}

func (suite *NumberAllocatorTestSuite) TestFreshPrefixStartsAtLow() {
	suite.orderRepo.On("LastNumberInRange", suite.ctx, int64(2024311500000), int64(2024311599999)).
		Return(int64(0), nil)

	numbers, err := suite.allocator.Next(suite.ctx, suite.day, 1)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []int64{2024311500000}, numbers)
}

func (suite *NumberAllocatorTestSuite) TestContinuesAfterLastNumber() {
	suite.orderRepo.On("LastNumberInRange", suite.ctx, int64(2024311500000), int64(2024311599999)).
		Return(int64(2024311500041), nil)

	numbers, err := suite.allocator.Next(suite.ctx, suite.day, 1)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []int64{2024311500042}, numbers)
}

func (suite *NumberAllocatorTestSuite) TestAllocatesConsecutiveBlock() {
	suite.orderRepo.On("LastNumberInRange", suite.ctx, int64(2024311500000), int64(2024311599999)).
		Return(int64(2024311500009), nil)

	numbers, err := suite.allocator.Next(suite.ctx, suite.day, 3)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []int64{2024311500010, 2024311500011, 2024311500012}, numbers)
}

func (suite *NumberAllocatorTestSuite) TestExhaustedPrefix() {
	suite.orderRepo.On("LastNumberInRange", suite.ctx, int64(2024311500000), int64(2024311599999)).
		Return(int64(2024311599999), nil)

	numbers, err := suite.allocator.Next(suite.ctx, suite.day, 1)
	assert.Nil(suite.T(), numbers)
	assert.ErrorContains(suite.T(), err, "exhausted")
}

func (suite *NumberAllocatorTestSuite) TestBlockOverflowingPrefixRangeFails() {
	suite.orderRepo.On("LastNumberInRange", suite.ctx, int64(2024311500000), int64(2024311599999)).
		Return(int64(2024311599998), nil)

	numbers, err := suite.allocator.Next(suite.ctx, suite.day, 2)
	assert.Nil(suite.T(), numbers)
	assert.ErrorContains(suite.T(), err, "exhausted")
}

func (suite *NumberAllocatorTestSuite) TestNonPositiveCount() {
	_, err := suite.allocator.Next(suite.ctx, suite.day, 0)
	assert.ErrorContains(suite.T(), err, "must be positive")
}
