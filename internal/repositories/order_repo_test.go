package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"retailops/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type OrderRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    OrderRepository
	context context.Context
	day     time.Time
}

func (suite *OrderRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewOrderRepo(mock)
	suite.context = context.Background()
	suite.day = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
}

func (suite *OrderRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestOrderRepoTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepoTestSuite))
}

func (suite *OrderRepoTestSuite) sampleBatch() []*models.OrderWithItems {
	order := &models.Order{
		OrderNo:             2024311500000,
		ManufacturerID:      7,
		OrderDate:           suite.day,
		ExpectedArrivalDate: suite.day.AddDate(0, 0, 7),
		StorageFeeRecipient: models.StorageFeeNoCharge,
	}
	item := &models.OrderLineItem{
		ID:       uuid.New(),
		OrderNo:  order.OrderNo,
		ProdNo:   100001,
		Quantity: 6,
		Status:   models.LineItemGenerated,
	}
	return []*models.OrderWithItems{{Order: order, Items: []*models.OrderLineItem{item}}}
}

func (suite *OrderRepoTestSuite) TestCreateWithItems_Success() {
	batch := suite.sampleBatch()
	order := batch[0].Order
	item := batch[0].Items[0]

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`INSERT INTO orders \(order_no, manufacturer_id, order_date, expected_arrival_date, has_contact_form, contact_form_no, storage_fee_recipient, notes, contact_form_notes, created_at, updated_at\)`).
		WithArgs(order.OrderNo, order.ManufacturerID, order.OrderDate, order.ExpectedArrivalDate, order.HasContactForm, order.ContactFormNo, order.StorageFeeRecipient, order.Notes, order.ContactFormNotes).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO order_line_items \(id, order_no, prod_no, quantity, status, created_at, updated_at\)`).
		WithArgs(item.ID, item.OrderNo, item.ProdNo, item.Quantity, item.Status).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	err := suite.repo.CreateWithItems(suite.context, batch)
	assert.NoError(suite.T(), err)
}

func (suite *OrderRepoTestSuite) TestCreateWithItems_RollsBackOnItemFailure() {
	batch := suite.sampleBatch()
	order := batch[0].Order
	item := batch[0].Items[0]

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`INSERT INTO orders`).
		WithArgs(order.OrderNo, order.ManufacturerID, order.OrderDate, order.ExpectedArrivalDate, order.HasContactForm, order.ContactFormNo, order.StorageFeeRecipient, order.Notes, order.ContactFormNotes).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO order_line_items`).
		WithArgs(item.ID, item.OrderNo, item.ProdNo, item.Quantity, item.Status).
		WillReturnError(errors.New("connection reset"))
	suite.mock.ExpectRollback()

	err := suite.repo.CreateWithItems(suite.context, batch)
	assert.Error(suite.T(), err)
}

func (suite *OrderRepoTestSuite) TestLastNumberInRange_ReturnsHighest() {
	suite.mock.ExpectQuery(`SELECT order_no\s+FROM orders\s+WHERE order_no BETWEEN \$1 AND \$2`).
		WithArgs(int64(2024311500000), int64(2024311599999)).
		WillReturnRows(pgxmock.NewRows([]string{"order_no"}).AddRow(int64(2024311500042)))

	last, err := suite.repo.LastNumberInRange(suite.context, 2024311500000, 2024311599999)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2024311500042), last)
}

func (suite *OrderRepoTestSuite) TestLastNumberInRange_EmptyRange() {
	suite.mock.ExpectQuery(`SELECT order_no\s+FROM orders\s+WHERE order_no BETWEEN \$1 AND \$2`).
		WithArgs(int64(2024311500000), int64(2024311599999)).
		WillReturnRows(pgxmock.NewRows([]string{"order_no"}))

	last, err := suite.repo.LastNumberInRange(suite.context, 2024311500000, 2024311599999)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(0), last)
}

func (suite *OrderRepoTestSuite) TestGetByNo_NotFound() {
	suite.mock.ExpectQuery(`SELECT .+\s+FROM orders\s+WHERE order_no = \$1`).
		WithArgs(int64(2024311500000)).
		WillReturnRows(pgxmock.NewRows([]string{"order_no"}))

	order, err := suite.repo.GetByNo(suite.context, 2024311500000)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), order)
}

func (suite *OrderRepoTestSuite) TestGetByNo_Success() {
	now := time.Now()
	suite.mock.ExpectQuery(`SELECT .+\s+FROM orders\s+WHERE order_no = \$1`).
		WithArgs(int64(2024311500000)).
		WillReturnRows(pgxmock.NewRows([]string{
			"order_no", "manufacturer_id", "order_date", "expected_arrival_date", "has_contact_form",
			"contact_form_no", "storage_fee_recipient", "notes", "contact_form_notes", "created_at", "updated_at",
		}).AddRow(int64(2024311500000), int64(7), suite.day, suite.day.AddDate(0, 0, 7), false,
			nil, models.StorageFeeNoCharge, nil, nil, now, now))

	order, err := suite.repo.GetByNo(suite.context, 2024311500000)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2024311500000), order.OrderNo)
	assert.Equal(suite.T(), int64(7), order.ManufacturerID)
	assert.Nil(suite.T(), order.ContactFormNo)
}
