package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retail-platform/order-fulfillment/internal/domain"
)

func newTestOrder(t *testing.T, customerID string) *domain.Order {
	t.Helper()

	order, err := domain.NewOrder(
		fmt.Sprintf("ORD-%08d", time.Now().UnixNano()%1e8),
		customerID,
		"customer@example.com",
		[]domain.OrderItem{{ProductID: "PRD-1", Quantity: 1, UnitPrice: 100.0}},
		domain.Address{Street: "12 Baker Street", City: "Pune", Country: "IN"},
	)
	require.NoError(t, err)
	return order
}

func TestSaveAndFindByID(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	order := newTestOrder(t, "CUST-1001")
	require.NoError(t, repo.Save(ctx, order))

	found, err := repo.FindByID(ctx, order.OrderID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, order.OrderID, found.OrderID)
	assert.Equal(t, order.TotalAmount, found.TotalAmount)

	missing, err := repo.FindByID(ctx, "ORD-missing1")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSaveIsUpsert(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	order := newTestOrder(t, "CUST-1001")
	require.NoError(t, repo.Save(ctx, order))

	require.NoError(t, order.Cancel("duplicate"))
	require.NoError(t, repo.Save(ctx, order))

	found, err := repo.FindByID(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, found.Status)
}

func TestFindByIDReturnsSnapshot(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	order := newTestOrder(t, "CUST-1001")
	require.NoError(t, repo.Save(ctx, order))

	loaded, err := repo.FindByID(ctx, order.OrderID)
	require.NoError(t, err)
	require.NoError(t, loaded.Cancel("not saved"))

	again, err := repo.FindByID(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingPayment, again.Status, "mutations are invisible until saved")
}

func TestFindByCustomerID(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		order := newTestOrder(t, "CUST-1001")
		order.OrderID = fmt.Sprintf("ORD-cust%04d", i)
		require.NoError(t, repo.Save(ctx, order))
	}
	other := newTestOrder(t, "CUST-2002")
	require.NoError(t, repo.Save(ctx, other))

	orders, err := repo.FindByCustomerID(ctx, "CUST-1001", domain.DefaultPagination())
	require.NoError(t, err)
	assert.Len(t, orders, 3)
}

func TestFindByStatusWithPagination(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		order := newTestOrder(t, "CUST-1001")
		order.OrderID = fmt.Sprintf("ORD-page%04d", i)
		require.NoError(t, repo.Save(ctx, order))
	}

	page1, err := repo.FindByStatus(ctx, domain.StatusPendingPayment, domain.Pagination{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, page1, 2)

	page3, err := repo.FindByStatus(ctx, domain.StatusPendingPayment, domain.Pagination{Page: 3, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, page3, 1)

	empty, err := repo.FindByStatus(ctx, domain.StatusPendingPayment, domain.Pagination{Page: 4, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFindAll(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	pending := newTestOrder(t, "CUST-1001")
	pending.OrderID = "ORD-all00001"
	require.NoError(t, repo.Save(ctx, pending))

	cancelled := newTestOrder(t, "CUST-2002")
	cancelled.OrderID = "ORD-all00002"
	require.NoError(t, cancelled.Cancel("test"))
	require.NoError(t, repo.Save(ctx, cancelled))

	orders, err := repo.FindAll(ctx, domain.DefaultPagination())
	require.NoError(t, err)
	assert.Len(t, orders, 2, "all statuses are included")
}

func TestFindByTrackingNumber(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	order := newTestOrder(t, "CUST-1001")
	payment := domain.NewPayment(order.TotalAmount, domain.NewCashOnDelivery())
	require.NoError(t, order.ProcessPayment(payment))
	require.NotNil(t, order.Tracker)
	require.NoError(t, repo.Save(ctx, order))

	found, err := repo.FindByTrackingNumber(ctx, order.Tracker.TrackingNumber)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, order.OrderID, found.OrderID)

	missing, err := repo.FindByTrackingNumber(ctx, "TRK-UNKNOWN1")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCount(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	first := newTestOrder(t, "CUST-1001")
	first.OrderID = "ORD-count001"
	require.NoError(t, repo.Save(ctx, first))

	second := newTestOrder(t, "CUST-2002")
	second.OrderID = "ORD-count002"
	require.NoError(t, second.Cancel("test"))
	require.NoError(t, repo.Save(ctx, second))

	total, err := repo.Count(ctx, domain.OrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	customerID := "CUST-1001"
	byCustomer, err := repo.Count(ctx, domain.OrderFilter{CustomerID: &customerID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), byCustomer)

	cancelled := domain.StatusCancelled
	byStatus, err := repo.Count(ctx, domain.OrderFilter{Status: &cancelled})
	require.NoError(t, err)
	assert.Equal(t, int64(1), byStatus)
}
