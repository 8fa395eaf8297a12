package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/retail-platform/order-fulfillment/internal/domain"
)

// OrderRepository is an in-memory implementation of domain.OrderRepository.
// It is used in tests and single-node development mode; production runs on
// the MongoDB implementation.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

// NewOrderRepository creates an empty in-memory order repository
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]*domain.Order)}
}

// Save persists an order (upsert)
func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := *order
	r.orders[order.OrderID] = &snapshot
	return nil
}

// FindByID retrieves an order by its OrderID. Returns nil without error
// when the order does not exist.
func (r *OrderRepository) FindByID(ctx context.Context, orderID string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[orderID]
	if !ok {
		return nil, nil
	}

	snapshot := *order
	return &snapshot, nil
}

// FindByCustomerID retrieves all orders for a customer, newest first
func (r *OrderRepository) FindByCustomerID(ctx context.Context, customerID string, pagination domain.Pagination) ([]*domain.Order, error) {
	return r.findWhere(func(o *domain.Order) bool {
		return o.CustomerID == customerID
	}, pagination), nil
}

// FindByStatus retrieves orders by status, newest first
func (r *OrderRepository) FindByStatus(ctx context.Context, status domain.OrderStatus, pagination domain.Pagination) ([]*domain.Order, error) {
	return r.findWhere(func(o *domain.Order) bool {
		return o.Status == status
	}, pagination), nil
}

// FindAll retrieves orders regardless of status, newest first
func (r *OrderRepository) FindAll(ctx context.Context, pagination domain.Pagination) ([]*domain.Order, error) {
	return r.findWhere(func(o *domain.Order) bool {
		return true
	}, pagination), nil
}

// FindByTrackingNumber retrieves the order whose shipment carries the given
// tracking number. Returns nil without error when no shipment matches.
func (r *OrderRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.orders {
		if order.Tracker != nil && order.Tracker.TrackingNumber == trackingNumber {
			snapshot := *order
			return &snapshot, nil
		}
	}
	return nil, nil
}

// Count returns the total number of orders matching the filter
func (r *OrderRepository) Count(ctx context.Context, filter domain.OrderFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, order := range r.orders {
		if matches(order, filter) {
			count++
		}
	}
	return count, nil
}

func matches(order *domain.Order, filter domain.OrderFilter) bool {
	if filter.CustomerID != nil && order.CustomerID != *filter.CustomerID {
		return false
	}
	if filter.Status != nil && order.Status != *filter.Status {
		return false
	}
	return true
}

func (r *OrderRepository) findWhere(predicate func(*domain.Order) bool, pagination domain.Pagination) []*domain.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*domain.Order, 0)
	for _, order := range r.orders {
		if predicate(order) {
			snapshot := *order
			matched = append(matched, &snapshot)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	skip := pagination.Skip()
	if skip >= int64(len(matched)) {
		return []*domain.Order{}
	}
	matched = matched[skip:]

	if limit := pagination.Limit(); limit > 0 && int64(len(matched)) > limit {
		matched = matched[:limit]
	}

	return matched
}
