package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/retail-platform/order-fulfillment/internal/domain"
)

// OrderRepository implements domain.OrderRepository using MongoDB
type OrderRepository struct {
	collection *mongo.Collection
}

// NewOrderRepository creates a new OrderRepository on the orders collection
// and ensures its indexes
func NewOrderRepository(db *mongo.Database) *OrderRepository {
	collection := db.Collection("orders")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "orderId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "customerId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			Keys:    bson.D{{Key: "tracker.trackingNumber", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &OrderRepository{collection: collection}
}

// Save persists an order (upsert on orderId)
func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	order.UpdatedAt = time.Now().UTC()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"orderId": order.OrderID}
	update := bson.M{"$set": order}

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}

	return nil
}

// FindByID retrieves an order by its OrderID. Returns nil without error
// when the order does not exist.
func (r *OrderRepository) FindByID(ctx context.Context, orderID string) (*domain.Order, error) {
	var order domain.Order
	filter := bson.M{"orderId": orderID}

	err := r.collection.FindOne(ctx, filter).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &order, nil
}

// FindByCustomerID retrieves all orders for a customer, newest first
func (r *OrderRepository) FindByCustomerID(ctx context.Context, customerID string, pagination domain.Pagination) ([]*domain.Order, error) {
	filter := bson.M{"customerId": customerID}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(pagination.Skip()).
		SetLimit(pagination.Limit())

	return r.findMany(ctx, filter, opts)
}

// FindByStatus retrieves orders by status, newest first
func (r *OrderRepository) FindByStatus(ctx context.Context, status domain.OrderStatus, pagination domain.Pagination) ([]*domain.Order, error) {
	filter := bson.M{"status": status}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(pagination.Skip()).
		SetLimit(pagination.Limit())

	return r.findMany(ctx, filter, opts)
}

// FindAll retrieves orders regardless of status, newest first
func (r *OrderRepository) FindAll(ctx context.Context, pagination domain.Pagination) ([]*domain.Order, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(pagination.Skip()).
		SetLimit(pagination.Limit())

	return r.findMany(ctx, bson.M{}, opts)
}

// FindByTrackingNumber retrieves the order whose shipment carries the given
// tracking number
func (r *OrderRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Order, error) {
	var order domain.Order
	filter := bson.M{"tracker.trackingNumber": trackingNumber}

	err := r.collection.FindOne(ctx, filter).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &order, nil
}

// Count returns the total number of orders matching the filter
func (r *OrderRepository) Count(ctx context.Context, filter domain.OrderFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, buildFilter(filter))
}

// findMany is a helper for finding multiple orders
func (r *OrderRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Order, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []*domain.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// buildFilter builds a MongoDB filter from an OrderFilter
func buildFilter(filter domain.OrderFilter) bson.M {
	mongoFilter := bson.M{}

	if filter.CustomerID != nil {
		mongoFilter["customerId"] = *filter.CustomerID
	}

	if filter.Status != nil {
		mongoFilter["status"] = *filter.Status
	}

	return mongoFilter
}
