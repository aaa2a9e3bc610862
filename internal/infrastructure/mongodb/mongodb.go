package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	collOrders        = "orders"
	collInventory     = "inventory"
	collProducts      = "products"
	collUsers         = "users"
	collNotifications = "notifications"
	collRatings       = "vendor_ratings"

	connectTimeout = 10 * time.Second
)

// Connect dials the document store and verifies the connection.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb: connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("mongodb: ping: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the repositories rely on: unique order
// codes, unique one-record-per-product inventory, and the common lookup
// paths.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	orderIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "order_code", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "customer_id", Value: 1}}},
		{Keys: bson.D{{Key: "vendor_status.vendor_id", Value: 1}}},
		{Keys: bson.D{{Key: "order_items.product_id", Value: 1}}},
	}
	if _, err := db.Collection(collOrders).Indexes().CreateMany(ctx, orderIdx); err != nil {
		return fmt.Errorf("mongodb: order indexes: %w", err)
	}

	invIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "product_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := db.Collection(collInventory).Indexes().CreateMany(ctx, invIdx); err != nil {
		return fmt.Errorf("mongodb: inventory indexes: %w", err)
	}

	userIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_type", Value: 1}}},
	}
	if _, err := db.Collection(collUsers).Indexes().CreateMany(ctx, userIdx); err != nil {
		return fmt.Errorf("mongodb: user indexes: %w", err)
	}

	notifIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	}
	if _, err := db.Collection(collNotifications).Indexes().CreateMany(ctx, notifIdx); err != nil {
		return fmt.Errorf("mongodb: notification indexes: %w", err)
	}

	ratingIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "vendor_id", Value: 1}}},
	}
	if _, err := db.Collection(collRatings).Indexes().CreateMany(ctx, ratingIdx); err != nil {
		return fmt.Errorf("mongodb: rating indexes: %w", err)
	}
	return nil
}
