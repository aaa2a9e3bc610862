package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/vendora/marketplace/internal/domain/inventory"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type inventoryDoc struct {
	ID            string    `bson:"_id"`
	ProductID     string    `bson:"product_id"`
	VendorID      string    `bson:"vendor_id"`
	StockQuantity int       `bson:"stock_quantity"`
	LowStockAlert bool      `bson:"low_stock_alert"`
	LastUpdated   time.Time `bson:"last_updated"`
}

func toInventoryDoc(r *domain.Record) inventoryDoc {
	return inventoryDoc{
		ID:            r.ID,
		ProductID:     r.ProductID,
		VendorID:      r.VendorID,
		StockQuantity: r.StockQuantity,
		LowStockAlert: r.LowStockAlert,
		LastUpdated:   r.LastUpdated,
	}
}

func fromInventoryDoc(d inventoryDoc) *domain.Record {
	return &domain.Record{
		ID:            d.ID,
		ProductID:     d.ProductID,
		VendorID:      d.VendorID,
		StockQuantity: d.StockQuantity,
		LowStockAlert: d.LowStockAlert,
		LastUpdated:   d.LastUpdated,
	}
}

type InventoryRepository struct {
	col *mongo.Collection
}

func NewInventoryRepository(db *mongo.Database) *InventoryRepository {
	return &InventoryRepository{col: db.Collection(collInventory)}
}

func (r *InventoryRepository) Insert(ctx context.Context, rec *domain.Record) error {
	if _, err := r.col.InsertOne(ctx, toInventoryDoc(rec)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("inventory repository: insert: %w", err)
	}
	return nil
}

func (r *InventoryRepository) FindByID(ctx context.Context, id string) (*domain.Record, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *InventoryRepository) FindByProduct(ctx context.Context, productID string) (*domain.Record, error) {
	return r.findOne(ctx, bson.M{"product_id": productID})
}

func (r *InventoryRepository) findOne(ctx context.Context, filter bson.M) (*domain.Record, error) {
	var d inventoryDoc
	err := r.col.FindOne(ctx, filter).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("inventory repository: find: %w", err)
	}
	return fromInventoryDoc(d), nil
}

func (r *InventoryRepository) FindAll(ctx context.Context) ([]*domain.Record, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "product_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("inventory repository: find all: %w", err)
	}
	defer cur.Close(ctx)

	var docs []inventoryDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("inventory repository: decode: %w", err)
	}
	out := make([]*domain.Record, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromInventoryDoc(d))
	}
	return out, nil
}

// ApplyDelta adjusts the stock quantity with a single conditional update.
// For draining deltas the filter requires enough remaining stock, so the
// guard and the decrement cannot be split by a concurrent writer. The
// low-stock flag is recomputed in the same statement via a pipeline update,
// keeping it consistent with the final quantity under racing deltas.
func (r *InventoryRepository) ApplyDelta(ctx context.Context, id string, delta int) (*domain.Record, int, error) {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["stock_quantity"] = bson.M{"$gte": -delta}
	}
	now := time.Now().UTC()
	update := bson.A{
		bson.M{"$set": bson.M{
			"stock_quantity": bson.M{"$add": bson.A{"$stock_quantity", delta}},
			"last_updated":   now,
		}},
		// Second stage sees the incremented quantity.
		bson.M{"$set": bson.M{
			"low_stock_alert": bson.M{"$lt": bson.A{"$stock_quantity", domain.LowStockThreshold}},
		}},
	}

	var before inventoryDoc
	err := r.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&before)
	if errors.Is(err, mongo.ErrNoDocuments) {
		n, cerr := r.col.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
		if cerr != nil {
			return nil, 0, fmt.Errorf("inventory repository: apply delta: %w", cerr)
		}
		if n == 0 {
			return nil, 0, domain.ErrNotFound
		}
		return nil, 0, domain.ErrInsufficientStock
	}
	if err != nil {
		return nil, 0, fmt.Errorf("inventory repository: apply delta: %w", err)
	}

	updated := fromInventoryDoc(before)
	updated.StockQuantity = before.StockQuantity + delta
	updated.LowStockAlert = updated.StockQuantity < domain.LowStockThreshold
	updated.LastUpdated = now
	return updated, before.StockQuantity, nil
}

func (r *InventoryRepository) Replace(ctx context.Context, rec *domain.Record) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": rec.ID}, toInventoryDoc(rec))
	if err != nil {
		return fmt.Errorf("inventory repository: replace: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *InventoryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("inventory repository: delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
