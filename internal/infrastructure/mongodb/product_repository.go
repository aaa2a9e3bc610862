package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/vendora/marketplace/internal/domain/product"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type productDoc struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"product_name"`
	Category    string    `bson:"category"`
	Description string    `bson:"description"`
	VendorID    string    `bson:"vendor_id"`
	Price       float64   `bson:"price"`
	Status      string    `bson:"product_status"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func toProductDoc(p *domain.Product) productDoc {
	return productDoc{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		VendorID:    p.VendorID,
		Price:       p.Price,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func fromProductDoc(d productDoc) *domain.Product {
	return &domain.Product{
		ID:          d.ID,
		Name:        d.Name,
		Category:    d.Category,
		Description: d.Description,
		VendorID:    d.VendorID,
		Price:       d.Price,
		Status:      domain.Status(d.Status),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection(collProducts)}
}

func (r *ProductRepository) Insert(ctx context.Context, p *domain.Product) error {
	if _, err := r.col.InsertOne(ctx, toProductDoc(p)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("product repository: insert: %w", err)
	}
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var d productDoc
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("product repository: find: %w", err)
	}
	return fromProductDoc(d), nil
}

func (r *ProductRepository) FindAll(ctx context.Context, page, pageSize int) ([]*domain.Product, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("product repository: find all: %w", err)
	}
	defer cur.Close(ctx)

	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("product repository: decode: %w", err)
	}
	out := make([]*domain.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromProductDoc(d))
	}
	return out, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, toProductDoc(p))
	if err != nil {
		return fmt.Errorf("product repository: update: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("product repository: delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
