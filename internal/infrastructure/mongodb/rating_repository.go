package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/vendora/marketplace/internal/domain/rating"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ratingDoc struct {
	ID         string    `bson:"_id"`
	CustomerID string    `bson:"customer_id"`
	VendorID   string    `bson:"vendor_id"`
	OrderID    string    `bson:"order_id"`
	Rating     float64   `bson:"rating"`
	Comment    string    `bson:"comment"`
	CreatedAt  time.Time `bson:"created_at"`
}

func toRatingDoc(v *domain.VendorRating) ratingDoc {
	return ratingDoc{
		ID:         v.ID,
		CustomerID: v.CustomerID,
		VendorID:   v.VendorID,
		OrderID:    v.OrderID,
		Rating:     v.Rating,
		Comment:    v.Comment,
		CreatedAt:  v.CreatedAt,
	}
}

func fromRatingDoc(d ratingDoc) *domain.VendorRating {
	return &domain.VendorRating{
		ID:         d.ID,
		CustomerID: d.CustomerID,
		VendorID:   d.VendorID,
		OrderID:    d.OrderID,
		Rating:     d.Rating,
		Comment:    d.Comment,
		CreatedAt:  d.CreatedAt,
	}
}

type RatingRepository struct {
	col *mongo.Collection
}

func NewRatingRepository(db *mongo.Database) *RatingRepository {
	return &RatingRepository{col: db.Collection(collRatings)}
}

func (r *RatingRepository) Insert(ctx context.Context, v *domain.VendorRating) error {
	if _, err := r.col.InsertOne(ctx, toRatingDoc(v)); err != nil {
		return fmt.Errorf("rating repository: insert: %w", err)
	}
	return nil
}

func (r *RatingRepository) FindByID(ctx context.Context, id string) (*domain.VendorRating, error) {
	var d ratingDoc
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("rating repository: find: %w", err)
	}
	return fromRatingDoc(d), nil
}

func (r *RatingRepository) FindByVendor(ctx context.Context, vendorID string) ([]*domain.VendorRating, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"vendor_id": vendorID}, opts)
	if err != nil {
		return nil, fmt.Errorf("rating repository: find by vendor: %w", err)
	}
	defer cur.Close(ctx)

	var docs []ratingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("rating repository: decode: %w", err)
	}
	out := make([]*domain.VendorRating, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromRatingDoc(d))
	}
	return out, nil
}

func (r *RatingRepository) Update(ctx context.Context, v *domain.VendorRating) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": v.ID}, toRatingDoc(v))
	if err != nil {
		return fmt.Errorf("rating repository: update: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *RatingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("rating repository: delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
