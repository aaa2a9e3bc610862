package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/vendora/marketplace/internal/domain/user"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type userDoc struct {
	ID        string    `bson:"_id"`
	Role      string    `bson:"user_type"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	Status    string    `bson:"user_status"`
	CreatedAt time.Time `bson:"created_at"`
}

func toUserDoc(u *domain.User) userDoc {
	return userDoc{
		ID:        u.ID,
		Role:      string(u.Role),
		Name:      u.Name,
		Email:     u.Email,
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt,
	}
}

func fromUserDoc(d userDoc) *domain.User {
	return &domain.User{
		ID:        d.ID,
		Role:      domain.Role(d.Role),
		Name:      d.Name,
		Email:     d.Email,
		Status:    domain.Status(d.Status),
		CreatedAt: d.CreatedAt,
	}
}

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collUsers)}
}

func (r *UserRepository) Insert(ctx context.Context, u *domain.User) error {
	if _, err := r.col.InsertOne(ctx, toUserDoc(u)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("user repository: insert: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var d userDoc
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user repository: find: %w", err)
	}
	return fromUserDoc(d), nil
}

func (r *UserRepository) FindByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	cur, err := r.col.Find(ctx, bson.M{"user_type": string(role)})
	if err != nil {
		return nil, fmt.Errorf("user repository: find by role: %w", err)
	}
	defer cur.Close(ctx)

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("user repository: decode: %w", err)
	}
	out := make([]*domain.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromUserDoc(d))
	}
	return out, nil
}
