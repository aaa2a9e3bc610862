package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/vendora/marketplace/internal/domain/notification"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type notificationDoc struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Message   string    `bson:"message"`
	IsRead    bool      `bson:"is_read"`
	CreatedAt time.Time `bson:"created_at"`
}

type NotificationRepository struct {
	col *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{col: db.Collection(collNotifications)}
}

func (r *NotificationRepository) Insert(ctx context.Context, n *domain.Notification) error {
	doc := notificationDoc{ID: n.ID, UserID: n.UserID, Message: n.Message, IsRead: n.IsRead, CreatedAt: n.CreatedAt}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("notification repository: insert: %w", err)
	}
	return nil
}

func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*domain.Notification, error) {
	var d notificationDoc
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("notification repository: find: %w", err)
	}
	return &domain.Notification{ID: d.ID, UserID: d.UserID, Message: d.Message, IsRead: d.IsRead, CreatedAt: d.CreatedAt}, nil
}

func (r *NotificationRepository) FindByUser(ctx context.Context, userID string) ([]*domain.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("notification repository: find by user: %w", err)
	}
	defer cur.Close(ctx)

	var docs []notificationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("notification repository: decode: %w", err)
	}
	out := make([]*domain.Notification, 0, len(docs))
	for _, d := range docs {
		out = append(out, &domain.Notification{ID: d.ID, UserID: d.UserID, Message: d.Message, IsRead: d.IsRead, CreatedAt: d.CreatedAt})
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return fmt.Errorf("notification repository: mark read: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("notification repository: delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
