package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/vendora/marketplace/internal/domain/order"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type orderDoc struct {
	ID              string            `bson:"_id"`
	Code            string            `bson:"order_code"`
	CustomerID      string            `bson:"customer_id"`
	Status          string            `bson:"order_status"`
	Items           []orderItemDoc    `bson:"order_items"`
	TotalAmount     float64           `bson:"total_amount"`
	ShippingAddress addressDoc        `bson:"shipping_address"`
	VendorStatus    []vendorStatusDoc `bson:"vendor_status"`
	PlacedAt        time.Time         `bson:"placed_at"`
	UpdatedAt       time.Time         `bson:"updated_at"`
	Version         int64             `bson:"version"`
}

type orderItemDoc struct {
	ProductID   string  `bson:"product_id"`
	ProductName string  `bson:"product_name"`
	Quantity    int     `bson:"quantity"`
	UnitPrice   float64 `bson:"price"`
}

type addressDoc struct {
	Street  string `bson:"street"`
	City    string `bson:"city"`
	ZipCode string `bson:"zip_code"`
}

type vendorStatusDoc struct {
	VendorID string `bson:"vendor_id"`
	Status   string `bson:"status"`
	Rated    bool   `bson:"rated"`
}

func toOrderDoc(o *domain.Order) orderDoc {
	items := make([]orderItemDoc, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemDoc{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	vs := make([]vendorStatusDoc, 0, len(o.VendorStatus))
	for _, v := range o.VendorStatus {
		vs = append(vs, vendorStatusDoc{VendorID: v.VendorID, Status: string(v.Status), Rated: v.Rated})
	}
	return orderDoc{
		ID:         o.ID,
		Code:       o.Code,
		CustomerID: o.CustomerID,
		Status:     string(o.Status),
		Items:      items,
		TotalAmount: o.TotalAmount,
		ShippingAddress: addressDoc{
			Street:  o.ShippingAddress.Street,
			City:    o.ShippingAddress.City,
			ZipCode: o.ShippingAddress.ZipCode,
		},
		VendorStatus: vs,
		PlacedAt:     o.PlacedAt,
		UpdatedAt:    o.UpdatedAt,
		Version:      o.Version,
	}
}

func fromOrderDoc(d orderDoc) *domain.Order {
	items := make([]domain.Item, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, domain.Item{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	vs := make([]domain.VendorOrderStatus, 0, len(d.VendorStatus))
	for _, v := range d.VendorStatus {
		vs = append(vs, domain.VendorOrderStatus{
			VendorID: v.VendorID,
			Status:   domain.VendorStatus(v.Status),
			Rated:    v.Rated,
		})
	}
	return &domain.Order{
		ID:          d.ID,
		Code:        d.Code,
		CustomerID:  d.CustomerID,
		Status:      domain.Status(d.Status),
		Items:       items,
		TotalAmount: d.TotalAmount,
		ShippingAddress: domain.Address{
			Street:  d.ShippingAddress.Street,
			City:    d.ShippingAddress.City,
			ZipCode: d.ShippingAddress.ZipCode,
		},
		VendorStatus: vs,
		PlacedAt:     d.PlacedAt,
		UpdatedAt:    d.UpdatedAt,
		Version:      d.Version,
	}
}

type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection(collOrders)}
}

func (r *OrderRepository) Insert(ctx context.Context, o *domain.Order) error {
	if _, err := r.col.InsertOne(ctx, toOrderDoc(o)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("order repository: insert: %w", err)
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var d orderDoc
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("order repository: find: %w", err)
	}
	return fromOrderDoc(d), nil
}

func (r *OrderRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"order_code": code}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("order repository: code lookup: %w", err)
	}
	return n > 0, nil
}

func (r *OrderRepository) Find(ctx context.Context, f domain.Filter, page, pageSize int) ([]*domain.Order, error) {
	filter := bson.M{}
	if f.CustomerID != "" {
		filter["customer_id"] = f.CustomerID
	}
	if f.VendorID != "" {
		filter["vendor_status.vendor_id"] = f.VendorID
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "placed_at", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("order repository: find: %w", err)
	}
	defer cur.Close(ctx)

	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("order repository: decode: %w", err)
	}
	out := make([]*domain.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromOrderDoc(d))
	}
	return out, nil
}

// Update replaces the document, conditional on the version the caller read.
// A write that landed in between changes the version, so the stale replace
// matches nothing and the caller is told its snapshot is out of date.
func (r *OrderRepository) Update(ctx context.Context, o *domain.Order) error {
	d := toOrderDoc(o)
	d.Version = o.Version + 1
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": o.ID, "version": o.Version}, d)
	if err != nil {
		return fmt.Errorf("order repository: update: %w", err)
	}
	if res.MatchedCount == 0 {
		n, cerr := r.col.CountDocuments(ctx, bson.M{"_id": o.ID}, options.Count().SetLimit(1))
		if cerr != nil {
			return fmt.Errorf("order repository: update: %w", cerr)
		}
		if n == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrInvalidState
	}
	return nil
}

// UpdateStatus swaps the status in a single conditional write. The filter
// carries the expected status, so of two racing transitions only one can
// match; the loser is told the order was not in the state it assumed.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, expected, next domain.Status) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "order_status": string(expected)},
		bson.M{
			"$set": bson.M{"order_status": string(next), "updated_at": time.Now().UTC()},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return fmt.Errorf("order repository: update status: %w", err)
	}
	if res.MatchedCount == 0 {
		n, cerr := r.col.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
		if cerr != nil {
			return fmt.Errorf("order repository: update status: %w", cerr)
		}
		if n == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrInvalidState
	}
	return nil
}

func (r *OrderRepository) HasOpenForProduct(ctx context.Context, productID string) (bool, error) {
	filter := bson.M{
		"order_status":           bson.M{"$nin": bson.A{string(domain.StatusCancelled), string(domain.StatusDelivered)}},
		"order_items.product_id": productID,
	}
	err := r.col.FindOne(ctx, filter).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("order repository: open order lookup: %w", err)
	}
	return true, nil
}
