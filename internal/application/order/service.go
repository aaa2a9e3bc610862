package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/vendora/marketplace/internal/domain/inventory"
	domain "github.com/vendora/marketplace/internal/domain/order"
	"github.com/vendora/marketplace/internal/domain/product"
	"github.com/vendora/marketplace/internal/domain/user"
	"github.com/vendora/marketplace/internal/observability"
	"github.com/vendora/marketplace/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const (
	componentOrderService = "order_service"
	spanPrefix            = "Order."

	defaultPageSize = 10
	maxPageSize     = 100
	enrichWorkers   = 8
)

// Service orchestrates the order lifecycle: placement, dispatch, vendor
// delivery roll-up and the two-phase cancellation protocol. Placement only
// validates stock; deduction happens at dispatch, which is what keeps
// cancellation free of compensating inventory writes.
type Service struct {
	repo     domain.Repository
	products ProductLookup
	ledger   InventoryLedger
	users    UserDirectory
	notifier Notifier
	idGen    IDGenerator
	codeGen  CodeGenerator
	tel      observability.Observability

	log observability.Logger
}

func NewService(
	repo domain.Repository,
	products ProductLookup,
	ledger InventoryLedger,
	users UserDirectory,
	notifier Notifier,
	idGen IDGenerator,
	codeGen CodeGenerator,
	tel observability.Observability,
) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Service{
		repo:     repo,
		products: products,
		ledger:   ledger,
		users:    users,
		notifier: notifier,
		idGen:    idGen,
		codeGen:  codeGen,
		tel:      tel,
		log:      tel.Logger().With(observability.F("component", componentOrderService)),
	}
}

type ItemInput struct {
	ProductID string
	Quantity  int
}

type AddressInput struct {
	Street  string
	City    string
	ZipCode string
}

type PlaceOrderInput struct {
	CustomerID      string
	Items           []ItemInput
	ShippingAddress AddressInput
}

// PlaceOrder validates the request against the catalogue and the stock
// ledger, snapshots names and prices, groups vendors, assigns a unique
// order code and persists the order as Pending. Inventory is not mutated.
func (s *Service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error) {
	logger := logctx.FromOr(ctx, s.log)
	ctx, span := s.tel.Tracer().Start(ctx, spanPrefix+"Place",
		attribute.String("order.customer_id", input.CustomerID),
		attribute.Int("order.items", len(input.Items)),
	)
	defer span.End()

	if input.CustomerID == "" {
		return nil, domain.ErrInvalidCustomer
	}
	if len(input.Items) == 0 {
		return nil, domain.ErrEmptyItems
	}

	items, vendors, err := s.buildItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	entity, err := domain.New(s.idGen.NewID(), code, input.CustomerID, items, vendors, domain.Address{
		Street:  input.ShippingAddress.Street,
		City:    input.ShippingAddress.City,
		ZipCode: input.ShippingAddress.ZipCode,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, entity); err != nil {
		logger.Error("order_insert_failed",
			observability.F("order_code", code),
			observability.F("error", err.Error()),
		)
		return nil, fmt.Errorf("order: insert: %w", err)
	}

	s.tel.Metrics().Counter(observability.MOrdersPlaced).Add(1)
	logger.Info("order_placed",
		observability.F("order_id", entity.ID),
		observability.F("order_code", entity.Code),
		observability.F("total_amount", entity.TotalAmount),
		observability.F("vendors", len(entity.VendorStatus)),
	)
	return entity, nil
}

// buildItems validates every requested line and returns price/name
// snapshots plus the distinct vendor ids in first-seen order. No stock is
// mutated; availability is checked so a short line rejects the whole order.
func (s *Service) buildItems(ctx context.Context, inputs []ItemInput) ([]domain.Item, []string, error) {
	items := make([]domain.Item, 0, len(inputs))
	vendors := make([]string, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))

	for _, in := range inputs {
		if in.ProductID == "" {
			return nil, nil, domain.ErrInvalidProduct
		}
		p, err := s.products.FindByID(ctx, in.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return nil, nil, fmt.Errorf("%w: %s", product.ErrNotFound, in.ProductID)
			}
			return nil, nil, fmt.Errorf("order: product lookup: %w", err)
		}
		if in.Quantity <= 0 {
			return nil, nil, domain.ErrInvalidQuantity
		}

		rec, err := s.ledger.FindByProduct(ctx, in.ProductID)
		if err != nil && !errors.Is(err, inventory.ErrNotFound) {
			return nil, nil, fmt.Errorf("order: inventory lookup: %w", err)
		}
		if rec == nil || rec.StockQuantity < in.Quantity {
			return nil, nil, fmt.Errorf("%w: %s", inventory.ErrInsufficientStock, p.Name)
		}

		items = append(items, domain.Item{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    in.Quantity,
			UnitPrice:   p.Price,
		})
		if _, ok := seen[p.VendorID]; !ok {
			seen[p.VendorID] = struct{}{}
			vendors = append(vendors, p.VendorID)
		}
	}
	return items, vendors, nil
}

// uniqueCode draws codes until one is absent from the store. The keyspace
// (10^8) dwarfs any realistic order volume, so the loop terminates almost
// always on the first draw.
func (s *Service) uniqueCode(ctx context.Context) (string, error) {
	for {
		code := s.codeGen.NewCode()
		taken, err := s.repo.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("order: code lookup: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
}

// Dispatch moves a Pending order to Dispatched and deducts stock for every
// line. The pass is all-or-nothing: items are pre-validated before any
// write, the status transition claims the order via compare-and-swap, and
// if a deduction still fails against a concurrent consumer the applied
// deltas are compensated and the claim reverted.
func (s *Service) Dispatch(ctx context.Context, orderID string) (*domain.Order, error) {
	logger := logctx.FromOr(ctx, s.log)
	ctx, span := s.tel.Tracer().Start(ctx, spanPrefix+"Dispatch",
		attribute.String("order.id", orderID),
	)
	defer span.End()

	ord, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !ord.Status.Dispatchable() {
		return nil, domain.ErrInvalidState
	}

	// Pre-validation pass: no writes until every line clears.
	ledgerIDs := make(map[string]string, len(ord.Items))
	for _, it := range ord.Items {
		p, err := s.products.FindByID(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", product.ErrNotFound, it.ProductID)
			}
			return nil, fmt.Errorf("order: product lookup: %w", err)
		}
		rec, err := s.ledger.FindByProduct(ctx, it.ProductID)
		if err != nil && !errors.Is(err, inventory.ErrNotFound) {
			return nil, fmt.Errorf("order: inventory lookup: %w", err)
		}
		if rec == nil || rec.StockQuantity < it.Quantity {
			s.tel.Metrics().Counter(observability.MDispatchConflicts).Add(1)
			return nil, fmt.Errorf("%w: %s", inventory.ErrInsufficientStock, p.Name)
		}
		ledgerIDs[it.ProductID] = rec.ID
	}

	// Claim the transition; a concurrent dispatch loses here with
	// ErrInvalidState.
	if err := s.repo.UpdateStatus(ctx, orderID, domain.StatusPending, domain.StatusDispatched); err != nil {
		return nil, err
	}

	type applied struct {
		ledgerID string
		quantity int
	}
	var done []applied
	for _, it := range ord.Items {
		if _, err := s.ledger.ApplyDelta(ctx, ledgerIDs[it.ProductID], -it.Quantity); err != nil {
			// A concurrent consumer drained this product between the
			// pre-check and the commit. Compensate and revert the claim.
			for _, a := range done {
				if _, cerr := s.ledger.ApplyDelta(ctx, a.ledgerID, a.quantity); cerr != nil {
					logger.Error("dispatch_compensation_failed",
						observability.F("order_id", orderID),
						observability.F("inventory_id", a.ledgerID),
						observability.F("error", cerr.Error()),
					)
				}
			}
			if rerr := s.repo.UpdateStatus(ctx, orderID, domain.StatusDispatched, domain.StatusPending); rerr != nil {
				logger.Error("dispatch_revert_failed",
					observability.F("order_id", orderID),
					observability.F("error", rerr.Error()),
				)
			}
			s.tel.Metrics().Counter(observability.MDispatchConflicts).Add(1)
			return nil, fmt.Errorf("order: dispatch: %w", err)
		}
		done = append(done, applied{ledgerID: ledgerIDs[it.ProductID], quantity: it.Quantity})
	}

	s.tel.Metrics().Counter(observability.MOrdersDispatched).Add(1)
	logger.Info("order_dispatched",
		observability.F("order_id", orderID),
		observability.F("items", len(ord.Items)),
	)
	return s.repo.FindByID(ctx, orderID)
}

// UpdateVendorStatus sets one vendor's fulfilment sub-status and recomputes
// the order-level roll-up: all vendors delivered makes the order Delivered
// (and notifies the customer), a strict subset makes it PartiallyDelivered.
func (s *Service) UpdateVendorStatus(ctx context.Context, orderID, vendorID string, status domain.VendorStatus) (*domain.Order, error) {
	logger := logctx.FromOr(ctx, s.log)

	if !status.Valid() {
		return nil, domain.ErrBadVendorStatus
	}
	ord, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if ord.Status.Terminal() {
		return nil, domain.ErrInvalidState
	}

	delivered, err := ord.SetVendorStatus(vendorID, status)
	if err != nil {
		return nil, err
	}
	// The replace is conditional on the snapshot read above; a concurrent
	// roll-up or transition wins and this caller gets ErrInvalidState.
	if err := s.repo.Update(ctx, ord); err != nil {
		return nil, err
	}

	if delivered {
		s.notifier.Notify(ctx, ord.CustomerID, fmt.Sprintf("Order %s has been delivered.", ord.Code))
	}
	logger.Info("vendor_status_updated",
		observability.F("order_id", orderID),
		observability.F("vendor_id", vendorID),
		observability.F("vendor_status", string(status)),
		observability.F("order_status", string(ord.Status)),
	)
	return s.repo.FindByID(ctx, orderID)
}

// RequestCancellation is the first phase of the cancellation protocol.
// Dispatched and delivered orders are past cancellation; everything else
// moves to CancellationRequested and every administrator and CSR is
// notified to review the request.
func (s *Service) RequestCancellation(ctx context.Context, orderID string) (*domain.Order, error) {
	logger := logctx.FromOr(ctx, s.log)

	ord, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !ord.Status.Cancellable() {
		return nil, domain.ErrInvalidState
	}
	if err := s.repo.UpdateStatus(ctx, orderID, ord.Status, domain.StatusCancellationRequested); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Order %s has a cancellation request.", ord.Code)
	for _, role := range []user.Role{user.RoleAdministrator, user.RoleCSR} {
		staff, err := s.users.FindByRole(ctx, role)
		if err != nil {
			logger.Warn("cancellation_fanout_lookup_failed",
				observability.F("role", string(role)),
				observability.F("error", err.Error()),
			)
			continue
		}
		for _, u := range staff {
			s.notifier.Notify(ctx, u.ID, message)
		}
	}

	logger.Info("order_cancellation_requested", observability.F("order_id", orderID))
	return s.repo.FindByID(ctx, orderID)
}

// ConfirmCancellation is the second phase: only orders already in
// CancellationRequested can be cancelled. Nothing was deducted at
// placement, so no inventory is restored.
func (s *Service) ConfirmCancellation(ctx context.Context, orderID string) (*domain.Order, error) {
	logger := logctx.FromOr(ctx, s.log)

	ord, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if ord.Status != domain.StatusCancellationRequested {
		return nil, domain.ErrInvalidState
	}
	if err := s.repo.UpdateStatus(ctx, orderID, domain.StatusCancellationRequested, domain.StatusCancelled); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, ord.CustomerID, fmt.Sprintf("Order %s has been cancelled.", ord.Code))
	logger.Info("order_cancelled", observability.F("order_id", orderID))
	return s.repo.FindByID(ctx, orderID)
}

type UpdateOrderInput struct {
	Items           []ItemInput
	ShippingAddress *AddressInput
}

// UpdateOrder replaces the order lines and/or the shipping address.
// Replacement items are re-validated exactly as at placement and the total
// recomputed. Orders past Processing can no longer be edited.
func (s *Service) UpdateOrder(ctx context.Context, orderID string, input UpdateOrderInput) (*domain.Order, error) {
	logger := logctx.FromOr(ctx, s.log)

	ord, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !ord.Status.Editable() {
		return nil, domain.ErrInvalidState
	}

	if len(input.Items) > 0 {
		items, vendors, err := s.buildItems(ctx, input.Items)
		if err != nil {
			return nil, err
		}
		if err := ord.ReplaceItems(items, vendors); err != nil {
			return nil, err
		}
	}
	if input.ShippingAddress != nil {
		ord.SetShippingAddress(domain.Address{
			Street:  input.ShippingAddress.Street,
			City:    input.ShippingAddress.City,
			ZipCode: input.ShippingAddress.ZipCode,
		})
	}
	ord.Touch()

	if err := s.repo.Update(ctx, ord); err != nil {
		return nil, err
	}
	logger.Info("order_updated",
		observability.F("order_id", orderID),
		observability.F("total_amount", ord.TotalAmount),
	)
	return s.repo.FindByID(ctx, orderID)
}

// Get returns one order with customer and vendor display names resolved.
func (s *Service) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	ord, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.enrich(ctx, []*domain.Order{ord}); err != nil {
		return nil, err
	}
	return ord, nil
}

// List returns a page of all orders, enriched with display names.
func (s *Service) List(ctx context.Context, page, pageSize int) ([]*domain.Order, error) {
	page, pageSize = normalizePage(page, pageSize)
	orders, err := s.repo.Find(ctx, domain.Filter{}, page, pageSize)
	if err != nil {
		return nil, err
	}
	if err := s.enrich(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListByCustomer returns a page of the customer's orders.
func (s *Service) ListByCustomer(ctx context.Context, customerID string, page, pageSize int) ([]*domain.Order, error) {
	if customerID == "" {
		return nil, domain.ErrInvalidCustomer
	}
	page, pageSize = normalizePage(page, pageSize)
	orders, err := s.repo.Find(ctx, domain.Filter{CustomerID: customerID}, page, pageSize)
	if err != nil {
		return nil, err
	}
	if err := s.enrich(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListByVendor returns a page of orders containing the vendor's products,
// with foreign line items stripped: a vendor never sees another vendor's
// lines or pricing inside a shared order. Orders left with no matching
// lines are dropped from the result.
func (s *Service) ListByVendor(ctx context.Context, vendorID string, page, pageSize int) ([]*domain.Order, error) {
	if vendorID == "" {
		return nil, domain.ErrVendorNotInOrder
	}
	page, pageSize = normalizePage(page, pageSize)
	orders, err := s.repo.Find(ctx, domain.Filter{VendorID: vendorID}, page, pageSize)
	if err != nil {
		return nil, err
	}

	filtered := orders[:0]
	for _, ord := range orders {
		kept := make([]domain.Item, 0, len(ord.Items))
		for _, it := range ord.Items {
			p, err := s.products.FindByID(ctx, it.ProductID)
			if err != nil {
				if errors.Is(err, product.ErrNotFound) {
					continue
				}
				return nil, fmt.Errorf("order: product lookup: %w", err)
			}
			if p.VendorID == vendorID {
				kept = append(kept, it)
			}
		}
		if len(kept) == 0 {
			continue
		}
		ord.Items = kept
		filtered = append(filtered, ord)
	}

	if err := s.enrich(ctx, filtered); err != nil {
		return nil, err
	}
	return filtered, nil
}

// MarkVendorRated flags the vendor's entry on the order as rated. Used by
// the rating service once a customer reviews a vendor for an order.
func (s *Service) MarkVendorRated(ctx context.Context, orderID, vendorID string) error {
	ord, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	entry := ord.VendorEntry(vendorID)
	if entry == nil {
		return domain.ErrVendorNotInOrder
	}
	entry.Rated = true
	ord.Touch()
	return s.repo.Update(ctx, ord)
}

// enrich resolves customer and vendor display names at read time. Names
// are never stored with the order; a missing user simply leaves the name
// blank.
func (s *Service) enrich(ctx context.Context, orders []*domain.Order) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichWorkers)

	for _, ord := range orders {
		g.Go(func() error {
			u, err := s.users.FindByID(ctx, ord.CustomerID)
			if err != nil {
				if errors.Is(err, user.ErrNotFound) {
					return nil
				}
				return err
			}
			ord.CustomerName = u.Name
			return nil
		})
		for i := range ord.VendorStatus {
			entry := &ord.VendorStatus[i]
			g.Go(func() error {
				u, err := s.users.FindByID(ctx, entry.VendorID)
				if err != nil {
					if errors.Is(err, user.ErrNotFound) {
						return nil
					}
					return err
				}
				entry.VendorName = u.Name
				return nil
			})
		}
	}
	return g.Wait()
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return page, pageSize
}
