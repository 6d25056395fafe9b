package cart

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"regexp"
	"sync"

	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const lockStripes = 64

var sessionPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,128}$`)

// Service is the storefront cart, keyed by an opaque session id.
type Service interface {
	Get(ctx context.Context, sessionID string) (*CartDTO, error)
	Add(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) (*CartDTO, error)
	Increment(ctx context.Context, sessionID string, productID uuid.UUID) (*CartDTO, error)
	Decrement(ctx context.Context, sessionID string, productID uuid.UUID) (*CartDTO, error)
	Remove(ctx context.Context, sessionID string, productID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, sessionID string) error
	Quote(ctx context.Context, sessionID string, method enums.ShippingMethod) (*CartDTO, error)
	Checkout(ctx context.Context, sessionID string, input CheckoutInput) (*orders.OrderDTO, error)
}

// ProductReader loads live catalog rows.
type ProductReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// OrderPlacer turns a priced cart into an order.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, input orders.PlaceOrderInput) (*orders.OrderDTO, error)
}

// CheckoutInput is the shopper's delivery details.
type CheckoutInput struct {
	Name           string
	Phone          string
	Address        string
	ShippingMethod enums.ShippingMethod
	DeliveryCost   *decimal.Decimal
}

type service struct {
	store    Store
	products ProductReader
	orders   OrderPlacer
	logg     *logger.Logger

	loads singleflight.Group
	locks [lockStripes]sync.Mutex
}

func NewService(store Store, products ProductReader, placer OrderPlacer, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if placer == nil {
		return nil, fmt.Errorf("order placer required")
	}
	return &service{store: store, products: products, orders: placer, logg: logg}, nil
}

// ValidSession reports whether id is usable as a cart session.
func ValidSession(id string) bool {
	return sessionPattern.MatchString(id)
}

func (s *service) Get(ctx context.Context, sessionID string) (*CartDTO, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	dto := NewCartDTO(c)
	return &dto, nil
}

func (s *service) Add(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) (*CartDTO, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.Validation("invalid item", pkgerrors.Field("productId", "productId is required"))
	}
	if quantity < 0 {
		return nil, pkgerrors.Validation("invalid item", pkgerrors.Field("quantity", "quantity must be positive"))
	}
	return s.mutate(ctx, sessionID, func(c *Cart) error {
		snapshot, err := s.snapshot(ctx, productID)
		if err != nil {
			return err
		}
		return c.AddOrIncrement(snapshot, quantity)
	})
}

func (s *service) Increment(ctx context.Context, sessionID string, productID uuid.UUID) (*CartDTO, error) {
	return s.mutate(ctx, sessionID, func(c *Cart) error {
		return c.Increment(productID)
	})
}

func (s *service) Decrement(ctx context.Context, sessionID string, productID uuid.UUID) (*CartDTO, error) {
	return s.mutate(ctx, sessionID, func(c *Cart) error {
		return c.Decrement(productID)
	})
}

func (s *service) Remove(ctx context.Context, sessionID string, productID uuid.UUID) (*CartDTO, error) {
	return s.mutate(ctx, sessionID, func(c *Cart) error {
		if _, ok := c.Items[productID]; !ok {
			return ErrItemNotFound
		}
		c.Remove(productID)
		return nil
	})
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	if !ValidSession(sessionID) {
		return invalidSession()
	}
	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.store.Delete(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// Quote prices the cart for method. An unset method returns the cart without
// a quote.
func (s *service) Quote(ctx context.Context, sessionID string, method enums.ShippingMethod) (*CartDTO, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	dto := NewCartDTO(c)
	if !method.IsSet() {
		return &dto, nil
	}
	quote, err := pricing.QuoteLines(c.Lines(), method)
	if err != nil {
		return nil, pkgerrors.Validation("invalid shipping method", pkgerrors.Field("shippingMethod", err.Error()))
	}
	dto.Quote = &quote
	return &dto, nil
}

// Checkout places the cart as an order at the prices the shopper saw. The cart
// is cleared only after the order commits. When the catalog moved underneath
// the cart, its lines are refreshed so the shopper can review and retry.
func (s *service) Checkout(ctx context.Context, sessionID string, input CheckoutInput) (*orders.OrderDTO, error) {
	if !ValidSession(sessionID) {
		return nil, invalidSession()
	}
	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if c.IsEmpty() {
		return nil, pkgerrors.Validation("cart is empty", pkgerrors.Field("items", "cart has no items"))
	}

	lines := c.Lines()
	items := make([]orders.ItemInput, 0, len(lines))
	for _, line := range lines {
		items = append(items, orders.ItemInput{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	placement := orders.PlaceOrderInput{
		Items:          items,
		Name:           input.Name,
		Phone:          input.Phone,
		Address:        input.Address,
		ShippingMethod: input.ShippingMethod,
		DeliveryCost:   input.DeliveryCost,
		SessionID:      sessionID,
	}
	method := input.ShippingMethod
	if !method.IsSet() && input.DeliveryCost != nil {
		if resolved, err := pricing.MethodForCost(*input.DeliveryCost); err == nil {
			method = resolved
		}
	}
	if quote, err := pricing.QuoteLines(lines, method); err == nil {
		expected := quote.Total
		placement.ExpectedTotal = &expected
	}

	order, err := s.orders.PlaceOrder(ctx, placement)
	if err != nil {
		if isCatalogDrift(err) {
			s.refresh(ctx, c)
		}
		return nil, err
	}

	if err := s.store.Delete(ctx, sessionID); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithSessionID(ctx, sessionID), "clear cart after checkout", err)
	}
	if s.logg != nil {
		logCtx := s.logg.WithOrderID(s.logg.WithSessionID(ctx, sessionID), order.ID.String())
		s.logg.Info(logCtx, "cart checked out")
	}
	return order, nil
}

func (s *service) mutate(ctx context.Context, sessionID string, fn func(c *Cart) error) (*CartDTO, error) {
	if !ValidSession(sessionID) {
		return nil, invalidSession()
	}
	mu := s.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if err := fn(c); err != nil {
		return nil, mapCartError(err)
	}
	if err := s.store.Save(ctx, c); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	dto := NewCartDTO(c)
	return &dto, nil
}

// load coalesces concurrent reads of the same session.
func (s *service) load(ctx context.Context, sessionID string) (*Cart, error) {
	if !ValidSession(sessionID) {
		return nil, invalidSession()
	}
	// the shared load outlives any one caller's cancellation
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.loads.Do(sessionID, func() (any, error) {
		return s.store.Load(loadCtx, sessionID)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return v.(*Cart), nil
}

func (s *service) snapshot(ctx context.Context, productID uuid.UUID) (Snapshot, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Snapshot{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return Snapshot{
		ProductID: product.ID,
		Name:      product.Name,
		Media:     product.Media,
		Unit:      product.Unit(),
	}, nil
}

// refresh re-reads every line's product, clamps quantities to the new stock
// and drops lines that can no longer be bought. Failures are logged only.
func (s *service) refresh(ctx context.Context, c *Cart) {
	for id, line := range c.Items {
		product, err := s.products.FindByID(ctx, id)
		if err != nil || !product.IsActive || product.StockQuantity < 1 {
			delete(c.Items, id)
			continue
		}
		line.Name = product.Name
		line.Media = product.Media
		line.Unit = product.Unit()
		if line.Quantity > product.StockQuantity {
			line.Quantity = product.StockQuantity
		}
		c.Items[id] = line
	}
	c.touch()
	if err := s.store.Save(ctx, c); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithSessionID(ctx, c.SessionID), "refresh cart after checkout conflict", err)
	}
}

func (s *service) lockFor(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return &s.locks[h.Sum32()%lockStripes]
}

func mapCartError(err error) error {
	switch {
	case errors.Is(err, ErrStockExceeded):
		return cartConflict(err, orders.ReasonStockExceeded)
	case errors.Is(err, ErrOutOfStock):
		return cartConflict(err, "out_of_stock")
	case errors.Is(err, ErrQuantityFloor):
		return cartConflict(err, "quantity_floor")
	case errors.Is(err, ErrItemNotFound):
		return pkgerrors.New(pkgerrors.CodeNotFound, err.Error())
	}
	return err
}

func cartConflict(err error, reason string) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, err.Error()).
		WithDetails(map[string]any{"reason": reason})
}

func isCatalogDrift(err error) bool {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		return false
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		return false
	}
	switch details["reason"] {
	case orders.ReasonPriceChanged, orders.ReasonStockExceeded, orders.ReasonProductUnavailable:
		return true
	}
	return false
}

func invalidSession() error {
	return pkgerrors.Validation("invalid cart session",
		pkgerrors.Field("session", "session id must be 8 to 128 letters, digits, dashes or underscores"))
}
