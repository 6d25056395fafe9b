package orders

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/angelmondragon/storefront-backend/pkg/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ReasonStockExceeded      = "stock_exceeded"
	ReasonProductUnavailable = "product_unavailable"
	ReasonPriceChanged       = "price_changed"
	ReasonInvalidTransition  = "invalid_transition"
	ReasonNotEditable        = "not_editable"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{6,15}$`)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines order placement and back-office order mutations.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, input StatusInput) (*OrderDTO, error)
	PreviewAdjustment(ctx context.Context, id uuid.UUID, adj pricing.Adjustment) (*AdjustmentPreviewDTO, error)
	ApplyAdjustment(ctx context.Context, id uuid.UUID, input AdjustmentInput) (*OrderDTO, error)
	UpdateItems(ctx context.Context, id uuid.UUID, input UpdateItemsInput) (*OrderDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
}

// ItemInput is one requested line.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// PlaceOrderInput carries a storefront order. The shipping tier comes from
// ShippingMethod, or from DeliveryCost for clients that only send the fee.
// ExpectedTotal, when set, must match the server-side total.
type PlaceOrderInput struct {
	Items          []ItemInput
	Name           string
	Phone          string
	Address        string
	ShippingMethod enums.ShippingMethod
	DeliveryCost   *decimal.Decimal
	ExpectedTotal  *decimal.Decimal
	SessionID      string
}

// StatusInput changes the lifecycle and/or payment status.
type StatusInput struct {
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
}

type AdjustmentInput struct {
	Adjustment pricing.Adjustment
	Reason     *string
}

// UpdateItemsInput lists the lines to keep. Lines missing from Items are
// removed; NewAmount, when set, must equal the recalculated subtotal.
type UpdateItemsInput struct {
	Items     []ItemInput
	NewAmount *decimal.Decimal
}

// ServiceParams wires the order service.
type ServiceParams struct {
	Repository Repository
	Tx         txRunner
	Outbox     outboxPublisher
	Inventory  Inventory
	Customers  CustomerDirectory
	Metrics    *metrics.OrderMetrics
	Logger     *logger.Logger
}

type service struct {
	repo      Repository
	tx        txRunner
	outbox    outboxPublisher
	inventory Inventory
	customers CustomerDirectory
	metrics   *metrics.OrderMetrics
	logg      *logger.Logger
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory required")
	}
	if params.Customers == nil {
		return nil, fmt.Errorf("customer directory required")
	}
	return &service{
		repo:      params.Repository,
		tx:        params.Tx,
		outbox:    params.Outbox,
		inventory: params.Inventory,
		customers: params.Customers,
		metrics:   params.Metrics,
		logg:      params.Logger,
	}, nil
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderDTO, error) {
	method, err := validatePlaceOrder(&input)
	if err != nil {
		s.metrics.IncRejected("validation")
		return nil, err
	}

	var placed *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ids := make([]uuid.UUID, 0, len(input.Items))
		for _, item := range input.Items {
			ids = append(ids, item.ProductID)
		}
		products, err := s.inventory.Snapshot(ctx, tx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
		}

		items := make([]models.OrderItem, 0, len(input.Items))
		for _, req := range input.Items {
			product, ok := products[req.ProductID]
			if !ok || !product.IsActive {
				return stateConflict("product is no longer available", ReasonProductUnavailable, map[string]any{
					"product": req.ProductID,
				})
			}
			if req.Quantity > product.StockQuantity {
				return stockExceeded(req.ProductID, product.StockQuantity)
			}
			items = append(items, models.OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				UnitType:  product.UnitType,
				Price:     product.Price,
				Quantity:  req.Quantity,
			})
		}

		quote, err := pricing.QuoteLines(items, method)
		if err != nil {
			return pkgerrors.Validation("invalid order", pkgerrors.Field("shippingMethod", err.Error()))
		}
		if input.ExpectedTotal != nil && !input.ExpectedTotal.Equal(quote.Total) {
			return stateConflict("order total changed since the cart was priced", ReasonPriceChanged, map[string]any{
				"expectedTotal": input.ExpectedTotal.String(),
				"total":         quote.Total.String(),
			})
		}

		for _, item := range items {
			ok, err := s.inventory.Take(ctx, tx, item.ProductID, item.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
			}
			if !ok {
				return stockExceeded(item.ProductID, products[item.ProductID].StockQuantity)
			}
		}

		customer, err := s.customers.UpsertByPhone(ctx, tx, input.Name, input.Phone, input.Address)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert customer")
		}

		order := &models.Order{
			CustomerID:     customer.ID,
			Name:           input.Name,
			Phone:          input.Phone,
			Address:        input.Address,
			ShippingMethod: method,
			Status:         enums.OrderStatusPending,
			PaymentStatus:  enums.PaymentStatusUnpaid,
			Subtotal:       quote.Subtotal,
			ShippingCost:   quote.ShippingCost,
			Total:          quote.Total,
			Items:          items,
		}
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		placed = order

		var actor *outbox.ActorRef
		if input.SessionID != "" {
			actor = outbox.Shopper(input.SessionID)
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actor,
			Data: payloads.OrderCreatedEvent{
				OrderID:        order.ID,
				CustomerID:     order.CustomerID,
				Phone:          order.Phone,
				ShippingMethod: order.ShippingMethod,
				Items:          eventLines(order.Items),
				Subtotal:       order.Subtotal,
				ShippingCost:   order.ShippingCost,
				Total:          order.Total,
			},
		})
	})
	if err != nil {
		s.metrics.IncRejected(rejectionReason(err))
		return nil, asTyped(err, "place order")
	}

	total, _ := placed.Total.Float64()
	s.metrics.ObservePlaced(string(placed.ShippingMethod), total)
	if s.logg != nil {
		logCtx := s.logg.WithOrderID(ctx, placed.ID.String())
		s.logg.Info(s.logg.WithField(logCtx, "total", placed.Total.String()), "order placed")
	}
	return s.Get(ctx, placed.ID)
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, input StatusInput) (*OrderDTO, error) {
	if input.Status == nil && input.PaymentStatus == nil {
		return nil, pkgerrors.Validation("nothing to update",
			pkgerrors.Field("status", "status or paymentStatus is required"))
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.Validation("invalid status", pkgerrors.Field("status", "unknown order status"))
	}
	if input.PaymentStatus != nil && !input.PaymentStatus.IsValid() {
		return nil, pkgerrors.Validation("invalid status", pkgerrors.Field("paymentStatus", "unknown payment status"))
	}

	var changedTo enums.OrderStatus
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}

		updates := map[string]any{}
		previous := order.Status
		restocked := false
		if input.Status != nil && *input.Status != order.Status {
			if !order.Status.CanTransitionTo(*input.Status) {
				return stateConflict(
					fmt.Sprintf("cannot move order from %s to %s", order.Status, *input.Status),
					ReasonInvalidTransition,
					map[string]any{"from": order.Status, "to": *input.Status},
				)
			}
			if *input.Status == enums.OrderStatusCancelled {
				if err := s.restock(ctx, tx, order.Items); err != nil {
					return err
				}
				restocked = true
			}
			updates["status"] = *input.Status
			order.Status = *input.Status
			changedTo = *input.Status
		}
		if input.PaymentStatus != nil && *input.PaymentStatus != order.PaymentStatus {
			updates["payment_status"] = *input.PaymentStatus
			order.PaymentStatus = *input.PaymentStatus
		}
		if len(updates) == 0 {
			return nil
		}
		updates["updated_at"] = time.Now().UTC()
		if err := repo.UpdateFields(ctx, id, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   id,
			Actor:         outbox.Admin(),
			Data: payloads.OrderStatusChangedEvent{
				OrderID:        id,
				PreviousStatus: previous,
				Status:         order.Status,
				PaymentStatus:  order.PaymentStatus,
				Restocked:      restocked,
				ChangedAt:      time.Now().UTC(),
			},
		})
	})
	if err != nil {
		return nil, asTyped(err, "update order status")
	}
	if changedTo != "" {
		s.metrics.IncTransition(string(changedTo))
	}
	return s.Get(ctx, id)
}

func (s *service) PreviewAdjustment(ctx context.Context, id uuid.UUID, adj pricing.Adjustment) (*AdjustmentPreviewDTO, error) {
	if err := validateAdjustment(adj); err != nil {
		return nil, err
	}
	order, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	adjusted := pricing.AdjustedTotal(order.Total, adj)
	return &AdjustmentPreviewDTO{
		BaseAmount:    order.Total,
		Type:          adj.Type,
		Amount:        adj.Amount,
		AdjustedTotal: adjusted,
		TotalChanged:  pricing.TotalChanged(order.Total, adjusted),
	}, nil
}

// ApplyAdjustment commits one adjustment against the stored total and records
// it in the adjustment history.
func (s *service) ApplyAdjustment(ctx context.Context, id uuid.UUID, input AdjustmentInput) (*OrderDTO, error) {
	if err := validateAdjustment(input.Adjustment); err != nil {
		return nil, err
	}
	reason := trimmedOrNil(input.Reason)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		if order.Status == enums.OrderStatusCancelled {
			return stateConflict("cancelled orders cannot be adjusted", ReasonNotEditable, map[string]any{"status": order.Status})
		}

		previous := order.Total
		next := pricing.AdjustedTotal(previous, input.Adjustment)
		record := &models.OrderAdjustment{
			OrderID:       id,
			Type:          input.Adjustment.Type,
			Amount:        input.Adjustment.Amount,
			Reason:        reason,
			PreviousTotal: previous,
			NewTotal:      next,
		}
		if err := repo.CreateAdjustment(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record adjustment")
		}
		if err := repo.UpdateFields(ctx, id, map[string]any{"total": next, "updated_at": time.Now().UTC()}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order total")
		}

		data := payloads.OrderAdjustedEvent{
			OrderID:       id,
			AdjustmentID:  record.ID,
			Type:          record.Type,
			Amount:        record.Amount,
			PreviousTotal: previous,
			NewTotal:      next,
		}
		if reason != nil {
			data.Reason = *reason
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderAdjusted,
			AggregateType: enums.AggregateOrder,
			AggregateID:   id,
			Actor:         outbox.Admin(),
			Data:          data,
		})
	})
	if err != nil {
		return nil, asTyped(err, "apply adjustment")
	}
	s.metrics.IncAdjustment(string(input.Adjustment.Type))
	return s.Get(ctx, id)
}

// UpdateItems reconciles the order's lines against input and moves stock by
// the per-product difference.
func (s *service) UpdateItems(ctx context.Context, id uuid.UUID, input UpdateItemsInput) (*OrderDTO, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.Validation("invalid items", pkgerrors.Field("items", "at least one item is required"))
	}
	if err := validateItemList(input.Items, 0); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		if !order.Status.IsEditable() {
			return stateConflict("order items can no longer be changed", ReasonNotEditable, map[string]any{"status": order.Status})
		}

		rec := NewReconciler(order.Items)
		requested := make(map[uuid.UUID]struct{}, len(input.Items))
		for i, item := range input.Items {
			requested[item.ProductID] = struct{}{}
			if !rec.UpdateQuantity(item.ProductID, item.Quantity) {
				return pkgerrors.Validation("invalid items",
					pkgerrors.Field(fmt.Sprintf("items[%d].product", i), "product is not part of this order"))
			}
		}
		for _, item := range rec.Items() {
			if _, ok := requested[item.ProductID]; !ok {
				rec.RemoveItem(item.ProductID)
			}
		}

		submission := rec.Submission()
		if len(submission) == 0 {
			return pkgerrors.Validation("invalid items", pkgerrors.Field("items", "an order must keep at least one item"))
		}
		recalculated := rec.RecalculatedTotal()
		if input.NewAmount != nil && !input.NewAmount.Equal(recalculated) {
			return pkgerrors.Validation("amount mismatch",
				pkgerrors.Field("newAmount", fmt.Sprintf("expected %s", recalculated.String())))
		}

		for productID, delta := range rec.StockDeltas(order.Items) {
			if delta > 0 {
				ok, err := s.inventory.Take(ctx, tx, productID, delta)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
				}
				if !ok {
					return stateConflict("not enough stock for the new quantity", ReasonStockExceeded, map[string]any{
						"product": productID,
					})
				}
				continue
			}
			if err := s.inventory.Release(ctx, tx, productID, -delta); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restock product")
			}
		}

		kept := make(map[uuid.UUID]int, len(submission))
		for _, item := range submission {
			kept[item.ItemID] = item.Quantity
		}
		var dropped []uuid.UUID
		for _, item := range order.Items {
			qty, ok := kept[item.ID]
			if !ok {
				dropped = append(dropped, item.ID)
				continue
			}
			if qty != item.Quantity {
				if err := repo.UpdateItemQuantity(ctx, item.ID, qty); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order item")
				}
			}
		}
		if err := repo.DeleteItems(ctx, dropped); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order items")
		}

		total := pricing.Total(recalculated, order.ShippingCost)
		if err := repo.UpdateFields(ctx, id, map[string]any{
			"subtotal":   recalculated,
			"total":      total,
			"updated_at": time.Now().UTC(),
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order totals")
		}

		lines := make([]payloads.OrderLine, 0, len(submission))
		for _, item := range submission {
			lines = append(lines, payloads.OrderLine{
				ProductID: item.ProductID,
				Name:      item.Name,
				Price:     item.Price,
				Quantity:  item.Quantity,
			})
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderItemsUpdated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   id,
			Actor:         outbox.Admin(),
			Data: payloads.OrderItemsUpdatedEvent{
				OrderID:       id,
				Items:         lines,
				PreviousTotal: order.Total,
				Subtotal:      recalculated,
				Total:         total,
			},
		})
	})
	if err != nil {
		return nil, asTyped(err, "update order items")
	}
	return s.Get(ctx, id)
}

// Delete removes the order. Stock held by an order that never shipped is
// returned first.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		restocked := false
		if order.Status.IsEditable() {
			if err := s.restock(ctx, tx, order.Items); err != nil {
				return err
			}
			restocked = true
		}
		if _, err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderDeleted,
			AggregateType: enums.AggregateOrder,
			AggregateID:   id,
			Actor:         outbox.Admin(),
			Data: payloads.OrderDeletedEvent{
				OrderID:   id,
				Status:    order.Status,
				Restocked: restocked,
				DeletedAt: time.Now().UTC(),
			},
		})
	})
	if err != nil {
		return asTyped(err, "delete order")
	}
	return nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (*ListResult, error) {
	rows, meta, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	items := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		items = append(items, NewOrderDTO(&rows[i]))
	}
	return &ListResult{Items: items, Pagination: meta}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	dto := NewOrderDTO(order)
	return &dto, nil
}

func (s *service) load(ctx context.Context, repo Repository, id uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) restock(ctx context.Context, tx *gorm.DB, items []models.OrderItem) error {
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if err := s.inventory.Release(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restock product")
		}
	}
	return nil
}

// validatePlaceOrder normalizes input in place and resolves the shipping tier.
func validatePlaceOrder(input *PlaceOrderInput) (enums.ShippingMethod, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Phone = normalizePhone(input.Phone)
	input.Address = strings.TrimSpace(input.Address)

	var fields []pkgerrors.FieldError
	if input.Name == "" {
		fields = append(fields, pkgerrors.Field("name", "name is required"))
	}
	if input.Phone == "" {
		fields = append(fields, pkgerrors.Field("phone", "phone is required"))
	} else if !phonePattern.MatchString(input.Phone) {
		fields = append(fields, pkgerrors.Field("phone", "phone must be 6 to 15 digits"))
	}
	if input.Address == "" {
		fields = append(fields, pkgerrors.Field("address", "address is required"))
	}
	if len(input.Items) == 0 {
		fields = append(fields, pkgerrors.Field("items", "at least one item is required"))
	} else if err := validateItemList(input.Items, 1); err != nil {
		fields = append(fields, pkgerrors.Fields(err)...)
	}

	method, methodErr := resolveShippingMethod(input.ShippingMethod, input.DeliveryCost)
	if methodErr != nil {
		fields = append(fields, *methodErr)
	}

	if len(fields) > 0 {
		return "", pkgerrors.Validation("invalid order", fields...)
	}
	return method, nil
}

func resolveShippingMethod(method enums.ShippingMethod, cost *decimal.Decimal) (enums.ShippingMethod, *pkgerrors.FieldError) {
	if method.IsSet() && !method.IsValid() {
		f := pkgerrors.Field("shippingMethod", "unknown shipping method")
		return "", &f
	}
	if cost != nil {
		fromCost, err := pricing.MethodForCost(*cost)
		if err != nil {
			f := pkgerrors.Field("deliveryCost", "delivery cost does not match a shipping tier")
			return "", &f
		}
		if method.IsSet() && method != fromCost {
			f := pkgerrors.Field("deliveryCost", "delivery cost does not match the shipping method")
			return "", &f
		}
		return fromCost, nil
	}
	if !method.IsSet() {
		f := pkgerrors.Field("shippingMethod", "shipping method is required")
		return "", &f
	}
	return method, nil
}

// validateItemList checks ids, duplicates and that every quantity is at least minQty.
func validateItemList(items []ItemInput, minQty int) error {
	var fields []pkgerrors.FieldError
	seen := make(map[uuid.UUID]struct{}, len(items))
	for i, item := range items {
		if item.ProductID == uuid.Nil {
			fields = append(fields, pkgerrors.Field(fmt.Sprintf("items[%d].product", i), "product is required"))
			continue
		}
		if _, dup := seen[item.ProductID]; dup {
			fields = append(fields, pkgerrors.Field(fmt.Sprintf("items[%d].product", i), "duplicate product"))
		}
		seen[item.ProductID] = struct{}{}
		if item.Quantity < minQty {
			fields = append(fields, pkgerrors.Field(fmt.Sprintf("items[%d].quantity", i), fmt.Sprintf("quantity must be at least %d", minQty)))
		}
	}
	if len(fields) > 0 {
		return pkgerrors.Validation("invalid items", fields...)
	}
	return nil
}

func validateAdjustment(adj pricing.Adjustment) error {
	switch err := pricing.ValidateAdjustment(adj); {
	case errors.Is(err, pricing.ErrInvalidAdjustmentType):
		return pkgerrors.Validation("invalid adjustment", pkgerrors.Field("type", "type must be discount, fee or refund"))
	case errors.Is(err, pricing.ErrNonPositiveAdjustment):
		return pkgerrors.Validation("invalid adjustment", pkgerrors.Field("amount", "amount must be greater than zero"))
	}
	return nil
}

func normalizePhone(phone string) string {
	return strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(phone))
}

func stateConflict(message, reason string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	details["reason"] = reason
	return pkgerrors.New(pkgerrors.CodeStateConflict, message).WithDetails(details)
}

func stockExceeded(productID uuid.UUID, available int) error {
	return stateConflict("quantity exceeds available stock", ReasonStockExceeded, map[string]any{
		"product":   productID,
		"available": available,
	})
}

func rejectionReason(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return string(pkgerrors.CodeInternal)
	}
	if details, ok := typed.Details().(map[string]any); ok {
		if reason, ok := details["reason"].(string); ok {
			return reason
		}
	}
	return strings.ToLower(string(typed.Code()))
}

func asTyped(err error, op string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

func eventLines(items []models.OrderItem) []payloads.OrderLine {
	lines := make([]payloads.OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, payloads.OrderLine{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitType:  item.UnitType,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}
	return lines
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
