package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/angelmondragon/storefront-backend/pkg/pricing"
)

type orderItemRequest struct {
	Product  string `json:"product" validate:"required"`
	Quantity int    `json:"quantity"`
}

func toItemInputs(items []orderItemRequest) ([]orders.ItemInput, error) {
	out := make([]orders.ItemInput, 0, len(items))
	var fields []pkgerrors.FieldError
	for i, item := range items {
		id, err := parseUUIDField(item.Product, fmt.Sprintf("items[%d].product", i))
		if err != nil {
			fields = append(fields, pkgerrors.Fields(err)...)
			continue
		}
		out = append(out, orders.ItemInput{ProductID: id, Quantity: item.Quantity})
	}
	if len(fields) > 0 {
		return nil, pkgerrors.Validation("validation failed", fields...)
	}
	return out, nil
}

func parseShippingField(raw *string) (enums.ShippingMethod, error) {
	if raw == nil {
		return enums.ShippingMethodUnset, nil
	}
	method, err := enums.ParseShippingMethod(*raw)
	if err != nil {
		return enums.ShippingMethodUnset, pkgerrors.Validation("validation failed",
			pkgerrors.Field("shippingMethod", "must be local or remote"))
	}
	return method, nil
}

// ListOrders handles GET /api/v1/orders.
func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "order")
			return
		}
		filters, params, err := parseOrderListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.List(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, result.Items, result.Pagination)
	}
}

func parseOrderListQuery(r *http.Request) (orders.ListFilters, pagination.Params, error) {
	filters := orders.ListFilters{Search: validators.ParseSearch(r)}

	params, err := validators.ParsePagination(r)
	if err != nil {
		return filters, params, err
	}

	query := r.URL.Query()
	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(strings.ToLower(raw))
		if err != nil {
			return filters, params, pkgerrors.Validation("invalid query parameter", pkgerrors.Field("status", "unknown order status"))
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(query.Get("paymentStatus")); raw != "" {
		status, err := enums.ParsePaymentStatus(strings.ToLower(raw))
		if err != nil {
			return filters, params, pkgerrors.Validation("invalid query parameter", pkgerrors.Field("paymentStatus", "unknown payment status"))
		}
		filters.PaymentStatus = &status
	}
	if filters.From, filters.To, err = validators.ParseDateRange(r, "fromDate", "toDate"); err != nil {
		return filters, params, err
	}
	if filters.CustomerID, err = validators.ParseQueryUUID(r, "customer"); err != nil {
		return filters, params, err
	}
	if filters.ProductID, err = validators.ParseQueryUUID(r, "product"); err != nil {
		return filters, params, err
	}
	if filters.MinAmount, filters.MaxAmount, err = validators.ParseAmountRange(r, "minAmount", "maxAmount"); err != nil {
		return filters, params, err
	}
	return filters, params, nil
}

// GetOrder handles GET /api/v1/orders/{id}.
func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "order")
			return
		}
		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type placeOrderRequest struct {
	Items          []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	Name           string             `json:"name"`
	Phone          string             `json:"phone"`
	Address        string             `json:"address"`
	ShippingMethod *string            `json:"shippingMethod"`
	DeliveryCost   *decimal.Decimal   `json:"deliveryCost"`
	ExpectedTotal  *decimal.Decimal   `json:"expectedTotal"`
}

// PlaceOrder handles POST /api/v1/orders.
func PlaceOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "order")
			return
		}
		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := toItemInputs(payload.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := parseShippingField(payload.ShippingMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.PlaceOrder(r.Context(), orders.PlaceOrderInput{
			Items:          items,
			Name:           payload.Name,
			Phone:          payload.Phone,
			Address:        payload.Address,
			ShippingMethod: method,
			DeliveryCost:   payload.DeliveryCost,
			ExpectedTotal:  payload.ExpectedTotal,
			SessionID:      middleware.CartSessionFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusCreated, order, "order placed")
	}
}

// DeleteOrder handles DELETE /api/v1/orders/{id}.
func DeleteOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "order")
			return
		}
		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, nil, "order deleted")
	}
}

type statusRequest struct {
	Status        *string `json:"status"`
	PaymentStatus *string `json:"paymentStatus"`
}

func (p statusRequest) toInput() (orders.StatusInput, error) {
	var input orders.StatusInput
	var fields []pkgerrors.FieldError
	if p.Status != nil {
		status, err := enums.ParseOrderStatus(strings.ToLower(strings.TrimSpace(*p.Status)))
		if err != nil {
			fields = append(fields, pkgerrors.Field("status", "unknown order status"))
		} else {
			input.Status = &status
		}
	}
	if p.PaymentStatus != nil {
		status, err := enums.ParsePaymentStatus(strings.ToLower(strings.TrimSpace(*p.PaymentStatus)))
		if err != nil {
			fields = append(fields, pkgerrors.Field("paymentStatus", "unknown payment status"))
		} else {
			input.PaymentStatus = &status
		}
	}
	if len(fields) > 0 {
		return input, pkgerrors.Validation("validation failed", fields...)
	}
	return input, nil
}

type adjustmentRequest struct {
	Type   string           `json:"type" validate:"required"`
	Amount *decimal.Decimal `json:"amount" validate:"required"`
	Reason *string          `json:"reason" validate:"omitempty,max=500"`
}

func (p adjustmentRequest) toAdjustment() (pricing.Adjustment, error) {
	kind, err := enums.ParseAdjustmentType(strings.ToLower(strings.TrimSpace(p.Type)))
	if err != nil {
		return pricing.Adjustment{}, pkgerrors.Validation("validation failed",
			pkgerrors.Field("type", "must be discount, fee or refund"))
	}
	return pricing.Adjustment{Type: kind, Amount: *p.Amount}, nil
}

type updateItemsRequest struct {
	Items     []orderItemRequest `json:"items" validate:"dive"`
	NewAmount *decimal.Decimal   `json:"newAmount"`
}

// PatchOrder handles PATCH /api/v1/orders/{id}/{type} where type selects a
// status change, a price adjustment or an item edit.
func PatchOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "order")
			return
		}
		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithOrderID(ctx, id.String())
			r = r.WithContext(ctx)
		}

		var (
			order   *orders.OrderDTO
			message string
		)
		switch kind := chi.URLParam(r, "type"); kind {
		case "status":
			order, err = patchStatus(r, svc, id)
			message = "order status updated"
		case "adjustment":
			order, err = patchAdjustment(r, svc, id)
			message = "order adjusted"
		case "items":
			order, err = patchItems(r, svc, id)
			message = "order items updated"
		default:
			err = pkgerrors.New(pkgerrors.CodeNotFound, "unknown order update type").
				WithDetails(map[string]any{"type": kind})
		}
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, order, message)
	}
}

func patchStatus(r *http.Request, svc orders.Service, id uuid.UUID) (*orders.OrderDTO, error) {
	var payload statusRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		return nil, err
	}
	input, err := payload.toInput()
	if err != nil {
		return nil, err
	}
	return svc.UpdateStatus(r.Context(), id, input)
}

func patchAdjustment(r *http.Request, svc orders.Service, id uuid.UUID) (*orders.OrderDTO, error) {
	var payload adjustmentRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		return nil, err
	}
	adj, err := payload.toAdjustment()
	if err != nil {
		return nil, err
	}
	return svc.ApplyAdjustment(r.Context(), id, orders.AdjustmentInput{Adjustment: adj, Reason: payload.Reason})
}

func patchItems(r *http.Request, svc orders.Service, id uuid.UUID) (*orders.OrderDTO, error) {
	var payload updateItemsRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		return nil, err
	}
	items, err := toItemInputs(payload.Items)
	if err != nil {
		return nil, err
	}
	return svc.UpdateItems(r.Context(), id, orders.UpdateItemsInput{Items: items, NewAmount: payload.NewAmount})
}

// PreviewOrderAdjustment handles POST /api/v1/orders/{id}/adjustment/preview.
func PreviewOrderAdjustment(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "order")
			return
		}
		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload adjustmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		adj, err := payload.toAdjustment()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		preview, err := svc.PreviewAdjustment(r.Context(), id, adj)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, preview)
	}
}
