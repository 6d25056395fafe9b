package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

func cartSession(r *http.Request) (string, error) {
	session := middleware.CartSessionFromContext(r.Context())
	if session == "" {
		return "", pkgerrors.Validation("cart session missing", pkgerrors.Field(middleware.CartSessionHeader, "is required"))
	}
	return session, nil
}

// GetCart handles GET /api/v1/cart. With ?shippingMethod the response carries
// a priced quote.
func GetCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "cart")
			return
		}
		session, err := cartSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := enums.ParseShippingMethod(r.URL.Query().Get("shippingMethod"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Validation("invalid query parameter",
				pkgerrors.Field("shippingMethod", "must be local or remote")))
			return
		}

		dto, err := svc.Quote(r.Context(), session, method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// ClearCart handles DELETE /api/v1/cart.
func ClearCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "cart")
			return
		}
		session, err := cartSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Clear(r.Context(), session); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, nil, "cart cleared")
	}
}

type addCartItemRequest struct {
	Product  string `json:"product" validate:"required"`
	Quantity *int   `json:"quantity" validate:"omitempty,min=1"`
}

// AddCartItem handles POST /api/v1/cart/items. Quantity defaults to 1.
func AddCartItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "cart")
			return
		}
		session, err := cartSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := parseUUIDField(payload.Product, "product")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quantity := 1
		if payload.Quantity != nil {
			quantity = *payload.Quantity
		}

		dto, err := svc.Add(r.Context(), session, productID, quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

type cartLineAction func(svc cart.Service, r *http.Request, session string, productID uuid.UUID) (*cart.CartDTO, error)

func cartLineHandler(svc cart.Service, logg *logger.Logger, action cartLineAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "cart")
			return
		}
		session, err := cartSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := action(svc, r, session, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// RemoveCartItem handles DELETE /api/v1/cart/items/{productId}.
func RemoveCartItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartLineHandler(svc, logg, func(svc cart.Service, r *http.Request, session string, productID uuid.UUID) (*cart.CartDTO, error) {
		return svc.Remove(r.Context(), session, productID)
	})
}

// IncrementCartItem handles POST /api/v1/cart/items/{productId}/increment.
func IncrementCartItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartLineHandler(svc, logg, func(svc cart.Service, r *http.Request, session string, productID uuid.UUID) (*cart.CartDTO, error) {
		return svc.Increment(r.Context(), session, productID)
	})
}

// DecrementCartItem handles POST /api/v1/cart/items/{productId}/decrement.
func DecrementCartItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return cartLineHandler(svc, logg, func(svc cart.Service, r *http.Request, session string, productID uuid.UUID) (*cart.CartDTO, error) {
		return svc.Decrement(r.Context(), session, productID)
	})
}

type checkoutRequest struct {
	Name           string           `json:"name"`
	Phone          string           `json:"phone"`
	Address        string           `json:"address"`
	ShippingMethod *string          `json:"shippingMethod"`
	DeliveryCost   *decimal.Decimal `json:"deliveryCost"`
}

// CheckoutCart handles POST /api/v1/cart/checkout.
func CheckoutCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "cart")
			return
		}
		session, err := cartSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := parseShippingField(payload.ShippingMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Checkout(r.Context(), session, cart.CheckoutInput{
			Name:           strings.TrimSpace(payload.Name),
			Phone:          payload.Phone,
			Address:        strings.TrimSpace(payload.Address),
			ShippingMethod: method,
			DeliveryCost:   payload.DeliveryCost,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusCreated, order, "order placed")
	}
}
