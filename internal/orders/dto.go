package orders

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO is the order payload returned to the storefront and the back office.
type OrderDTO struct {
	ID             uuid.UUID            `json:"id"`
	CustomerID     uuid.UUID            `json:"customer"`
	Name           string               `json:"name"`
	Phone          string               `json:"phone"`
	Address        string               `json:"address"`
	ShippingMethod enums.ShippingMethod `json:"shippingMethod"`
	Status         enums.OrderStatus    `json:"status"`
	PaymentStatus  enums.PaymentStatus  `json:"paymentStatus"`
	Subtotal       decimal.Decimal      `json:"subtotal"`
	ShippingCost   decimal.Decimal      `json:"shippingCost"`
	Total          decimal.Decimal      `json:"total"`
	Items          []OrderItemDTO       `json:"items"`
	Adjustments    []AdjustmentDTO      `json:"adjustments,omitempty"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

type OrderItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product"`
	Name      string          `json:"name"`
	UnitType  enums.UnitType  `json:"unitType"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type AdjustmentDTO struct {
	ID            uuid.UUID            `json:"id"`
	Type          enums.AdjustmentType `json:"type"`
	Amount        decimal.Decimal      `json:"amount"`
	Reason        *string              `json:"reason,omitempty"`
	PreviousTotal decimal.Decimal      `json:"previousTotal"`
	NewTotal      decimal.Decimal      `json:"newTotal"`
	CreatedAt     time.Time            `json:"createdAt"`
}

// AdjustmentPreviewDTO reports what an adjustment would do without committing it.
type AdjustmentPreviewDTO struct {
	BaseAmount    decimal.Decimal      `json:"baseAmount"`
	Type          enums.AdjustmentType `json:"type"`
	Amount        decimal.Decimal      `json:"amount"`
	AdjustedTotal decimal.Decimal      `json:"adjustedTotal"`
	TotalChanged  bool                 `json:"totalChanged"`
}

type ListResult struct {
	Items      []OrderDTO
	Pagination types.PageMeta
}

func NewOrderDTO(o *models.Order) OrderDTO {
	dto := OrderDTO{
		ID:             o.ID,
		CustomerID:     o.CustomerID,
		Name:           o.Name,
		Phone:          o.Phone,
		Address:        o.Address,
		ShippingMethod: o.ShippingMethod,
		Status:         o.Status,
		PaymentStatus:  o.PaymentStatus,
		Subtotal:       o.Subtotal,
		ShippingCost:   o.ShippingCost,
		Total:          o.Total,
		Items:          make([]OrderItemDTO, 0, len(o.Items)),
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
	for _, item := range o.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitType:  item.UnitType,
			Price:     item.Price,
			Quantity:  item.Quantity,
			LineTotal: pricing.LineTotal(item),
		})
	}
	for _, adj := range o.Adjustments {
		dto.Adjustments = append(dto.Adjustments, AdjustmentDTO{
			ID:            adj.ID,
			Type:          adj.Type,
			Amount:        adj.Amount,
			Reason:        adj.Reason,
			PreviousTotal: adj.PreviousTotal,
			NewTotal:      adj.NewTotal,
			CreatedAt:     adj.CreatedAt,
		})
	}
	return dto
}
