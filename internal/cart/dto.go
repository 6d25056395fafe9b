package cart

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LineDTO struct {
	ProductID     uuid.UUID       `json:"productId"`
	Name          string          `json:"name"`
	Media         *string         `json:"media,omitempty"`
	UnitType      enums.UnitType  `json:"unitType"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
	Quantity      int             `json:"quantity"`
	LineTotal     decimal.Decimal `json:"lineTotal"`
}

// CartDTO is the cart as returned to the storefront. Quote is present only
// when a shipping method was supplied.
type CartDTO struct {
	SessionID string          `json:"sessionId"`
	Items     []LineDTO       `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	ItemCount int             `json:"itemCount"`
	Quote     *pricing.Quote  `json:"quote,omitempty"`
	UpdatedAt *time.Time      `json:"updatedAt,omitempty"`
}

func NewCartDTO(c *Cart) CartDTO {
	lines := c.Lines()
	dto := CartDTO{
		SessionID: c.SessionID,
		Items:     make([]LineDTO, 0, len(lines)),
		Subtotal:  pricing.Subtotal(lines),
		ItemCount: c.ItemCount(),
	}
	for _, line := range lines {
		dto.Items = append(dto.Items, LineDTO{
			ProductID:     line.ProductID,
			Name:          line.Name,
			Media:         line.Media,
			UnitType:      line.Unit.Type,
			Price:         line.Unit.Price,
			StockQuantity: line.Unit.StockQuantity,
			Quantity:      line.Quantity,
			LineTotal:     pricing.LineTotal(line),
		})
	}
	if !c.UpdatedAt.IsZero() {
		updated := c.UpdatedAt
		dto.UpdatedAt = &updated
	}
	return dto
}
