package product

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductDTO represents the product payload returned to clients.
type ProductDTO struct {
	ID            uuid.UUID           `json:"id"`
	Name          string              `json:"name"`
	Description   *string             `json:"description,omitempty"`
	Media         *string             `json:"media,omitempty"`
	Category      *CategorySummaryDTO `json:"category,omitempty"`
	UnitType      enums.UnitType      `json:"unitType"`
	Price         decimal.Decimal     `json:"price"`
	StockQuantity int                 `json:"stockQuantity"`
	IsActive      bool                `json:"isActive"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// CategorySummaryDTO is the slice of a category embedded in product payloads.
type CategorySummaryDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type ListResult struct {
	Items      []ProductDTO
	Pagination types.PageMeta
}

func NewProductDTO(p *models.Product) ProductDTO {
	dto := ProductDTO{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Media:         p.Media,
		UnitType:      p.UnitType,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.Category != nil {
		dto.Category = &CategorySummaryDTO{ID: p.Category.ID, Name: p.Category.Name}
	} else if p.CategoryID != nil {
		dto.Category = &CategorySummaryDTO{ID: *p.CategoryID}
	}
	return dto
}
