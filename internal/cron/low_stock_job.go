package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const (
	defaultLowStockThreshold = 5
	lowStockReportLimit      = 200
)

// LowStockJobParams configures the low stock report.
type LowStockJobParams struct {
	Logger     *logger.Logger
	Repository lowStockRepo
	Threshold  int
}

type lowStockRepo interface {
	ListLowStock(ctx context.Context, threshold, limit int) ([]models.Product, error)
}

func NewLowStockJob(params LowStockJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("product repository required")
	}
	threshold := params.Threshold
	if threshold < 0 {
		threshold = defaultLowStockThreshold
	}
	return &lowStockJob{logg: params.Logger, repo: params.Repository, threshold: threshold}, nil
}

type lowStockJob struct {
	logg      *logger.Logger
	repo      lowStockRepo
	threshold int
}

func (j *lowStockJob) Name() string { return "low-stock-report" }

func (j *lowStockJob) Run(ctx context.Context) error {
	products, err := j.repo.ListLowStock(ctx, j.threshold, lowStockReportLimit)
	if err != nil {
		return fmt.Errorf("list low stock: %w", err)
	}
	for _, p := range products {
		j.logg.Warn(j.logg.WithFields(ctx, map[string]any{
			"product_id":     p.ID.String(),
			"product_name":   p.Name,
			"stock_quantity": p.StockQuantity,
			"threshold":      j.threshold,
		}), "product low on stock")
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"threshold": j.threshold,
		"products":  len(products),
	}), "low stock report complete")
	return nil
}
