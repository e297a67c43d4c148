package operations

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/habedi/solekit/db"
	"github.com/habedi/solekit/shop"
	"github.com/rs/zerolog/log"
)

// ProductLister fetches the whole product list. *shop.Catalog satisfies it.
type ProductLister interface {
	AllProducts(ctx context.Context, p shop.ListParams, workers int, onPage func(done, total int)) ([]shop.Product, error)
}

// SyncParams controls a catalog sync.
type SyncParams struct {
	PageSize int
	Workers  int
	OnPage   func(done, total int)
}

// SyncCatalog replaces the local product cache with the current catalog and
// returns the number of rows written. The cache is left untouched when
// fetching or writing fails.
func SyncCatalog(ctx context.Context, src ProductLister, repo db.ProductRepository, params SyncParams) (int, error) {
	products, err := src.AllProducts(ctx, shop.ListParams{Limit: params.PageSize}, params.Workers, params.OnPage)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch catalog: %w", err)
	}

	now := time.Now()
	rows := make([]db.Product, 0, len(products))
	for i := range products {
		row, err := toCacheRow(&products[i], now)
		if err != nil {
			log.Error().Err(err).Str("product_id", products[i].ID).Msg("Skipping product")
			continue
		}
		rows = append(rows, row)
	}
	if err := repo.ReplaceAll(ctx, rows); err != nil {
		return 0, fmt.Errorf("failed to replace product cache: %w", err)
	}
	log.Info().Int("count", len(rows)).Int("skipped", len(products)-len(rows)).Msg("Catalog synced")
	return len(rows), nil
}

func toCacheRow(p *shop.Product, at time.Time) (db.Product, error) {
	if p.ID == "" {
		return db.Product{}, fmt.Errorf("product %q has no id", p.Name)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return db.Product{}, err
	}
	return db.Product{
		ID:       p.ID,
		Name:     p.Name,
		Brand:    p.Brand.Label(),
		Price:    p.EffectivePrice(),
		IsActive: p.IsActive,
		Data:     string(data),
		SyncedAt: at,
	}, nil
}

// CachedProduct decodes the full product stored with a cache row.
func CachedProduct(row *db.Product) (*shop.Product, error) {
	if row == nil {
		return nil, nil
	}
	var p shop.Product
	if err := json.Unmarshal([]byte(row.Data), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached product %s: %w", row.ID, err)
	}
	return &p, nil
}
