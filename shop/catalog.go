package shop

import (
	"context"

	"github.com/habedi/solekit/client"
)

// Catalog reads the public storefront.
type Catalog struct {
	api client.Doer
}

func NewCatalog(api client.Doer) *Catalog { return &Catalog{api: api} }

func (c *Catalog) Products(ctx context.Context, p ListParams) (*Page[Product], error) {
	return getPage[Product](ctx, c.api, APIPrefix+"/products", p)
}

func (c *Catalog) Product(ctx context.Context, id string) (*Product, error) {
	path, err := idPath(APIPrefix+"/products", id)
	if err != nil {
		return nil, err
	}
	return getOne[Product](ctx, c.api, client.Get(path, nil))
}

func (c *Catalog) ProductBySlug(ctx context.Context, slug string) (*Product, error) {
	path, err := idPath(APIPrefix+"/products/slug", slug)
	if err != nil {
		return nil, err
	}
	return getOne[Product](ctx, c.api, client.Get(path, nil))
}

func (c *Catalog) Reviews(ctx context.Context, productID string, p ListParams) (*Page[Review], error) {
	path, err := idPath(APIPrefix+"/reviews/product", productID)
	if err != nil {
		return nil, err
	}
	return getPage[Review](ctx, c.api, path, p)
}

func (c *Catalog) Brands(ctx context.Context, p ListParams) (*Page[Brand], error) {
	return getPage[Brand](ctx, c.api, APIPrefix+"/brands", p)
}

func (c *Catalog) Categories(ctx context.Context, p ListParams) (*Page[Category], error) {
	return getPage[Category](ctx, c.api, APIPrefix+"/categories", p)
}

// AllProducts walks every page of the product list.
func (c *Catalog) AllProducts(ctx context.Context, p ListParams, workers int, onPage func(done, total int)) ([]Product, error) {
	return CollectAll(ctx, func(ctx context.Context, page int) (*Page[Product], error) {
		q := p
		q.Page = page
		return c.Products(ctx, q)
	}, workers, onPage)
}
