// Package shop exposes the store API's resources on top of the client package.
// Public reads go through a plain client; account and admin operations need an
// authenticated one.
package shop

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/habedi/solekit/client"
	"github.com/habedi/solekit/pkg/pool"
	"github.com/rs/zerolog/log"
)

const (
	APIPrefix   = "/api/v1"
	AdminPrefix = APIPrefix + "/admin"
)

// ListParams are the query parameters shared by every list endpoint.
type ListParams struct {
	Page     int
	Limit    int
	Search   string
	Name     string
	Sort     string
	IsActive *bool
}

// Values renders the non-zero parameters as a query string.
func (p ListParams) Values() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Name != "" {
		q.Set("name", p.Name)
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}
	if p.IsActive != nil {
		q.Set("isActive", strconv.FormatBool(*p.IsActive))
	}
	return q
}

// Page is one page of a list endpoint.
type Page[T any] struct {
	Items      []T
	Pagination *client.Pagination
}

// ErrMissingID is returned before any request is made for an empty id.
var ErrMissingID = errors.New("id must not be empty")

// call sends r and unwraps the envelope. A 2xx answer with success:false is
// turned into a KindStatus error carrying the server message.
func call[T any](ctx context.Context, api client.Doer, r *client.Request) (client.Envelope[T], error) {
	var env client.Envelope[T]
	if err := api.Do(ctx, r, &env); err != nil {
		return env, err
	}
	if !env.Success {
		return env, &client.Error{
			Kind:    client.KindStatus,
			Method:  r.Method,
			Path:    r.Path,
			Status:  http.StatusOK,
			Message: env.Message,
		}
	}
	return env, nil
}

func getOne[T any](ctx context.Context, api client.Doer, r *client.Request) (*T, error) {
	env, err := call[T](ctx, api, r)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func getPage[T any](ctx context.Context, api client.Doer, path string, p ListParams) (*Page[T], error) {
	env, err := call[[]T](ctx, api, client.Get(path, p.Values()))
	if err != nil {
		return nil, err
	}
	return &Page[T]{Items: env.Data, Pagination: env.Pagination}, nil
}

func idPath(base, id string, rest ...string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrMissingID
	}
	parts := append([]string{base, url.PathEscape(id)}, rest...)
	return strings.Join(parts, "/"), nil
}

// PageFunc fetches one page of a list.
type PageFunc[T any] func(ctx context.Context, page int) (*Page[T], error)

// CollectAll fetches page 1 to learn the page count, then the remaining pages
// with up to workers concurrent requests. onPage, if set, is called after each
// page with the number of pages fetched so far and the total. Items keep page order.
func CollectAll[T any](ctx context.Context, fetch PageFunc[T], workers int, onPage func(done, total int)) ([]T, error) {
	first, err := fetch(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page 1: %w", err)
	}
	total := 1
	if first.Pagination != nil && first.Pagination.TotalPages > 1 {
		total = first.Pagination.TotalPages
	}
	if onPage != nil {
		onPage(1, total)
	}

	pages := make([][]T, total)
	pages[0] = first.Items
	if total > 1 {
		rest := make([]int, 0, total-1)
		for i := 2; i <= total; i++ {
			rest = append(rest, i)
		}
		var mu sync.Mutex
		done := 1
		errs := pool.Run(ctx, rest, max(workers, 1), func(ctx context.Context, n int) error {
			pg, err := fetch(ctx, n)
			if err != nil {
				log.Error().Err(err).Int("page", n).Msg("Failed to fetch page")
				return fmt.Errorf("page %d: %w", n, err)
			}
			mu.Lock()
			pages[n-1] = pg.Items
			done++
			if onPage != nil {
				onPage(done, total)
			}
			mu.Unlock()
			return nil
		})
		if len(errs) > 0 {
			return nil, errors.Join(errs...)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	var all []T
	for _, items := range pages {
		all = append(all, items...)
	}
	return all, nil
}
