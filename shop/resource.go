package shop

import (
	"context"
	"encoding/json"

	"github.com/habedi/solekit/client"
)

// Resource is the admin CRUD surface of one collection under AdminPrefix.
// Delete is a soft delete; Restore undoes it.
type Resource[T any] struct {
	api  client.Doer
	base string
}

// NewResource returns the admin resource at AdminPrefix/name.
func NewResource[T any](api client.Doer, name string) *Resource[T] {
	return &Resource[T]{api: api, base: AdminPrefix + "/" + name}
}

// Path is the collection path.
func (r *Resource[T]) Path() string { return r.base }

func (r *Resource[T]) List(ctx context.Context, p ListParams) (*Page[T], error) {
	return getPage[T](ctx, r.api, r.base, p)
}

func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	path, err := idPath(r.base, id)
	if err != nil {
		return nil, err
	}
	return getOne[T](ctx, r.api, client.Get(path, nil))
}

// Create posts in, which is usually a T or a map of its fields.
func (r *Resource[T]) Create(ctx context.Context, in any) (*T, error) {
	return getOne[T](ctx, r.api, client.Post(r.base, in))
}

// Update sends only the fields present in in.
func (r *Resource[T]) Update(ctx context.Context, id string, in any) (*T, error) {
	path, err := idPath(r.base, id)
	if err != nil {
		return nil, err
	}
	return getOne[T](ctx, r.api, client.Put(path, in))
}

func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	path, err := idPath(r.base, id)
	if err != nil {
		return err
	}
	_, err = call[json.RawMessage](ctx, r.api, client.Delete(path))
	return err
}

func (r *Resource[T]) Restore(ctx context.Context, id string) (*T, error) {
	path, err := idPath(r.base, id, "restore")
	if err != nil {
		return nil, err
	}
	return getOne[T](ctx, r.api, client.Patch(path, nil))
}

// ToggleStatus flips isActive.
func (r *Resource[T]) ToggleStatus(ctx context.Context, id string) (*T, error) {
	path, err := idPath(r.base, id, "status")
	if err != nil {
		return nil, err
	}
	return getOne[T](ctx, r.api, client.Patch(path, nil))
}
