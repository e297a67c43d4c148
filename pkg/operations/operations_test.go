package operations_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/habedi/solekit/db"
	"github.com/habedi/solekit/pkg/operations"
	"github.com/habedi/solekit/shop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) db.ProductRepository {
	t.Helper()
	db.Path = filepath.Join(t.TempDir(), "solekit.db")
	require.NoError(t, db.InitDB())
	t.Cleanup(func() { _ = db.CloseDB() })
	return db.NewProductRepository(db.GetDB())
}

type fakeLister struct {
	products []shop.Product
	err      error
	gotLimit int
}

func (f *fakeLister) AllProducts(_ context.Context, p shop.ListParams, _ int, onPage func(done, total int)) ([]shop.Product, error) {
	f.gotLimit = p.Limit
	if onPage != nil {
		onPage(1, 1)
	}
	return f.products, f.err
}

func TestSyncCatalog_ReplacesCache(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, repo.Put(ctx, db.Product{ID: "stale", Name: "Old"}))

	src := &fakeLister{products: []shop.Product{
		{ID: "p1", Name: "Runner", Price: 100, SalePrice: 80, Brand: &shop.Ref{ID: "b1", Name: "Swift"}, IsActive: true},
		{ID: "p2", Name: "Hiker", Price: 150},
	}}
	pages := 0
	n, err := operations.SyncCatalog(ctx, src, repo, operations.SyncParams{PageSize: 50, Workers: 2, OnPage: func(int, int) { pages++ }})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 50, src.gotLimit)
	assert.Equal(t, 1, pages)

	stale, err := repo.GetByID(ctx, "stale")
	require.NoError(t, err)
	assert.Nil(t, stale)

	row, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "Swift", row.Brand)
	assert.Equal(t, 80.0, row.Price)

	p, err := operations.CachedProduct(row)
	require.NoError(t, err)
	assert.Equal(t, "Runner", p.Name)
	assert.Equal(t, 100.0, p.Price)
}

func TestSyncCatalog_FetchFailureKeepsCache(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, repo.Put(ctx, db.Product{ID: "p1", Name: "Runner"}))

	_, err := operations.SyncCatalog(ctx, &fakeLister{err: errors.New("offline")}, repo, operations.SyncParams{})
	require.Error(t, err)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

// failingRepo writes through to the real cache but fails every replacement.
type failingRepo struct {
	db.ProductRepository
}

func (failingRepo) ReplaceAll(context.Context, []db.Product) error {
	return errors.New("disk full")
}

func TestSyncCatalog_WriteFailureKeepsCache(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, repo.Put(ctx, db.Product{ID: "p1", Name: "Runner"}))

	src := &fakeLister{products: []shop.Product{{ID: "p2", Name: "Hiker"}}}
	n, err := operations.SyncCatalog(ctx, src, failingRepo{repo}, operations.SyncParams{})
	require.Error(t, err)
	assert.Equal(t, 0, n)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "p1", all[0].ID)
}

func TestSyncCatalog_CountsWrittenRows(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	src := &fakeLister{products: []shop.Product{
		{ID: "p1", Name: "Runner"},
		{Name: "Orphan"},
		{ID: "p2", Name: "Hiker"},
	}}
	n, err := operations.SyncCatalog(ctx, src, repo, operations.SyncParams{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, n)
}

func TestCachedProduct_BadData(t *testing.T) {
	_, err := operations.CachedProduct(&db.Product{ID: "x", Data: "{"})
	assert.Error(t, err)

	p, err := operations.CachedProduct(nil)
	assert.NoError(t, err)
	assert.Nil(t, p)
}

func createDocsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"size-guide.md":         "# Sizes",
		"returns.pdf":           "%PDF-1.4",
		"notes.exe":             "MZ",
		".draft.md":             "hidden",
		"sub/care.txt":          "Clean with water",
		".git/config.txt":       "nope",
		"sub/deeper/policy.txt": "Policy",
	}
	for name, body := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return dir
}

func relNames(t *testing.T, root string, files []string) []string {
	t.Helper()
	var out []string
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	sort.Strings(out)
	return out
}

func TestFindDocuments(t *testing.T) {
	dir := createDocsDir(t)

	files, err := operations.FindDocuments([]string{dir}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"returns.pdf", "size-guide.md"}, relNames(t, dir, files))

	files, err = operations.FindDocuments([]string{dir}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"returns.pdf", "size-guide.md", "sub/care.txt", "sub/deeper/policy.txt"}, relNames(t, dir, files))

	_, err = operations.FindDocuments([]string{filepath.Join(dir, "notes.exe")}, false)
	assert.Error(t, err)

	_, err = operations.FindDocuments([]string{filepath.Join(dir, "missing")}, false)
	assert.Error(t, err)
}

type fakeUploader struct {
	mu       sync.Mutex
	uploaded map[string]string
	failOn   string
}

func (f *fakeUploader) Upload(_ context.Context, fileName, _ string, r io.Reader) (*shop.KnowledgeDoc, error) {
	if filepath.Base(fileName) == f.failOn {
		return nil, errors.New("rejected")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.uploaded[filepath.Base(fileName)] = string(b)
	f.mu.Unlock()
	return &shop.KnowledgeDoc{ID: "k-" + filepath.Base(fileName)}, nil
}

func TestUploadDocuments(t *testing.T) {
	dir := createDocsDir(t)
	files := []string{
		filepath.Join(dir, "size-guide.md"),
		filepath.Join(dir, "returns.pdf"),
		filepath.Join(dir, "sub", "care.txt"),
	}
	up := &fakeUploader{uploaded: map[string]string{}, failOn: "returns.pdf"}

	var mu sync.Mutex
	done := 0
	results := operations.UploadDocuments(context.Background(), up, files, 2, "sha256", func(operations.UploadResult) {
		mu.Lock()
		done++
		mu.Unlock()
	})

	require.Len(t, results, 3)
	assert.Equal(t, 3, done)
	for i, r := range results {
		assert.Equal(t, files[i], r.File)
		assert.Len(t, r.Checksum, 64)
	}
	assert.NoError(t, results[0].Err)
	assert.Equal(t, "k-size-guide.md", results[0].Doc.ID)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, "Clean with water", up.uploaded["care.txt"])
}

func TestUploadDocuments_MissingFile(t *testing.T) {
	up := &fakeUploader{uploaded: map[string]string{}}
	results := operations.UploadDocuments(context.Background(), up, []string{filepath.Join(t.TempDir(), "gone.md")}, 1, "", nil)
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
	assert.Empty(t, up.uploaded)
}
