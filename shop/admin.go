package shop

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/habedi/solekit/client"
)

// Admin bundles the back-office resources. It must be built on an
// authenticated client.
type Admin struct {
	Products   *Resource[Product]
	Brands     *Resource[Brand]
	Categories *Resource[Category]
	Tags       *Resource[Entity]
	Materials  *Resource[Entity]
	UseCases   *Resource[Entity]
	Discounts  *Resource[Discount]
	Knowledge  *KnowledgeBase
	Dashboard  *Dashboard
}

func NewAdmin(api client.Doer) *Admin {
	return &Admin{
		Products:   NewResource[Product](api, "products"),
		Brands:     NewResource[Brand](api, "brands"),
		Categories: NewResource[Category](api, "categories"),
		Tags:       NewResource[Entity](api, "tags"),
		Materials:  NewResource[Entity](api, "materials"),
		UseCases:   NewResource[Entity](api, "use-cases"),
		Discounts:  NewResource[Discount](api, "discounts"),
		Knowledge:  &KnowledgeBase{Resource: NewResource[KnowledgeDoc](api, "knowledge-base"), api: api},
		Dashboard:  &Dashboard{api: api},
	}
}

// Dashboard reads sales statistics.
type Dashboard struct {
	api client.Doer
}

func (d *Dashboard) Summary(ctx context.Context) (*SalesSummary, error) {
	return getOne[SalesSummary](ctx, d.api, client.Get(AdminPrefix+"/dashboard/summary", nil))
}

// Revenue returns the revenue series for period: day, week, month or year.
func (d *Dashboard) Revenue(ctx context.Context, period string) ([]RevenuePoint, error) {
	switch period {
	case "day", "week", "month", "year":
	default:
		return nil, fmt.Errorf("period must be day, week, month or year, got %q", period)
	}
	env, err := call[[]RevenuePoint](ctx, d.api, client.Get(AdminPrefix+"/dashboard/revenue", url.Values{"period": {period}}))
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (d *Dashboard) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	env, err := call[[]TopProduct](ctx, d.api, client.Get(AdminPrefix+"/dashboard/top-products", q))
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// KnowledgeBase manages the assistant's documents. Besides the usual CRUD it
// accepts file uploads.
type KnowledgeBase struct {
	*Resource[KnowledgeDoc]
	api client.Doer
}

// UploadTypes are the accepted document extensions and their MIME types.
var UploadTypes = map[string]string{
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".md":   "text/markdown",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Upload sends r as a multipart "file" field named fileName. title defaults
// to the file name without extension.
func (k *KnowledgeBase) Upload(ctx context.Context, fileName, title string, r io.Reader) (*KnowledgeDoc, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	mimeType, ok := UploadTypes[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported document type %q", ext)
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("title", title); err != nil {
		return nil, fmt.Errorf("failed to write title field: %w", err)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(fileName)))
	h.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fileName, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req := &client.Request{
		Method:      http.MethodPost,
		Path:        k.Path() + "/upload",
		RawBody:     buf.Bytes(),
		ContentType: mw.FormDataContentType(),
	}
	return getOne[KnowledgeDoc](ctx, k.api, req)
}
