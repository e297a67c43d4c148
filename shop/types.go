package shop

import (
	"bytes"
	"encoding/json"
	"time"
)

// Ref is a reference to another document. The API sends either the bare id
// or the populated document; both decode into a Ref.
type Ref struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
	Slug string `json:"slug,omitempty"`
}

func (r *Ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &r.ID)
	}
	type plain Ref
	return json.Unmarshal(b, (*plain)(r))
}

// Label returns the name when populated, otherwise the id.
func (r *Ref) Label() string {
	if r == nil {
		return ""
	}
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

type Variant struct {
	ID    string  `json:"_id,omitempty"`
	Size  string  `json:"size"`
	Color string  `json:"color,omitempty"`
	Stock int     `json:"stock"`
	SKU   string  `json:"sku,omitempty"`
	Price float64 `json:"price,omitempty"`
}

type Product struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug,omitempty"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	SalePrice   float64   `json:"salePrice,omitempty"`
	Brand       *Ref      `json:"brand,omitempty"`
	Category    *Ref      `json:"category,omitempty"`
	Tags        []Ref     `json:"tags,omitempty"`
	Materials   []Ref     `json:"materials,omitempty"`
	UseCases    []Ref     `json:"useCases,omitempty"`
	Images      []string  `json:"images,omitempty"`
	Variants    []Variant `json:"variants,omitempty"`
	Rating      float64   `json:"averageRating,omitempty"`
	NumReviews  int       `json:"numReviews,omitempty"`
	IsActive    bool      `json:"isActive"`
	IsDeleted   bool      `json:"isDeleted,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// EffectivePrice is the sale price when one is set.
func (p *Product) EffectivePrice() float64 {
	if p.SalePrice > 0 && p.SalePrice < p.Price {
		return p.SalePrice
	}
	return p.Price
}

// Stock sums the stock of all variants.
func (p *Product) Stock() int {
	total := 0
	for _, v := range p.Variants {
		total += v.Stock
	}
	return total
}

// Entity is the shape shared by the simple catalog taxonomies
// (tags, materials, use-cases).
type Entity struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug,omitempty"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"isActive"`
	IsDeleted   bool      `json:"isDeleted,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

type Brand struct {
	Entity
	Logo    string `json:"logo,omitempty"`
	Country string `json:"country,omitempty"`
}

type Category struct {
	Entity
	Image  string `json:"image,omitempty"`
	Parent *Ref   `json:"parent,omitempty"`
}

type Discount struct {
	ID            string    `json:"_id"`
	Code          string    `json:"code"`
	Description   string    `json:"description,omitempty"`
	Type          string    `json:"type"` // percentage or fixed
	Value         float64   `json:"value"`
	MinOrderValue float64   `json:"minOrderValue,omitempty"`
	MaxDiscount   float64   `json:"maxDiscount,omitempty"`
	StartDate     time.Time `json:"startDate,omitempty"`
	EndDate       time.Time `json:"endDate,omitempty"`
	UsageLimit    int       `json:"usageLimit,omitempty"`
	UsedCount     int       `json:"usedCount,omitempty"`
	IsActive      bool      `json:"isActive"`
	IsDeleted     bool      `json:"isDeleted,omitempty"`
}

// KnowledgeDoc is a document indexed by the store's AI assistant.
type KnowledgeDoc struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	FileName  string    `json:"fileName,omitempty"`
	FileType  string    `json:"fileType,omitempty"`
	Size      int64     `json:"size,omitempty"`
	Chunks    int       `json:"chunkCount,omitempty"`
	Status    string    `json:"status,omitempty"`
	IsActive  bool      `json:"isActive"`
	IsDeleted bool      `json:"isDeleted,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

type Review struct {
	ID        string    `json:"_id"`
	Product   *Ref      `json:"product,omitempty"`
	User      *Ref      `json:"user,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

type ReviewInput struct {
	ProductID string `json:"productId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment,omitempty"`
}

type Profile struct {
	ID      string   `json:"_id"`
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Phone   string   `json:"phone,omitempty"`
	Role    string   `json:"role,omitempty"`
	Address *Address `json:"address,omitempty"`
}

type Address struct {
	FullName string `json:"fullName,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Street   string `json:"street"`
	Ward     string `json:"ward,omitempty"`
	District string `json:"district,omitempty"`
	City     string `json:"city"`
}

type CartItem struct {
	ID        string  `json:"_id"`
	Product   *Ref    `json:"product"`
	VariantID string  `json:"variantId,omitempty"`
	Size      string  `json:"size,omitempty"`
	Color     string  `json:"color,omitempty"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type Cart struct {
	ID         string     `json:"_id,omitempty"`
	Items      []CartItem `json:"items"`
	TotalPrice float64    `json:"totalPrice"`
}

// Subtotal recomputes the cart value from its lines.
func (c *Cart) Subtotal() float64 {
	var sum float64
	for _, it := range c.Items {
		sum += it.Price * float64(it.Quantity)
	}
	return sum
}

type CartItemInput struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId,omitempty"`
	Size      string `json:"size,omitempty"`
	Quantity  int    `json:"quantity"`
}

// CouponResult is the server's evaluation of a coupon against an order total.
type CouponResult struct {
	Code           string  `json:"code"`
	DiscountAmount float64 `json:"discountAmount"`
	FinalTotal     float64 `json:"finalTotal"`
}

type CheckoutInput struct {
	ShippingAddress Address `json:"shippingAddress"`
	PaymentMethod   string  `json:"paymentMethod"` // cod or vnpay
	CouponCode      string  `json:"couponCode,omitempty"`
	Note            string  `json:"note,omitempty"`
}

type Order struct {
	ID            string     `json:"_id"`
	Items         []CartItem `json:"items"`
	TotalPrice    float64    `json:"totalPrice"`
	Discount      float64    `json:"discountAmount,omitempty"`
	Status        string     `json:"status"`
	PaymentMethod string     `json:"paymentMethod,omitempty"`
	PaymentURL    string     `json:"paymentUrl,omitempty"`
	CreatedAt     time.Time  `json:"createdAt,omitempty"`
}

type SalesSummary struct {
	TotalRevenue   float64 `json:"totalRevenue"`
	TotalOrders    int     `json:"totalOrders"`
	TotalCustomers int     `json:"totalCustomers"`
	TotalProducts  int     `json:"totalProducts"`
	PendingOrders  int     `json:"pendingOrders,omitempty"`
}

type RevenuePoint struct {
	Period  string  `json:"period"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

type TopProduct struct {
	ProductID string  `json:"_id"`
	Name      string  `json:"name"`
	Sold      int     `json:"totalSold"`
	Revenue   float64 `json:"revenue"`
}
