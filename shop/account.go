package shop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/habedi/solekit/client"
)

// Account covers the endpoints of the logged-in customer. It must be built
// on an authenticated client.
type Account struct {
	api client.Doer
}

func NewAccount(api client.Doer) *Account { return &Account{api: api} }

func (a *Account) Profile(ctx context.Context) (*Profile, error) {
	return getOne[Profile](ctx, a.api, client.Get(APIPrefix+"/users/profile", nil))
}

func (a *Account) UpdateProfile(ctx context.Context, in Profile) (*Profile, error) {
	return getOne[Profile](ctx, a.api, client.Put(APIPrefix+"/users/profile", in))
}

func (a *Account) Cart(ctx context.Context) (*Cart, error) {
	return getOne[Cart](ctx, a.api, client.Get(APIPrefix+"/cart", nil))
}

func (a *Account) AddToCart(ctx context.Context, in CartItemInput) (*Cart, error) {
	if strings.TrimSpace(in.ProductID) == "" {
		return nil, ErrMissingID
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", in.Quantity)
	}
	return getOne[Cart](ctx, a.api, client.Post(APIPrefix+"/cart", in))
}

func (a *Account) UpdateCartItem(ctx context.Context, itemID string, quantity int) (*Cart, error) {
	path, err := idPath(APIPrefix+"/cart", itemID)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	return getOne[Cart](ctx, a.api, client.Put(path, map[string]int{"quantity": quantity}))
}

func (a *Account) RemoveFromCart(ctx context.Context, itemID string) (*Cart, error) {
	path, err := idPath(APIPrefix+"/cart", itemID)
	if err != nil {
		return nil, err
	}
	return getOne[Cart](ctx, a.api, client.Delete(path))
}

func (a *Account) ClearCart(ctx context.Context) error {
	_, err := call[json.RawMessage](ctx, a.api, client.Delete(APIPrefix+"/cart"))
	return err
}

func (a *Account) Wishlist(ctx context.Context) ([]Product, error) {
	env, err := call[[]Product](ctx, a.api, client.Get(APIPrefix+"/wishlist", nil))
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (a *Account) AddToWishlist(ctx context.Context, productID string) error {
	if strings.TrimSpace(productID) == "" {
		return ErrMissingID
	}
	_, err := call[json.RawMessage](ctx, a.api, client.Post(APIPrefix+"/wishlist", map[string]string{"productId": productID}))
	return err
}

func (a *Account) RemoveFromWishlist(ctx context.Context, productID string) error {
	path, err := idPath(APIPrefix+"/wishlist", productID)
	if err != nil {
		return err
	}
	_, err = call[json.RawMessage](ctx, a.api, client.Delete(path))
	return err
}

func (a *Account) CreateReview(ctx context.Context, in ReviewInput) (*Review, error) {
	if strings.TrimSpace(in.ProductID) == "" {
		return nil, ErrMissingID
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5, got %d", in.Rating)
	}
	return getOne[Review](ctx, a.api, client.Post(APIPrefix+"/reviews", in))
}

func (a *Account) ValidateCoupon(ctx context.Context, code string, orderTotal float64) (*CouponResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errors.New("coupon code must not be empty")
	}
	body := map[string]any{"code": code, "orderTotal": orderTotal}
	return getOne[CouponResult](ctx, a.api, client.Post(APIPrefix+"/discounts/validate", body))
}

func (a *Account) AvailableCoupons(ctx context.Context) ([]Discount, error) {
	env, err := call[[]Discount](ctx, a.api, client.Get(APIPrefix+"/discounts/available", nil))
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (a *Account) Checkout(ctx context.Context, in CheckoutInput) (*Order, error) {
	switch in.PaymentMethod {
	case "cod", "vnpay":
	default:
		return nil, fmt.Errorf("payment method must be cod or vnpay, got %q", in.PaymentMethod)
	}
	if in.ShippingAddress.Street == "" || in.ShippingAddress.City == "" {
		return nil, errors.New("shipping address needs a street and a city")
	}
	return getOne[Order](ctx, a.api, client.Post(APIPrefix+"/orders", in))
}

func (a *Account) Orders(ctx context.Context, p ListParams) (*Page[Order], error) {
	return getPage[Order](ctx, a.api, APIPrefix+"/orders/my-orders", p)
}
