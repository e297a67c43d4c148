package cmd

import (
	"strconv"
	"strings"

	"github.com/habedi/solekit/pkg/clierr"
	"github.com/habedi/solekit/pkg/validation"
	"github.com/habedi/solekit/shop"
	"github.com/spf13/cobra"
)

// loggedIn is the PreRunE of every command that needs a session.
func loggedIn(cmd *cobra.Command, _ []string) error {
	return state.requireLogin(cmd.Context())
}

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loggedIn(cmd, args); err != nil {
				return err
			}
			p, err := state.account().Profile(cmd.Context())
			if err != nil {
				return clierr.FromAPI("failed to fetch profile", err)
			}
			printProfile(cmd, p)
			return nil
		},
	}

	var name, phone string
	update := &cobra.Command{
		Use:     "update",
		Short:   "Change your name or phone number",
		Args:    cobra.NoArgs,
		PreRunE: loggedIn,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" && phone == "" {
				return clierr.New(clierr.Validation, "nothing to update; pass --name or --phone", nil)
			}
			p, err := state.account().UpdateProfile(cmd.Context(), shop.Profile{Name: strings.TrimSpace(name), Phone: strings.TrimSpace(phone)})
			if err != nil {
				return clierr.FromAPI("failed to update profile", err)
			}
			cmd.Println("Profile updated.")
			printProfile(cmd, p)
			return nil
		},
	}
	update.Flags().StringVarP(&name, "name", "n", "", "New display name")
	update.Flags().StringVar(&phone, "phone", "", "New phone number")

	cmd.AddCommand(update)
	return cmd
}

func printProfile(cmd *cobra.Command, p *shop.Profile) {
	cmd.Printf("Name: %s\n", p.Name)
	cmd.Printf("Email: %s\n", p.Email)
	if p.Phone != "" {
		cmd.Printf("Phone: %s\n", p.Phone)
	}
	if a := p.Address; a != nil {
		cmd.Printf("Address: %s\n", strings.Join(nonEmpty(a.Street, a.Ward, a.District, a.City), ", "))
	}
}

func nonEmpty(parts ...string) []string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cart",
		Short:   "Manage your shopping cart",
		Args:    cobra.NoArgs,
		PreRunE: loggedIn,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := state.account().Cart(cmd.Context())
			if err != nil {
				return clierr.FromAPI("failed to fetch cart", err)
			}
			printCart(cmd, c)
			return nil
		},
	}

	var in shop.CartItemInput
	add := &cobra.Command{
		Use:     "add <product-id>",
		Short:   "Add a product to the cart",
		Args:    cobra.ExactArgs(1),
		PreRunE: loggedIn,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateID(args[0]); err != nil {
				return invalid(err)
			}
			if err := validation.ValidateQuantity(in.Quantity); err != nil {
				return invalid(err)
			}
			in.ProductID = args[0]
			c, err := state.account().AddToCart(cmd.Context(), in)
			if err != nil {
				return clierr.FromAPI("failed to add to cart", err)
			}
			printCart(cmd, c)
			return nil
		},
	}
	add.Flags().IntVarP(&in.Quantity, "quantity", "q", 1, "Number of pairs")
	add.Flags().StringVar(&in.Size, "size", "", "Shoe size")
	add.Flags().StringVar(&in.VariantID, "variant", "", "Variant id (see 'catalog info')")

	update := &cobra.Command{
		Use:     "update <item-id> <quantity>",
		Short:   "Change the quantity of a cart line",
		Args:    cobra.ExactArgs(2),
		PreRunE: loggedIn,
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return clierr.New(clierr.Validation, "quantity must be a number", err)
			}
			if err := validation.ValidateQuantity(qty); err != nil {
				return invalid(err)
			}
			c, err := state.account().UpdateCartItem(cmd.Context(), args[0], qty)
			if err != nil {
				return clierr.FromAPI("failed to update cart", err)
			}
			printCart(cmd, c)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:     "remove <item-id>",
		Short:   "Remove a line from the cart",
		Args:    cobra.ExactArgs(1),
		PreRunE: loggedIn,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := state.account().RemoveFromCart(cmd.Context(), args[0])
			if err != nil {
				return clierr.FromAPI("failed to remove from cart", err)
			}
			printCart(cmd, c)
			return nil
		},
	}

	clearCart := &cobra.Command{
		Use:     "clear",
		Short:   "Empty the cart",
		Args:    cobra.NoArgs,
		PreRunE: loggedIn,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.account().ClearCart(cmd.Context()); err != nil {
				return clierr.FromAPI("failed to clear cart", err)
			}
			cmd.Println("Cart cleared.")
			return nil
		},
	}

	cmd.AddCommand(add, update, remove, clearCart)
	return cmd
}

func printCart(cmd *cobra.Command, c *shop.Cart) {
	if c == nil || len(c.Items) == 0 {
		cmd.Println("Your cart is empty.")
		return
	}
	table := newTable(cmd.OutOrStdout(), "Item", "Product", "Size", "Qty", "Price", "Total")
	for _, it := range c.Items {
		table.Append([]string{
			it.ID,
			it.Product.Label(),
			it.Size,
			strconv.Itoa(it.Quantity),
			money(it.Price),
			money(it.Price * float64(it.Quantity)),
		})
	}
	table.Render()
	total := c.TotalPrice
	if total == 0 {
		total = c.Subtotal()
	}
	cmd.Printf("Subtotal: %s\n", money(total))
}

func wishlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "wishlist",
		Short:   "Manage your wishlist",
		Args:    cobra.NoArgs,
		PreRunE: loggedIn,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := state.account().Wishlist(cmd.Context())
			if err != nil {
				return clierr.FromAPI("failed to fetch wishlist", err)
			}
			if len(items) == 0 {
				cmd.Println("Your wishlist is empty.")
				return nil
			}
			table := newTable(cmd.OutOrStdout(), "ID", "Name", "Brand", "Price", "Sale", "Stock")
			for _, p := range items {
				table.Append(productRow(p))
			}
			table.Render()
			return nil
		},
	}

	add := &cobra.Command{
		Use:     "add <product-id>",
		Short:   "Add a product to the wishlist",
		Args:    cobra.ExactArgs(1),
		PreRunE: loggedIn,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.account().AddToWishlist(cmd.Context(), args[0]); err != nil {
				return clierr.FromAPI("failed to add to wishlist", err)
			}
			cmd.Println("Added to wishlist.")
			return nil
		},
	}

	remove := &cobra.Command{
		Use:     "remove <product-id>",
		Short:   "Remove a product from the wishlist",
		Args:    cobra.ExactArgs(1),
		PreRunE: loggedIn,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.account().RemoveFromWishlist(cmd.Context(), args[0]); err != nil {
				return clierr.FromAPI("failed to remove from wishlist", err)
			}
			cmd.Println("Removed from wishlist.")
			return nil
		},
	}

	cmd.AddCommand(add, remove)
	return cmd
}

func couponCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coupon",
		Short: "Discount coupons",
	}

	list := &cobra.Command{
		Use:     "list",
		Short:   "List coupons you can use",
		Args:    cobra.NoArgs,
		PreRunE: loggedIn,
		RunE: func(cmd *cobra.Command, args []string) error {
			coupons, err := state.account().AvailableCoupons(cmd.Context())
			if err != nil {
				return clierr.FromAPI("failed to list coupons", err)
			}
			if len(coupons) == 0 {
				cmd.Println("No coupons available.")
				return nil
			}
			table := newTable(cmd.OutOrStdout(), "Code", "Type", "Value", "Min order", "Expires")
			for _, d := range coupons {
				table.Append([]string{d.Code, d.Type, discountValue(d), money(d.MinOrderValue), date(d.EndDate)})
			}
			table.Render()
			return nil
		},
	}

	var total float64
	check := &cobra.Command{
		Use:     "check <code>",
		Short:   "Check what a coupon takes off an order total",
		Args:    cobra.ExactArgs(1),
		PreRunE: loggedIn,
		RunE: func(cmd *cobra.Command, args []string) error {
			if total <= 0 {
				return clierr.New(clierr.Validation, "--total must be positive", nil)
			}
			res, err := state.account().ValidateCoupon(cmd.Context(), args[0], total)
			if err != nil {
				return clierr.FromAPI("coupon rejected", err)
			}
			cmd.Printf("Coupon %s: -%s, new total %s\n", res.Code, money(res.DiscountAmount), money(res.FinalTotal))
			return nil
		},
	}
	check.Flags().Float64VarP(&total, "total", "t", 0, "Order total to apply the coupon to")

	cmd.AddCommand(list, check)
	return cmd
}

func discountValue(d shop.Discount) string {
	if d.Type == "percentage" {
		return strconv.FormatFloat(d.Value, 'f', -1, 64) + "%"
	}
	return money(d.Value)
}

func reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Product reviews",
	}

	var in shop.ReviewInput
	add := &cobra.Command{
		Use:     "add <product-id>",
		Short:   "Review a product you bought",
		Args:    cobra.ExactArgs(1),
		PreRunE: loggedIn,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateRating(in.Rating); err != nil {
				return invalid(err)
			}
			in.ProductID = args[0]
			r, err := state.account().CreateReview(cmd.Context(), in)
			if err != nil {
				return clierr.FromAPI("failed to post review", err)
			}
			cmd.Printf("Review %s posted.\n", r.ID)
			return nil
		},
	}
	add.Flags().IntVarP(&in.Rating, "rating", "r", 5, "Rating from 1 to 5")
	add.Flags().StringVarP(&in.Comment, "comment", "m", "", "Review text")

	cmd.AddCommand(add)
	return cmd
}

func orderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Place and track orders",
	}

	var lf listFlags
	list := &cobra.Command{
		Use:     "list",
		Short:   "List your orders",
		Args:    cobra.NoArgs,
		PreRunE: loggedIn,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := lf.params()
			if err != nil {
				return err
			}
			page, err := state.account().Orders(cmd.Context(), params)
			if err != nil {
				return clierr.FromAPI("failed to list orders", err)
			}
			if len(page.Items) == 0 {
				cmd.Println("You have no orders yet.")
				return nil
			}
			table := newTable(cmd.OutOrStdout(), "ID", "Date", "Items", "Total", "Payment", "Status")
			for _, o := range page.Items {
				table.Append([]string{o.ID, date(o.CreatedAt), strconv.Itoa(len(o.Items)), money(o.TotalPrice), o.PaymentMethod, o.Status})
			}
			table.Render()
			printPagination(cmd, page.Pagination, len(page.Items))
			return nil
		},
	}
	lf.register(list)

	var in shop.CheckoutInput
	checkout := &cobra.Command{
		Use:     "checkout",
		Short:   "Order everything in the cart",
		Args:    cobra.NoArgs,
		PreRunE: loggedIn,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.PaymentMethod != "cod" && in.PaymentMethod != "vnpay" {
				return clierr.New(clierr.Validation, "--payment must be cod or vnpay", nil)
			}
			if err := validation.ValidateNonEmptyString("street", in.ShippingAddress.Street); err != nil {
				return invalid(err)
			}
			if err := validation.ValidateNonEmptyString("city", in.ShippingAddress.City); err != nil {
				return invalid(err)
			}
			o, err := state.account().Checkout(cmd.Context(), in)
			if err != nil {
				return clierr.FromAPI("checkout failed", err)
			}
			cmd.Printf("Order %s placed: %s (%s)\n", o.ID, money(o.TotalPrice), o.Status)
			if o.PaymentURL != "" {
				cmd.Printf("Complete the payment at: %s\n", o.PaymentURL)
			}
			return nil
		},
	}
	f := checkout.Flags()
	f.StringVar(&in.ShippingAddress.FullName, "name", "", "Recipient name")
	f.StringVar(&in.ShippingAddress.Phone, "phone", "", "Recipient phone")
	f.StringVar(&in.ShippingAddress.Street, "street", "", "Street address")
	f.StringVar(&in.ShippingAddress.Ward, "ward", "", "Ward")
	f.StringVar(&in.ShippingAddress.District, "district", "", "District")
	f.StringVar(&in.ShippingAddress.City, "city", "", "City")
	f.StringVar(&in.PaymentMethod, "payment", "cod", "Payment method: cod or vnpay")
	f.StringVar(&in.CouponCode, "coupon", "", "Coupon code")
	f.StringVar(&in.Note, "note", "", "Delivery note")

	cmd.AddCommand(list, checkout)
	return cmd
}
