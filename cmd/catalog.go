package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/habedi/solekit/db"
	"github.com/habedi/solekit/pkg/clierr"
	"github.com/habedi/solekit/pkg/operations"
	"github.com/habedi/solekit/pkg/validation"
	"github.com/habedi/solekit/shop"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// catalogCmd groups the public catalog commands and the local product cache.
func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the product catalog",
	}

	cmd.AddCommand(
		catalogListCmd(),
		catalogInfoCmd(),
		catalogReviewsCmd(),
		catalogBrandsCmd(),
		catalogCategoriesCmd(),
		catalogSyncCmd(),
		catalogSearchCmd(),
		catalogExportCmd(),
	)

	return cmd
}

func productRow(p shop.Product) []string {
	sale := "-"
	if p.EffectivePrice() < p.Price {
		sale = money(p.SalePrice)
	}
	return []string{p.ID, oneLine(p.Name), p.Brand.Label(), money(p.Price), sale, strconv.Itoa(p.Stock())}
}

func catalogListCmd() *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products from the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := lf.params()
			if err != nil {
				return err
			}
			page, err := state.catalog().Products(cmd.Context(), params)
			if err != nil {
				return clierr.FromAPI("failed to list products", err)
			}
			if len(page.Items) == 0 {
				cmd.Println("No products found.")
				return nil
			}

			table := newTable(cmd.OutOrStdout(), "ID", "Name", "Brand", "Price", "Sale", "Stock")
			table.SetColMinWidth(1, 40)
			for _, p := range page.Items {
				table.Append(productRow(p))
			}
			table.Render()
			printPagination(cmd, page.Pagination, len(page.Items))
			return nil
		},
	}
	lf.register(cmd)
	return cmd
}

func catalogInfoCmd() *cobra.Command {
	var bySlug bool
	cmd := &cobra.Command{
		Use:   "info <id|slug>",
		Short: "Show one product with its variants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				p   *shop.Product
				err error
			)
			if bySlug {
				p, err = state.catalog().ProductBySlug(cmd.Context(), args[0])
			} else {
				if err := validation.ValidateID(args[0]); err != nil {
					return invalid(err)
				}
				p, err = state.catalog().Product(cmd.Context(), args[0])
			}
			if err != nil {
				return clierr.FromAPI("failed to fetch product", err)
			}
			printProduct(cmd, p)
			return nil
		},
	}
	cmd.Flags().BoolVar(&bySlug, "slug", false, "Look the product up by slug instead of id")
	return cmd
}

func printProduct(cmd *cobra.Command, p *shop.Product) {
	cmd.Println("Product Information:")
	cmd.Printf("ID: %s\n", p.ID)
	cmd.Printf("Name: %s\n", p.Name)
	if p.Slug != "" {
		cmd.Printf("Slug: %s\n", p.Slug)
	}
	cmd.Printf("Brand: %s\n", p.Brand.Label())
	cmd.Printf("Category: %s\n", p.Category.Label())
	cmd.Printf("Price: %s\n", money(p.EffectivePrice()))
	if p.EffectivePrice() < p.Price {
		cmd.Printf("Regular price: %s\n", money(p.Price))
	}
	if p.NumReviews > 0 {
		cmd.Printf("Rating: %.1f (%d reviews)\n", p.Rating, p.NumReviews)
	}
	if p.Description != "" {
		cmd.Printf("Description: %s\n", oneLine(p.Description))
	}
	if len(p.Variants) == 0 {
		return
	}
	table := newTable(cmd.OutOrStdout(), "Variant", "Size", "Color", "Stock")
	for _, v := range p.Variants {
		table.Append([]string{v.ID, v.Size, v.Color, strconv.Itoa(v.Stock)})
	}
	table.Render()
}

func catalogReviewsCmd() *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:   "reviews <product-id>",
		Short: "Show the reviews of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateID(args[0]); err != nil {
				return invalid(err)
			}
			params, err := lf.params()
			if err != nil {
				return err
			}
			page, err := state.catalog().Reviews(cmd.Context(), args[0], params)
			if err != nil {
				return clierr.FromAPI("failed to fetch reviews", err)
			}
			if len(page.Items) == 0 {
				cmd.Println("No reviews yet.")
				return nil
			}
			table := newTable(cmd.OutOrStdout(), "Date", "User", "Rating", "Comment")
			table.SetColMinWidth(3, 50)
			for _, r := range page.Items {
				table.Append([]string{date(r.CreatedAt), r.User.Label(), strings.Repeat("*", r.Rating), oneLine(r.Comment)})
			}
			table.Render()
			printPagination(cmd, page.Pagination, len(page.Items))
			return nil
		},
	}
	lf.register(cmd)
	return cmd
}

func catalogBrandsCmd() *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:   "brands",
		Short: "List brands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := lf.params()
			if err != nil {
				return err
			}
			page, err := state.catalog().Brands(cmd.Context(), params)
			if err != nil {
				return clierr.FromAPI("failed to list brands", err)
			}
			table := newTable(cmd.OutOrStdout(), "ID", "Name", "Country")
			for _, b := range page.Items {
				table.Append([]string{b.ID, b.Name, b.Country})
			}
			table.Render()
			printPagination(cmd, page.Pagination, len(page.Items))
			return nil
		},
	}
	lf.register(cmd)
	return cmd
}

func catalogCategoriesCmd() *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := lf.params()
			if err != nil {
				return err
			}
			page, err := state.catalog().Categories(cmd.Context(), params)
			if err != nil {
				return clierr.FromAPI("failed to list categories", err)
			}
			table := newTable(cmd.OutOrStdout(), "ID", "Name", "Parent")
			for _, c := range page.Items {
				table.Append([]string{c.ID, c.Name, c.Parent.Label()})
			}
			table.Render()
			printPagination(cmd, page.Pagination, len(page.Items))
			return nil
		},
	}
	lf.register(cmd)
	return cmd
}

// catalogSyncCmd copies the whole catalog into the local database.
func catalogSyncCmd() *cobra.Command {
	var workers, pageSize int
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Download the full catalog into the local cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateWorkerCount(workers); err != nil {
				return invalid(err)
			}
			if err := validation.ValidateLimit(pageSize); err != nil {
				return invalid(err)
			}

			bar := newProgressBar(cmd.ErrOrStderr(), 1, "Syncing catalog...")
			onPage := func(done, total int) {
				bar.ChangeMax(total)
				_ = bar.Set(done)
			}

			repo := db.NewProductRepository(db.GetDB())
			n, err := operations.SyncCatalog(cmd.Context(), state.catalog(), repo, operations.SyncParams{
				PageSize: pageSize,
				Workers:  workers,
				OnPage:   onPage,
			})
			_ = bar.Finish()
			if err != nil {
				return clierr.FromAPI("catalog sync failed", err)
			}
			cmd.Printf("Cached %d product(s).\n", n)
			return nil
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 5, "Number of pages fetched concurrently")
	cmd.Flags().IntVar(&pageSize, "page-size", validation.MaxPageLimit, "Products per request")
	return cmd
}

// catalogSearchCmd searches the local cache by name.
func catalogSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Search the local catalog cache by product name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := strings.TrimSpace(args[0])
			if err := validation.ValidateNonEmptyString("search term", term); err != nil {
				return invalid(err)
			}
			rows, err := db.NewProductRepository(db.GetDB()).SearchByName(cmd.Context(), term)
			if err != nil {
				return clierr.New(clierr.Internal, "failed to search the local cache", err)
			}
			if len(rows) == 0 {
				cmd.Printf("No cached products match %q. Run 'solekit catalog sync' to refresh the cache.\n", term)
				return nil
			}
			table := newTable(cmd.OutOrStdout(), "ID", "Name", "Brand", "Price", "Active")
			table.SetColMinWidth(1, 40)
			for _, r := range rows {
				table.Append([]string{r.ID, oneLine(r.Name), r.Brand, money(r.Price), yesNo(r.IsActive)})
			}
			table.Render()
			log.Info().Msgf("Found %d cached product(s) matching %q", len(rows), term)
			return nil
		},
	}
}

// catalogExportCmd writes the local cache to a JSON or CSV file.
func catalogExportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export <dir>",
		Short: "Export the local catalog cache as JSON or CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if format != "json" && format != "csv" {
				return clierr.New(clierr.Validation, fmt.Sprintf("unsupported format %q (use json or csv)", format), nil)
			}
			rows, err := db.NewProductRepository(db.GetDB()).List(cmd.Context())
			if err != nil {
				return clierr.New(clierr.Internal, "failed to read the local cache", err)
			}
			if len(rows) == 0 {
				cmd.Println("The local cache is empty. Run 'solekit catalog sync' first.")
				return nil
			}
			if err := os.MkdirAll(args[0], 0o755); err != nil {
				return clierr.New(clierr.Validation, "failed to create output directory", err)
			}
			name := filepath.Join(args[0], fmt.Sprintf("catalog-%s.%s", time.Now().Format("20060102-150405"), format))
			if format == "json" {
				err = exportJSON(name, rows)
			} else {
				err = exportCSV(name, rows)
			}
			if err != nil {
				return clierr.New(clierr.Internal, "export failed", err)
			}
			cmd.Printf("Exported %d product(s) to %s\n", len(rows), name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or csv")
	return cmd
}

func exportJSON(name string, rows []db.Product) error {
	products := make([]*shop.Product, 0, len(rows))
	for i := range rows {
		p, err := operations.CachedProduct(&rows[i])
		if err != nil {
			log.Warn().Err(err).Str("product_id", rows[i].ID).Msg("Skipping unreadable cache row")
			continue
		}
		products = append(products, p)
	}
	out, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(name, out, 0o644)
}

func exportCSV(name string, rows []db.Product) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "name", "brand", "price", "is_active", "synced_at"}); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{r.ID, r.Name, r.Brand, money(r.Price), strconv.FormatBool(r.IsActive), r.SyncedAt.Format(time.RFC3339)}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
