package cmd

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/habedi/solekit/pkg/clierr"
	"github.com/habedi/solekit/pkg/hasher"
	"github.com/habedi/solekit/pkg/operations"
	"github.com/habedi/solekit/pkg/pool"
	"github.com/habedi/solekit/pkg/validation"
	"github.com/habedi/solekit/shop"
	"github.com/spf13/cobra"
)

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Back-office management (administrators only)",
	}

	cmd.AddCommand(
		resourceCmd(resourceView[shop.Product]{
			name:    "products",
			pick:    func(a *shop.Admin) *shop.Resource[shop.Product] { return a.Products },
			headers: []string{"ID", "Name", "Brand", "Price", "Sale", "Stock", "Active"},
			row: func(p shop.Product) []string {
				return append(productRow(p), yesNo(p.IsActive))
			},
		}),
		resourceCmd(resourceView[shop.Brand]{
			name:    "brands",
			pick:    func(a *shop.Admin) *shop.Resource[shop.Brand] { return a.Brands },
			headers: []string{"ID", "Name", "Country", "Active"},
			row: func(b shop.Brand) []string {
				return []string{b.ID, b.Name, b.Country, yesNo(b.IsActive)}
			},
		}),
		resourceCmd(resourceView[shop.Category]{
			name:    "categories",
			pick:    func(a *shop.Admin) *shop.Resource[shop.Category] { return a.Categories },
			headers: []string{"ID", "Name", "Parent", "Active"},
			row: func(c shop.Category) []string {
				return []string{c.ID, c.Name, c.Parent.Label(), yesNo(c.IsActive)}
			},
		}),
		resourceCmd(entityView("tags", func(a *shop.Admin) *shop.Resource[shop.Entity] { return a.Tags })),
		resourceCmd(entityView("materials", func(a *shop.Admin) *shop.Resource[shop.Entity] { return a.Materials })),
		resourceCmd(entityView("use-cases", func(a *shop.Admin) *shop.Resource[shop.Entity] { return a.UseCases })),
		resourceCmd(resourceView[shop.Discount]{
			name:    "discounts",
			pick:    func(a *shop.Admin) *shop.Resource[shop.Discount] { return a.Discounts },
			headers: []string{"ID", "Code", "Type", "Value", "Used", "Expires", "Active"},
			row: func(d shop.Discount) []string {
				used := strconv.Itoa(d.UsedCount)
				if d.UsageLimit > 0 {
					used += "/" + strconv.Itoa(d.UsageLimit)
				}
				return []string{d.ID, d.Code, d.Type, discountValue(d), used, date(d.EndDate), yesNo(d.IsActive)}
			},
		}),
		knowledgeCmd(),
		dashboardCmd(),
	)

	return cmd
}

func adminOnly(cmd *cobra.Command, _ []string) error {
	return state.requireAdmin(cmd.Context())
}

// resourceView describes how one admin collection is reached and printed.
type resourceView[T any] struct {
	name    string
	pick    func(*shop.Admin) *shop.Resource[T]
	headers []string
	row     func(T) []string
}

func entityView(name string, pick func(*shop.Admin) *shop.Resource[shop.Entity]) resourceView[shop.Entity] {
	return resourceView[shop.Entity]{
		name:    name,
		pick:    pick,
		headers: []string{"ID", "Name", "Slug", "Active"},
		row: func(e shop.Entity) []string {
			return []string{e.ID, e.Name, e.Slug, yesNo(e.IsActive)}
		},
	}
}

// resourceCmd builds the list/get/create/update/delete/restore/toggle
// commands for one admin collection.
func resourceCmd[T any](v resourceView[T]) *cobra.Command {
	res := func() *shop.Resource[T] { return v.pick(state.admin()) }

	cmd := &cobra.Command{
		Use:   v.name,
		Short: fmt.Sprintf("Manage %s", v.name),
	}

	var lf listFlags
	list := &cobra.Command{
		Use:     "list",
		Short:   fmt.Sprintf("List %s, including inactive ones", v.name),
		Args:    cobra.NoArgs,
		PreRunE: adminOnly,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := lf.params()
			if err != nil {
				return err
			}
			page, err := res().List(cmd.Context(), params)
			if err != nil {
				return clierr.FromAPI("failed to list "+v.name, err)
			}
			if len(page.Items) == 0 {
				cmd.Printf("No %s found.\n", v.name)
				return nil
			}
			table := newTable(cmd.OutOrStdout(), v.headers...)
			for _, item := range page.Items {
				table.Append(v.row(item))
			}
			table.Render()
			printPagination(cmd, page.Pagination, len(page.Items))
			return nil
		},
	}
	lf.register(list)

	get := &cobra.Command{
		Use:     "get <id>",
		Short:   "Show one item as JSON",
		Args:    cobra.ExactArgs(1),
		PreRunE: adminOnly,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateID(args[0]); err != nil {
				return invalid(err)
			}
			item, err := res().Get(cmd.Context(), args[0])
			if err != nil {
				return clierr.FromAPI("failed to fetch "+args[0], err)
			}
			return printJSON(cmd, item)
		},
	}

	var data, file string
	create := &cobra.Command{
		Use:     "create",
		Short:   "Create an item from a JSON object",
		Args:    cobra.NoArgs,
		PreRunE: adminOnly,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd, data, file)
			if err != nil {
				return err
			}
			item, err := res().Create(cmd.Context(), payload)
			if err != nil {
				return clierr.FromAPI("failed to create", err)
			}
			return printJSON(cmd, item)
		},
	}
	create.Flags().StringVarP(&data, "data", "d", "", "JSON object with the fields to set")
	create.Flags().StringVarP(&file, "file", "f", "", "Read the JSON object from a file ('-' for stdin)")

	update := &cobra.Command{
		Use:     "update <id>",
		Short:   "Update the given fields of an item",
		Args:    cobra.ExactArgs(1),
		PreRunE: adminOnly,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateID(args[0]); err != nil {
				return invalid(err)
			}
			payload, err := readPayload(cmd, data, file)
			if err != nil {
				return err
			}
			item, err := res().Update(cmd.Context(), args[0], payload)
			if err != nil {
				return clierr.FromAPI("failed to update "+args[0], err)
			}
			return printJSON(cmd, item)
		},
	}
	update.Flags().StringVarP(&data, "data", "d", "", "JSON object with the fields to change")
	update.Flags().StringVarP(&file, "file", "f", "", "Read the JSON object from a file ('-' for stdin)")

	cmd.AddCommand(
		list,
		get,
		create,
		update,
		bulkCmd("delete", "Soft-delete items", func(ctx context.Context, id string) error {
			return res().Delete(ctx, id)
		}),
		bulkCmd("restore", "Restore soft-deleted items", func(ctx context.Context, id string) error {
			_, err := res().Restore(ctx, id)
			return err
		}),
		bulkCmd("toggle", "Flip the active flag of items", func(ctx context.Context, id string) error {
			_, err := res().ToggleStatus(ctx, id)
			return err
		}),
	)
	return cmd
}

// bulkCmd applies fn to every id argument with bounded concurrency and
// reports each outcome.
func bulkCmd(use, short string, fn func(ctx context.Context, id string) error) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:     use + " <id>...",
		Short:   short,
		Args:    cobra.MinimumNArgs(1),
		PreRunE: adminOnly,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateWorkerCount(workers); err != nil {
				return invalid(err)
			}
			for _, id := range args {
				if err := validation.ValidateID(id); err != nil {
					return invalid(err)
				}
			}

			var mu sync.Mutex
			var firstErr error
			pool.Run(cmd.Context(), args, workers, func(ctx context.Context, id string) error {
				err := fn(ctx, id)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
					cmd.PrintErrf("%s: failed\n", id)
					return err
				}
				cmd.Printf("%s: %s ok\n", id, use)
				return nil
			})
			if firstErr != nil {
				return clierr.FromAPI(use+" failed", firstErr)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "Number of concurrent requests")
	return cmd
}

func knowledgeCmd() *cobra.Command {
	cmd := resourceCmd(resourceView[shop.KnowledgeDoc]{
		name:    "knowledge-base",
		pick:    func(a *shop.Admin) *shop.Resource[shop.KnowledgeDoc] { return a.Knowledge.Resource },
		headers: []string{"ID", "Title", "File", "Chunks", "Status", "Active"},
		row: func(d shop.KnowledgeDoc) []string {
			return []string{d.ID, oneLine(d.Title), d.FileName, strconv.Itoa(d.Chunks), d.Status, yesNo(d.IsActive)}
		},
	})
	cmd.Aliases = []string{"kb"}

	var workers int
	var recursive bool
	var algo string
	upload := &cobra.Command{
		Use:     "upload <file|dir>...",
		Short:   "Upload PDF, TXT, MD or DOCX documents",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: adminOnly,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateWorkerCount(workers); err != nil {
				return invalid(err)
			}
			if !hasher.IsValidHashAlgo(algo) {
				return clierr.New(clierr.Validation, fmt.Sprintf("unsupported hash algorithm %q (use one of %v)", algo, hasher.HashAlgorithms), nil)
			}
			files, err := operations.FindDocuments(args, recursive)
			if err != nil {
				return clierr.New(clierr.Validation, err.Error(), err)
			}
			if len(files) == 0 {
				cmd.Println("No uploadable documents found.")
				return nil
			}

			bar := newProgressBar(cmd.ErrOrStderr(), len(files), "Uploading documents...")
			var mu sync.Mutex
			results := operations.UploadDocuments(cmd.Context(), state.admin().Knowledge, files, workers, algo, func(operations.UploadResult) {
				mu.Lock()
				_ = bar.Add(1)
				mu.Unlock()
			})
			_ = bar.Finish()

			table := newTable(cmd.OutOrStdout(), "File", "Checksum ("+algo+")", "Document", "Result")
			failed := 0
			var firstErr error
			for _, r := range results {
				id, result := "-", "uploaded"
				if r.Doc != nil {
					id = r.Doc.ID
				}
				if r.Err != nil {
					failed++
					if firstErr == nil {
						firstErr = r.Err
					}
					result = r.Err.Error()
				}
				table.Append([]string{r.File, r.Checksum, id, result})
			}
			table.Render()
			if failed > 0 {
				return clierr.FromAPI(fmt.Sprintf("%d of %d upload(s) failed", failed, len(results)), firstErr)
			}
			cmd.Printf("Uploaded %d document(s).\n", len(results))
			return nil
		},
	}
	upload.Flags().IntVarP(&workers, "workers", "w", 2, "Number of concurrent uploads")
	upload.Flags().BoolVarP(&recursive, "recursive", "r", false, "Descend into subdirectories")
	upload.Flags().StringVarP(&algo, "algo", "a", hasher.DefaultAlgo, "Checksum algorithm")

	cmd.AddCommand(upload)
	return cmd
}

func dashboardCmd() *cobra.Command {
	var period string
	var top int
	cmd := &cobra.Command{
		Use:     "dashboard",
		Short:   "Show sales statistics",
		Args:    cobra.NoArgs,
		PreRunE: adminOnly,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateRevenuePeriod(period); err != nil {
				return invalid(err)
			}
			if err := validation.ValidateLimit(top); err != nil {
				return invalid(err)
			}
			dash := state.admin().Dashboard
			ctx := cmd.Context()

			sum, err := dash.Summary(ctx)
			if err != nil {
				return clierr.FromAPI("failed to load summary", err)
			}
			cmd.Printf("Revenue: %s\n", money(sum.TotalRevenue))
			cmd.Printf("Orders: %d (%d pending)\n", sum.TotalOrders, sum.PendingOrders)
			cmd.Printf("Customers: %d\n", sum.TotalCustomers)
			cmd.Printf("Products: %d\n", sum.TotalProducts)

			revenue, err := dash.Revenue(ctx, period)
			if err != nil {
				return clierr.FromAPI("failed to load revenue", err)
			}
			if len(revenue) > 0 {
				table := newTable(cmd.OutOrStdout(), "Period", "Orders", "Revenue")
				for _, p := range revenue {
					table.Append([]string{p.Period, strconv.Itoa(p.Orders), money(p.Revenue)})
				}
				table.Render()
			}

			best, err := dash.TopProducts(ctx, top)
			if err != nil {
				return clierr.FromAPI("failed to load top products", err)
			}
			if len(best) > 0 {
				table := newTable(cmd.OutOrStdout(), "#", "Product", "Sold", "Revenue")
				for i, p := range best {
					table.Append([]string{strconv.Itoa(i + 1), p.Name, strconv.Itoa(p.Sold), money(p.Revenue)})
				}
				table.Render()
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&period, "period", "month", "Revenue grouping: day, week, month or year")
	cmd.Flags().IntVar(&top, "top", 5, "Number of best-selling products to show")
	return cmd
}
