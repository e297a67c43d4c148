package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/habedi/solekit/client"
	"github.com/habedi/solekit/pkg/clierr"
	"github.com/habedi/solekit/pkg/validation"
	"github.com/habedi/solekit/shop"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// newTable returns a table with the look used by every listing.
func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetRowLine(false)
	return table
}

func newProgressBar(w io.Writer, total int, desc string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetWidth(20),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionClearOnFinish(),
	)
}

func money(v float64) string { return fmt.Sprintf("%.2f", v) }

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}

// oneLine keeps descriptions from breaking table rows.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// invalid wraps a validation failure.
func invalid(err error) error {
	if err == nil {
		return nil
	}
	return clierr.New(clierr.Validation, err.Error(), err)
}

// listFlags are the paging and filtering flags shared by list commands.
type listFlags struct {
	page   int
	limit  int
	search string
	sort   string
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.page, "page", "p", 1, "Page number")
	cmd.Flags().IntVarP(&f.limit, "limit", "l", 20, "Items per page")
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "Free-text filter")
	cmd.Flags().StringVar(&f.sort, "sort", "", "Sort field, prefix with '-' for descending (e.g. -createdAt)")
}

func (f *listFlags) params() (shop.ListParams, error) {
	if err := validation.ValidatePage(f.page); err != nil {
		return shop.ListParams{}, invalid(err)
	}
	if err := validation.ValidateLimit(f.limit); err != nil {
		return shop.ListParams{}, invalid(err)
	}
	if err := validation.ValidateSort(f.sort); err != nil {
		return shop.ListParams{}, invalid(err)
	}
	return shop.ListParams{Page: f.page, Limit: f.limit, Search: strings.TrimSpace(f.search), Sort: f.sort}, nil
}

func printPagination(cmd *cobra.Command, p *client.Pagination, shown int) {
	if p == nil {
		cmd.Printf("%d item(s)\n", shown)
		return
	}
	cmd.Printf("Page %d of %d (%d total)\n", p.Page, max(p.TotalPages, 1), p.Total)
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return clierr.New(clierr.Internal, "failed to format the response", err)
	}
	cmd.Println(string(out))
	return nil
}

// readPayload returns the JSON object given inline or read from a file ("-"
// is standard input).
func readPayload(cmd *cobra.Command, data, file string) (map[string]any, error) {
	var raw []byte
	switch {
	case data != "" && file != "":
		return nil, clierr.New(clierr.Validation, "use either --data or --file, not both", nil)
	case data != "":
		raw = []byte(data)
	case file == "-":
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, clierr.New(clierr.Internal, "failed to read standard input", err)
		}
		raw = b
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, clierr.New(clierr.Validation, fmt.Sprintf("failed to read %s", file), err)
		}
		raw = b
	default:
		return nil, clierr.New(clierr.Validation, "a JSON payload is required (--data or --file)", nil)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, clierr.New(clierr.Validation, "payload must be a JSON object", err)
	}
	return payload, nil
}

// promptForInput prints prompt and returns the next trimmed line of input.
func promptForInput(cmd *cobra.Command, prompt string) (string, error) {
	cmd.Print(prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", clierr.New(clierr.Validation, "failed to read input", err)
	}
	return strings.TrimSpace(line), nil
}

// promptForPassword reads a password from the terminal without echoing it.
func promptForPassword(cmd *cobra.Command, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", clierr.New(clierr.Validation, "no terminal to read the password from; use --password-stdin", nil)
	}
	cmd.Print(prompt)
	password, err := term.ReadPassword(fd)
	cmd.Println()
	if err != nil {
		return "", clierr.New(clierr.Internal, "failed to read password", err)
	}
	return strings.TrimSpace(string(password)), nil
}
