package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Skotchmaster/storefront/pkg/models"
)

type printer struct {
	out  io.Writer
	json bool
}

// print writes v as indented JSON, or hands a tab writer to table.
func (p printer) print(v any, table func(w io.Writer)) error {
	if p.json {
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	table(tw)
	return tw.Flush()
}

func (p printer) message(format string, args ...any) error {
	return p.print(map[string]string{"message": fmt.Sprintf(format, args...)}, func(w io.Writer) {
		fmt.Fprintf(w, format+"\n", args...)
	})
}

func row(w io.Writer, cols ...any) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(w, strings.Join(parts, "\t"))
}

func pageFooter(w io.Writer, p models.Pagination) {
	if p.TotalPages > 1 {
		fmt.Fprintf(w, "\npage %d of %d (%d total)\n", p.CurrentPage, p.TotalPages, p.Total)
	}
}

func userTable(u models.User) func(io.Writer) {
	return func(w io.Writer) {
		row(w, "ID", u.ID)
		row(w, "NAME", u.Name)
		row(w, "EMAIL", u.Email)
		row(w, "ROLE", u.Role)
		if u.Phone != "" {
			row(w, "PHONE", u.Phone)
		}
		if u.Address != nil {
			row(w, "ADDRESS", formatAddress(*u.Address))
		}
	}
}

func formatAddress(a models.Address) string {
	parts := make([]string, 0, 5)
	for _, s := range []string{a.Street, a.City, a.State, a.ZipCode, a.Country} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func productRows(w io.Writer, products []models.Product) {
	row(w, "ID", "NAME", "CATEGORY", "PRICE", "STOCK")
	for _, p := range products {
		row(w, p.ID, p.Name, p.Category, p.Price.StringFixed(2), p.Stock)
	}
}

func orderRows(w io.Writer, orders []models.Order) {
	row(w, "ID", "DATE", "STATUS", "ITEMS", "TOTAL")
	for _, o := range orders {
		row(w, o.ID, o.OrderDate.Format("2006-01-02"), o.Status, len(o.Items), o.Total.StringFixed(2))
	}
}

func cartRows(w io.Writer, items []models.CartItem) {
	row(w, "PRODUCT", "NAME", "QTY", "PRICE", "SUBTOTAL")
	for _, it := range items {
		name := ""
		if it.Product != nil {
			name = it.Product.Name
		}
		row(w, it.ProductID, name, it.Quantity, it.UnitPrice().StringFixed(2), it.LineTotal().StringFixed(2))
	}
}
