package cli

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/pages"
	"github.com/Skotchmaster/storefront/pkg/shopclient"
)

func (a *app) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage products and orders (admin accounts)",
	}
	cmd.AddCommand(
		a.adminProductsCmd(),
		a.saveProductCmd("create-product", "Create a product", 0),
		a.saveProductCmd("update-product <id>", "Replace a product's fields", 1),
		a.deleteProductCmd(),
		a.adminOrdersCmd(),
		a.assignCmd(),
		a.statusCmd(),
	)
	return cmd
}

func (a *app) adminProductsCmd() *cobra.Command {
	var q pages.AdminProductQuery
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List all products, inactive ones included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := a.visitor(cmd)
			if err != nil {
				return err
			}
			view, err := v.Pages.AdminProducts(cmd.Context(), q)
			if err != nil {
				return err
			}
			return a.printer(cmd).print(view, func(w io.Writer) {
				productRows(w, view.Products)
				pageFooter(w, view.Pagination)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&q.Search, "search", "", "search text")
	f.StringVar(&q.Category, "category", "", "category name")
	f.IntVar(&q.Page, "page", 1, "page number")
	return cmd
}

func (a *app) saveProductCmd(use, short string, nargs int) *cobra.Command {
	var (
		in    shopclient.ProductInput
		price string
	)
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := decimal.NewFromString(price)
			if err != nil {
				return fmt.Errorf("price must be a number, got %q", price)
			}
			in.Price = p
			id := ""
			if nargs == 1 {
				id = args[0]
			}

			v, err := a.visitor(cmd)
			if err != nil {
				return err
			}
			prod, err := v.Pages.SaveProduct(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			if prod == nil {
				return a.printer(cmd).message("Product saved")
			}
			return a.printer(cmd).print(prod, func(w io.Writer) {
				row(w, "ID", prod.ID)
				row(w, "NAME", prod.Name)
				row(w, "PRICE", prod.Price.StringFixed(2))
				row(w, "STOCK", prod.Stock)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "product name")
	f.StringVar(&in.Description, "description", "", "description")
	f.StringVar(&price, "price", "0", "unit price")
	f.StringVar(&in.Image, "image", "", "image URL")
	f.IntVar(&in.Stock, "stock", 0, "units in stock")
	f.StringVar(&in.Category, "category", "", "category")
	f.StringVar(&in.Brand, "brand", "", "brand")
	f.StringSliceVar(&in.Features, "feature", nil, "feature line, repeatable")
	return cmd
}

func (a *app) deleteProductCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-product <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.visitor(cmd)
			if err != nil {
				return err
			}
			if err := v.Pages.DeleteProduct(cmd.Context(), args[0]); err != nil {
				return err
			}
			return a.printer(cmd).message("Product %s deleted", args[0])
		},
	}
}

func (a *app) adminOrdersCmd() *cobra.Command {
	var f pages.AdminOrderFilter
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List all orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := a.visitor(cmd)
			if err != nil {
				return err
			}
			view, err := v.Pages.AdminOrders(cmd.Context(), f)
			if err != nil {
				return err
			}
			return a.printer(cmd).print(view, func(w io.Writer) {
				row(w, "ID", "CUSTOMER", "STATUS", "TOTAL", "DELIVERY")
				for _, o := range view.Orders {
					customer, agent := "", ""
					if o.User != nil {
						customer = o.User.Name
					}
					if o.AssignedDeliveryBoy != nil {
						agent = o.AssignedDeliveryBoy.Name
					} else if o.CanAssign {
						agent = "(unassigned)"
					}
					row(w, o.ID, customer, o.Status, o.Total.StringFixed(2), agent)
				}
				pageFooter(w, view.Pagination)
			})
		},
	}
	cmd.Flags().StringVar(&f.Status, "status", "", "only orders in this status")
	cmd.Flags().StringVar(&f.DeliveryBoy, "delivery-boy", "", "only orders assigned to this agent id")
	cmd.Flags().IntVar(&f.Page, "page", 1, "page number")
	return cmd
}

func (a *app) assignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign <order-id> <agent-id>",
		Short: "Assign a pending order to a delivery agent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.visitor(cmd)
			if err != nil {
				return err
			}
			if err := v.Pages.AssignOrder(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			return a.printer(cmd).message("Order %s assigned", args[0])
		},
	}
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <order-id> <status>",
		Short: "Set an order's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.visitor(cmd)
			if err != nil {
				return err
			}
			if err := v.Pages.SetOrderStatus(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			return a.printer(cmd).message("Order %s is now %s", args[0], args[1])
		},
	}
}

func (a *app) deliveryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delivery",
		Short: "Work your assigned deliveries (delivery accounts)",
	}

	var f pages.DeliveryFilter
	orders := &cobra.Command{
		Use:   "orders",
		Short: "List orders assigned to you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := a.visitor(cmd)
			if err != nil {
				return err
			}
			view, err := v.Pages.Delivery(cmd.Context(), f)
			if err != nil {
				return err
			}
			return a.printer(cmd).print(view, func(w io.Writer) {
				row(w, "ID", "STATUS", "NEXT", "SHIP TO")
				for _, o := range view.Orders {
					row(w, o.ID, o.Status, o.Next, formatAddress(o.ShippingAddress))
				}
				fmt.Fprintf(w, "\nassigned %d\tshipped %d\tdelivered today %d\n",
					view.Counts.Assigned, view.Counts.Shipped, view.Counts.DeliveredToday)
				pageFooter(w, view.Pagination)
			})
		},
	}
	orders.Flags().StringVar(&f.Status, "status", "", "only orders in this status")
	orders.Flags().IntVar(&f.Page, "page", 1, "page number")

	advance := &cobra.Command{
		Use:   "advance <order-id>",
		Short: "Move an order to its next delivery status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.visitor(cmd)
			if err != nil {
				return err
			}
			next, err := v.Pages.Advance(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printer(cmd).message("Order %s is now %s", args[0], next)
		},
	}
	cmd.AddCommand(orders, advance)
	return cmd
}
