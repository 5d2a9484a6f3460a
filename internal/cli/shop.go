package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/pages"
	"github.com/Skotchmaster/storefront/pkg/models"
)

func (a *app) productsCmd() *cobra.Command {
	var q pages.CategoryQuery
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products, optionally by category or search text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := a.visitor(cmd)
			if err != nil {
				return err
			}
			view, err := v.Pages.Category(cmd.Context(), q)
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
	f.StringVar(&q.Category, "category", "", "category name")
	f.StringVar(&q.Search, "search", "", "search text")
	f.IntVar(&q.Page, "page", 1, "page number")
	return cmd
}

func (a *app) categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories with their product counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := a.visitor(cmd)
			if err != nil {
				return err
			}
			view, err := v.Pages.Home(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer(cmd).print(view.Categories, func(w io.Writer) {
				row(w, "CATEGORY", "PRODUCTS")
				for _, c := range view.Categories {
					row(w, c.Name, c.Count)
				}
			})
		},
	}
}

func (a *app) productCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.visitor(cmd)
			if err != nil {
				return err
			}
			view, err := v.Pages.ProductDetail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p := view.Product
			return a.printer(cmd).print(view, func(w io.Writer) {
				row(w, "ID", p.ID)
				row(w, "NAME", p.Name)
				row(w, "CATEGORY", p.Category)
				if p.Brand != "" {
					row(w, "BRAND", p.Brand)
				}
				row(w, "PRICE", p.Price.StringFixed(2))
				row(w, "STOCK", p.Stock)
				if view.InCart > 0 {
					row(w, "IN CART", view.InCart)
				}
				if p.Description != "" {
					row(w, "DESCRIPTION", p.Description)
				}
			})
		},
	}
}

func (a *app) cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and change your cart",
	}
	show := &cobra.Command{
		Use:   "show",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.showCart(cmd)
		},
	}
	add := &cobra.Command{
		Use:   "add <product-id> [quantity]",
		Short: "Add a product",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty := 1
			if len(args) == 2 {
				n, err := quantityArg(args[1])
				if err != nil {
					return err
				}
				qty = n
			}
			return a.cartAction(cmd, func(p *pages.Pages) error {
				return p.AddToCart(cmd.Context(), args[0], qty)
			})
		},
	}
	set := &cobra.Command{
		Use:   "set <product-id> <quantity>",
		Short: "Change the quantity of a line; 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := quantityArg(args[1])
			if err != nil {
				return err
			}
			return a.cartAction(cmd, func(p *pages.Pages) error {
				return p.ChangeQuantity(cmd.Context(), args[0], qty)
			})
		},
	}
	remove := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.cartAction(cmd, func(p *pages.Pages) error {
				return p.RemoveItem(cmd.Context(), args[0])
			})
		},
	}
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.cartAction(cmd, func(p *pages.Pages) error {
				return p.ClearCart(cmd.Context())
			})
		},
	}
	cmd.AddCommand(show, add, set, remove, clearCmd)
	return cmd
}

func quantityArg(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("quantity must be a number, got %q", s)
	}
	return n, nil
}

func (a *app) cartAction(cmd *cobra.Command, fn func(*pages.Pages) error) error {
	v, err := a.visitor(cmd)
	if err != nil {
		return err
	}
	if err := fn(v.Pages); err != nil {
		return err
	}
	return a.showCart(cmd)
}

func (a *app) showCart(cmd *cobra.Command) error {
	v, err := a.visitor(cmd)
	if err != nil {
		return err
	}
	view, err := v.Pages.Cart(cmd.Context())
	if err != nil {
		return err
	}
	return a.printer(cmd).print(view, func(w io.Writer) {
		if len(view.Items) == 0 {
			fmt.Fprintln(w, "Your cart is empty")
			return
		}
		cartRows(w, view.Items)
		fmt.Fprintf(w, "\n%d items\ttotal %s\n", view.ItemCount, view.Total.StringFixed(2))
	})
}

func (a *app) checkoutCmd() *cobra.Command {
	var (
		addr  models.Address
		notes string
	)
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart",
		Long:  "Ships to the address on your profile unless address flags override it.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := a.visitor(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			view, err := v.Pages.Checkout(ctx)
			if err != nil {
				return err
			}
			form := pages.CheckoutForm{ShippingAddress: mergeAddress(view.ShippingAddress, addr), Notes: notes}
			order, err := v.Pages.PlaceOrder(ctx, form)
			if err != nil {
				return err
			}
			return a.printer(cmd).print(order, func(w io.Writer) {
				row(w, "ORDER", order.ID)
				row(w, "STATUS", order.Status)
				row(w, "TOTAL", order.Total.StringFixed(2))
				row(w, "SHIP TO", formatAddress(order.ShippingAddress))
			})
		},
	}
	addressFlags(cmd, &addr)
	cmd.Flags().StringVar(&notes, "notes", "", "delivery notes")
	return cmd
}

func (a *app) ordersCmd() *cobra.Command {
	var f pages.OrderFilter
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Show your order history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := a.visitor(cmd)
			if err != nil {
				return err
			}
			view, err := v.Pages.OrderHistory(cmd.Context(), f)
			if err != nil {
				return err
			}
			return a.printer(cmd).print(view, func(w io.Writer) {
				orderRows(w, view.Orders)
				pageFooter(w, view.Pagination)
			})
		},
	}
	cmd.Flags().StringVar(&f.Status, "status", "", "only orders in this status")
	cmd.Flags().IntVar(&f.Page, "page", 1, "page number")
	return cmd
}
