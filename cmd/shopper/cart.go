package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"storefront-service/internal/cart"
	"storefront-service/internal/notice"
)

func (c *cli) cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the shopping cart",
	}
	cmd.AddCommand(c.cartAddCmd(), c.cartRemoveCmd(), c.cartSetCmd(), c.cartClearCmd(), c.cartShowCmd())
	return cmd
}

func (c *cli) cartAddCmd() *cobra.Command {
	var quantity int
	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			a := c.app
			ctx := cmd.Context()

			p, err := a.api.GetProduct(ctx, id)
			if err != nil {
				return err
			}
			qty := cart.ClampQuantity(quantity, p.Stock)
			if qty == 0 {
				a.notifier.Notify(ctx, notice.Problem("Out of stock", fmt.Sprintf("%s is currently unavailable.", p.Name)))
				return nil
			}
			a.cart.AddItem(ctx, p, qty)
			a.notifier.Notify(ctx, notice.Info("Added to cart", fmt.Sprintf("%d x %s added to your cart.", qty, p.Name)))
			return nil
		},
	}
	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "units to add")
	return cmd
}

func (c *cli) cartRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			c.app.cart.RemoveItem(cmd.Context(), id)
			return nil
		},
	}
}

func (c *cli) cartSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <product-id> <quantity>",
		Short: "Set the quantity of a cart line; 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			a := c.app
			if qty > 0 {
				for _, line := range a.cart.Items() {
					if line.Product.ID == id {
						qty = cart.ClampQuantity(qty, line.Product.Stock)
						break
					}
				}
			}
			a.cart.UpdateQuantity(cmd.Context(), id, qty)
			return nil
		},
	}
}

func (c *cli) cartClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.app.cart.Clear(cmd.Context())
			return nil
		},
	}
}

func (c *cli) cartShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the cart and the order summary",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			a := c.app
			lines := a.cart.Items()
			if len(lines) == 0 {
				fmt.Fprintln(c.out, "Your cart is empty.")
				return nil
			}

			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE\tSUBTOTAL")
			for _, l := range lines {
				fmt.Fprintf(tw, "%d\t%s\t%d\t$%s\t$%s\n",
					l.Product.ID, l.Product.Name, l.Quantity, l.Product.Price.StringFixed(2), l.Subtotal().StringFixed(2))
			}
			tw.Flush()

			s := a.cart.Summary()
			fmt.Fprintf(c.out, "\nSubtotal (%d items): $%s\n", s.Items, s.Subtotal.StringFixed(2))
			if s.Shipping.IsZero() {
				fmt.Fprintln(c.out, "Shipping: free")
			} else {
				fmt.Fprintf(c.out, "Shipping: $%s (add $%s more for free shipping)\n",
					s.Shipping.StringFixed(2), s.FreeShippingRemaining.StringFixed(2))
			}
			fmt.Fprintf(c.out, "Tax:      $%s\n", s.Tax.StringFixed(2))
			fmt.Fprintf(c.out, "Total:    $%s\n", s.Total.StringFixed(2))
			return nil
		},
	}
}
