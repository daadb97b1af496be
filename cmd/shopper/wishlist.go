package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) wishlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Manage saved products",
	}

	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Save a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			p, err := c.app.api.GetProduct(cmd.Context(), id)
			if err != nil {
				return err
			}
			c.app.wishlist.AddItem(cmd.Context(), p)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Forget a saved product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			c.app.wishlist.RemoveItem(cmd.Context(), id)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "List saved products",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			items := c.app.wishlist.Items()
			if len(items) == 0 {
				fmt.Fprintln(c.out, "Your wishlist is empty.")
				return nil
			}
			c.printProducts(items)
			return nil
		},
	}

	cmd.AddCommand(add, remove, show)
	return cmd
}
