package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
)

// cli holds what every subcommand shares. app is built once, before the command runs.
type cli struct {
	out  io.Writer
	load appLoader
	app  *app
}

func newRootCmd(out io.Writer, load appLoader) *cobra.Command {
	c := &cli{out: out, load: load}

	root := &cobra.Command{
		Use:           "shopper",
		Short:         "Browse the storefront and manage your cart from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.load(cmd.Context(), c.out)
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if c.app == nil {
				return nil
			}
			return c.app.Close()
		},
	}
	root.SetOut(out)

	root.AddCommand(
		c.productsCmd(),
		c.productCmd(),
		c.reviewCmd(),
		c.cartCmd(),
		c.wishlistCmd(),
		c.contactCmd(),
		c.adminCmd(),
	)
	return root
}

func parseProductID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid product id %q", arg)
	}
	return id, nil
}
