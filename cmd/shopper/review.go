package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"storefront-service/internal/domain"
	"storefront-service/internal/notice"
	"storefront-service/internal/validation"
)

func (c *cli) reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Read and write product reviews",
	}

	list := &cobra.Command{
		Use:   "list <product-id>",
		Short: "Show every review of a product, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			reviews, err := c.app.api.Reviews(cmd.Context(), id)
			if err != nil {
				return err
			}
			if len(reviews) == 0 {
				fmt.Fprintln(c.out, "No reviews yet.")
				return nil
			}
			c.printReviews(reviews)
			return nil
		},
	}

	var in domain.ReviewInput
	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Rate a product from 1 to 5",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProductID(args[0])
			if err != nil {
				return err
			}
			a := c.app
			ctx := cmd.Context()

			r, err := a.api.AddReview(ctx, id, in)
			var verr *validation.Error
			if errors.As(err, &verr) {
				c.printFieldErrors(verr)
				return errors.New("the review was not posted")
			}
			if err != nil {
				return err
			}
			a.notifier.Notify(ctx, notice.Info("Review posted", fmt.Sprintf("Thanks for rating product #%d %d/5.", r.ProductID, r.Rating)))
			return nil
		},
	}
	add.Flags().Int32VarP(&in.Rating, "rating", "r", 0, "stars from 1 to 5")
	add.Flags().StringVar(&in.Title, "title", "", "short headline")
	add.Flags().StringVar(&in.Comment, "comment", "", "what you thought")

	cmd.AddCommand(list, add)
	return cmd
}

func (c *cli) printReviews(reviews []domain.Review) {
	for _, r := range reviews {
		badge := ""
		if r.Verified {
			badge = " (verified)"
		}
		fmt.Fprintf(c.out, "  %s %s%s\n", stars(r.Rating), r.Title, badge)
		if r.Comment != "" {
			fmt.Fprintf(c.out, "    %s\n", r.Comment)
		}
	}
}

func stars(rating int32) string {
	n := int(max(min(rating, 5), 0))
	return strings.Repeat("*", n) + strings.Repeat(".", 5-n)
}
