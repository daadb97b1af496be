package main

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"storefront-service/internal/catalog"
	"storefront-service/internal/domain"
)

func (c *cli) productsCmd() *cobra.Command {
	var (
		search   string
		category string
		sortKey  string
		page     int

		featured    bool
		trending    bool
		recommended bool
	)
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List the catalog with search, category filter, sorting and paging",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := c.app
			fetch := a.api.ListProducts
			switch {
			case featured:
				fetch = a.api.Featured
			case trending:
				fetch = a.api.Trending
			case recommended:
				fetch = a.api.Recommended
			}
			products, err := fetch(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch products: %w", err)
			}
			a.catalog.Replace(products)

			b := catalog.NewBrowser(a.catalog, a.pageSize)
			b.SetSearch(search)
			b.SetCategory(category)
			b.SetSort(catalog.ParseSortKey(sortKey))
			b.SetPage(page)

			result := b.Current()
			c.printProducts(result.Items)
			fmt.Fprintf(c.out, "Page %d of %d (%d products)\n", result.Page, max(result.TotalPages, 1), result.Total)
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "match name, description or category")
	cmd.Flags().StringVarP(&category, "category", "c", domain.CategoryAll, `category name or "all"`)
	cmd.Flags().StringVar(&sortKey, "sort", string(catalog.SortFeatured), "featured, price-low, price-high or newest")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	cmd.Flags().BoolVar(&featured, "featured", false, "browse only featured products")
	cmd.Flags().BoolVar(&trending, "trending", false, "browse the most viewed products")
	cmd.Flags().BoolVar(&recommended, "recommended", false, "browse the recommended products")
	cmd.MarkFlagsMutuallyExclusive("featured", "trending", "recommended")
	return cmd
}

// productReviewLimit caps the reviews shown on the detail view.
const productReviewLimit = 3

func (c *cli) productCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Show one product with its rating",
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
			if err := a.api.TrackView(ctx, id); err != nil {
				a.log.WarnContext(ctx, "failed to track product view", slog.Int64("product_id", id), slog.String("error", err.Error()))
			}

			fmt.Fprintf(c.out, "%s (#%d)\n", p.Name, p.ID)
			fmt.Fprintf(c.out, "Category: %s\nPrice:    $%s\n", p.Category, p.Price.StringFixed(2))
			fmt.Fprintf(c.out, "Stock:    %s\n", stockLabel(p))
			if p.Description != "" {
				fmt.Fprintf(c.out, "\n%s\n", p.Description)
			}
			if rating, err := a.api.Rating(ctx, id); err == nil && rating.TotalReviews > 0 {
				fmt.Fprintf(c.out, "\nRated %.1f/5 from %d reviews\n", rating.AverageRating, rating.TotalReviews)
			}
			if a.wishlist.IsInWishlist(id) {
				fmt.Fprintln(c.out, "In your wishlist")
			}

			reviews, err := a.api.Reviews(ctx, id)
			if err != nil {
				a.log.WarnContext(ctx, "failed to fetch reviews", slog.Int64("product_id", id), slog.String("error", err.Error()))
				return nil
			}
			if len(reviews) > productReviewLimit {
				fmt.Fprintf(c.out, "\nLatest %d of %d reviews (see `shopper review list %d`):\n", productReviewLimit, len(reviews), id)
				reviews = reviews[:productReviewLimit]
			} else if len(reviews) > 0 {
				fmt.Fprintln(c.out, "\nReviews:")
			}
			c.printReviews(reviews)
			return nil
		},
	}
}

func (c *cli) printProducts(products []domain.Product) {
	if len(products) == 0 {
		fmt.Fprintln(c.out, "No products found.")
		return
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK")
	for _, p := range products {
		name := p.Name
		if p.Featured {
			name += " *"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t$%s\t%s\n", p.ID, name, p.Category, p.Price.StringFixed(2), stockLabel(p))
	}
	tw.Flush()
}

func stockLabel(p domain.Product) string {
	switch {
	case p.OutOfStock():
		return "out of stock"
	case p.LowStock():
		return fmt.Sprintf("%d (low)", p.Stock)
	default:
		return fmt.Sprintf("%d", p.Stock)
	}
}
