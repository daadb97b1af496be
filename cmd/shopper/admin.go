package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"storefront-service/internal/client"
	"storefront-service/internal/domain"
	"storefront-service/internal/notice"
	"storefront-service/internal/session"
)

func (c *cli) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin dashboard",
	}
	cmd.AddCommand(c.adminLoginCmd(), c.adminLogoutCmd(), c.adminStatsCmd(), c.adminFeedbackCmd())
	return cmd
}

func (c *cli) adminLoginCmd() *cobra.Command {
	var (
		email    string
		password string
		remember bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as an administrator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := c.app
			ctx := cmd.Context()

			user, err := a.api.AdminLogin(ctx, domain.AdminCredentials{Email: email, Password: password})
			if err != nil {
				if errors.Is(err, client.ErrInvalidCredentials) {
					a.notifier.Notify(ctx, notice.Problem("Login failed", "Invalid email or password."))
					return errors.New("login failed")
				}
				return err
			}
			if err := a.gate.Login(ctx, user, remember); err != nil {
				return err
			}
			a.notifier.Notify(ctx, notice.Info("Login successful", "Welcome to the admin dashboard."))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	cmd.Flags().BoolVar(&remember, "remember", false, "stay signed in across restarts")
	return cmd
}

func (c *cli) adminLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.gate.Logout(cmd.Context())
		},
	}
}

func (c *cli) adminStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard figures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := c.app
			ctx := cmd.Context()
			if err := c.requireAdmin(cmd); err != nil {
				return err
			}

			stats, err := a.api.AdminStats(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Products:      %d (%d low on stock)\n", stats.TotalProducts, stats.LowStockProducts)
			fmt.Fprintf(c.out, "Orders:        %d\n", stats.TotalOrders)
			fmt.Fprintf(c.out, "Revenue:       $%s\n", stats.TotalRevenue.StringFixed(2))
			fmt.Fprintf(c.out, "Active users:  %d\n", stats.ActiveUsers)

			categories := make([]string, 0, len(stats.CategoryStats))
			for cat := range stats.CategoryStats {
				categories = append(categories, string(cat))
			}
			sort.Strings(categories)
			fmt.Fprintln(c.out, "\nBy category:")
			for _, cat := range categories {
				fmt.Fprintf(c.out, "  %-18s %d\n", cat, stats.CategoryStats[domain.Category(cat)])
			}

			if len(stats.RecentFeedback) > 0 {
				fmt.Fprintln(c.out, "\nRecent feedback:")
				for _, fb := range stats.RecentFeedback {
					fmt.Fprintf(c.out, "  [%s] %s <%s>: %s\n", fb.Subject, fb.Name, fb.Email, fb.Message)
				}
			}
			return nil
		},
	}
}

func (c *cli) adminFeedbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "feedback",
		Short: "List contact form messages, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.requireAdmin(cmd); err != nil {
				return err
			}
			list, err := c.app.api.ListFeedback(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(c.out, "No messages.")
				return nil
			}
			for _, fb := range list {
				fmt.Fprintf(c.out, "#%d %s [%s] %s <%s>\n  %s\n",
					fb.ID, fb.CreatedAt.Format("2006-01-02"), fb.Subject, fb.Name, fb.Email, fb.Message)
			}
			return nil
		},
	}
}

func (c *cli) requireAdmin(cmd *cobra.Command) error {
	if err := c.app.gate.Require(cmd.Context()); err != nil {
		if errors.Is(err, session.ErrLoginRequired) {
			return errors.New("not signed in; run `shopper admin login` first")
		}
		return err
	}
	return nil
}
