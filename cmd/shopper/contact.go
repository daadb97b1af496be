package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"storefront-service/internal/domain"
	"storefront-service/internal/feedback"
	"storefront-service/internal/validation"
)

func (c *cli) contactCmd() *cobra.Command {
	var name, email, subject, message string
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Send a message to the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form := feedback.NewForm(c.app.api, c.app.notifier)
			form.Name = name
			form.Email = email
			form.Subject = domain.Subject(subject)
			form.Message = message

			_, err := form.Submit(cmd.Context())
			var verr *validation.Error
			if errors.As(err, &verr) {
				c.printFieldErrors(verr)
				return errors.New("the message was not sent")
			}
			// Submit failures were already shown as a notice.
			if err != nil {
				return errors.New("the message was not sent")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "your name")
	cmd.Flags().StringVar(&email, "email", "", "reply address")
	cmd.Flags().StringVar(&subject, "subject", string(domain.SubjectGeneral), "general, support, business or feedback")
	cmd.Flags().StringVarP(&message, "message", "m", "", "at least 10 characters")
	return cmd
}

// printFieldErrors lists validation failures by flag name, sorted.
func (c *cli) printFieldErrors(verr *validation.Error) {
	fields := verr.Fields()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(c.out, "  --%s: %s\n", k, fields[k])
	}
}
