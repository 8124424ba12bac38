package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fjod/go_cart/cart-sync/internal/domain"
	"github.com/fjod/go_cart/cart-sync/internal/resolver"
	"github.com/spf13/cobra"
)

type MutateOptions struct {
	*RootOptions
	Items string
	Yes   bool
}

// NewMutateCommand builds the add or remove command.
func NewMutateCommand(rootOpts *RootOptions, action string) *cobra.Command {
	opts := &MutateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           action + " <item-id>",
		Short:         fmt.Sprintf("%s one unit of an item and print the reconciled page", action),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutate(cmd.Context(), opts, action, domain.ItemID(args[0]), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Items, "items", "", "comma separated menu item ids to render (default: demo menu)")
	if action == "add" {
		cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "clear a cart from another restaurant without asking")
	}

	return cmd
}

func runMutate(ctx context.Context, opts *MutateOptions, action string, itemID domain.ItemID, in io.Reader, out io.Writer) error {
	s, err := newSession(opts.RootOptions, parseItems(opts.Items))
	if err != nil {
		return err
	}

	prompter := linePrompter(in, out)
	if opts.Yes {
		prompter = resolver.Always(domain.DecisionProceed)
	}
	ctrl := s.controller(opts.RootOptions, prompter, out)

	if action == "remove" {
		err = ctrl.Remove(ctx, itemID)
	} else {
		err = ctrl.Add(ctx, itemID)
	}
	if err != nil {
		return err
	}

	if _, ok := s.engine.Current(); !ok {
		s.engine.Reconcile(ctx)
	}
	return s.page.Dump(out)
}
