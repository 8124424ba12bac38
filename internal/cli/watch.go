package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"

	"github.com/fjod/go_cart/cart-sync/internal/reconcile"
	"github.com/spf13/cobra"
)

type WatchOptions struct {
	*RootOptions
	Items string
}

func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the order server and print the cart page on every change",
		Long: `Poll the order server every POLL_INTERVAL and print the rendered page
whenever a reconciliation applies new state.

Example:
  SESSION_ID=u1 CSRF_TOKEN=abc cartsync watch --items 1,2,3`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Items, "items", "", "comma separated menu item ids to render (default: demo menu)")

	return cmd
}

func runWatch(ctx context.Context, opts *WatchOptions, out io.Writer) error {
	s, err := newSession(opts.RootOptions, parseItems(opts.Items))
	if err != nil {
		return err
	}

	poller := reconcile.NewPoller(&printingReconciler{session: s, out: out, log: opts.log}, opts.cfg.PollInterval, opts.log)
	poller.Start(ctx)
	<-ctx.Done()
	poller.Stop()
	return nil
}

// printingReconciler dumps the page after each reconciliation that applied something.
type printingReconciler struct {
	session *session
	out     io.Writer
	log     *slog.Logger

	mu sync.Mutex
}

func (p *printingReconciler) Reconcile(ctx context.Context) reconcile.Result {
	res := p.session.engine.Reconcile(ctx)
	if !res.SnapshotApplied && !res.AggregateApplied {
		return res
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "--- seq %d\n", res.Seq)
	if err := p.session.page.Dump(p.out); err != nil {
		p.log.ErrorContext(ctx, "write page failed", "error", err)
	}
	return res
}
