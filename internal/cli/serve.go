package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_cart/cart-sync/internal/orderapi"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type ServeOptions struct {
	*RootOptions
	Menu string
}

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference order server",
		Long: `Run an order server exposing add-to-order/, remove-from-order/,
get-item-quantities/ and get-cart-quantity/.

Carts are kept in memory, or in Redis when STORE=redis. The menu is read
from --menu (or MENU_FILE), a JSON array of items; without one a demo menu is served.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Menu, "menu", "", "path to a JSON menu file (overrides MENU_FILE)")

	return cmd
}

func runServer(ctx context.Context, opts *ServeOptions) error {
	cfg, log := opts.cfg, opts.log

	catalog := orderapi.DemoCatalog()
	menu := opts.Menu
	if menu == "" {
		menu = cfg.MenuFile
	}
	if menu != "" {
		var err error
		if catalog, err = orderapi.LoadCatalog(menu); err != nil {
			return err
		}
		log.Info("menu loaded", "path", menu, "items", len(catalog))
	}

	var store orderapi.Store = orderapi.NewMemoryStore()
	if cfg.Store == "redis" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis %s: %w", cfg.RedisAddr, err)
		}
		store = orderapi.NewRedisStore(client)
	}

	svc := orderapi.NewService(store, catalog, log)
	handler := orderapi.NewHandler(svc, log).Routes(cfg.CSRFCookieName, cfg.CSRFHeaderName)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(handler, "order-server"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("order server starting", "addr", srv.Addr, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("server exited")
	return nil
}
