package cli

import (
	"log/slog"
	"os"

	"github.com/fjod/go_cart/cart-sync/internal/config"
	"github.com/fjod/go_cart/cart-sync/internal/logger"
	"github.com/spf13/cobra"
)

// RootOptions holds state shared by all commands.
type RootOptions struct {
	Verbose bool

	cfg *config.Config
	log *slog.Logger
}

// NewRootCommand creates the root command of the cartsync CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "cartsync",
		Short: "Keep a local cart view in sync with the order server",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			level := cfg.LogLevel
			if opts.Verbose {
				level = "debug"
			}
			opts.cfg = cfg
			opts.log = logger.New(os.Stderr, level)
			slog.SetDefault(opts.log)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewMutateCommand(opts, "add"))
	cmd.AddCommand(NewMutateCommand(opts, "remove"))

	return cmd
}
