// Package cli is shopctl: a terminal storefront for one visitor whose token
// is kept in a local token store under the profile name.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/tokenstore"
	"github.com/Skotchmaster/storefront/internal/visitor"
	pkgconfig "github.com/Skotchmaster/storefront/pkg/config"
	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/shopclient"
)

type Options struct {
	Out io.Writer
	Err io.Writer

	// Tokens replaces the store opened from --token-db.
	Tokens tokenstore.Store
}

type app struct {
	opts Options

	apiURL   string
	timeout  time.Duration
	profile  string
	tokenDB  string
	output   string
	logLevel string

	db *gorm.DB
	v  *visitor.Visitor
}

// Run executes shopctl with args and returns the process exit code.
func Run(ctx context.Context, args []string, opts Options) int {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	root, a := newRoot(opts)
	defer a.close()

	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(opts.Err, "error:", shopclient.Message(err, err.Error()))
		return 1
	}
	return 0
}

func newRoot(opts Options) (*cobra.Command, *app) {
	a := &app{opts: opts}
	root := &cobra.Command{
		Use:           "shopctl",
		Short:         "Browse the shop, manage your cart and orders from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a.output != "table" && a.output != "json" {
				return fmt.Errorf("unknown output format %q", a.output)
			}
			l := logging.NewTo(a.opts.Err, a.logLevel)
			cmd.SetContext(logging.IntoContext(cmd.Context(), l))
			return nil
		},
	}
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)

	f := root.PersistentFlags()
	f.StringVar(&a.apiURL, "api", pkgconfig.EnvDefault("SHOP_API_URL", "http://localhost:5000"), "shop API base URL")
	f.DurationVar(&a.timeout, "timeout", time.Duration(pkgconfig.EnvIntDefault("SHOP_API_TIMEOUT", 10))*time.Second, "per-request timeout")
	f.StringVar(&a.profile, "profile", "default", "name the token is stored under")
	f.StringVar(&a.tokenDB, "token-db", config.DefaultCLITokenDB(), "sqlite file or postgres DSN holding tokens")
	f.StringVarP(&a.output, "output", "o", "table", "output format: table or json")
	f.StringVar(&a.logLevel, "log-level", "warn", "log level")

	root.AddCommand(
		a.loginCmd(), a.registerCmd(), a.logoutCmd(), a.whoamiCmd(), a.profileCmd(),
		a.productsCmd(), a.categoriesCmd(), a.productCmd(),
		a.cartCmd(), a.checkoutCmd(), a.ordersCmd(),
		a.adminCmd(), a.deliveryCmd(),
	)
	return root, a
}

// visitor opens the token store and restores the profile's session once.
func (a *app) visitor(cmd *cobra.Command) (*visitor.Visitor, error) {
	if a.v != nil {
		return a.v, nil
	}
	ctx := cmd.Context()

	store := a.opts.Tokens
	if store == nil {
		if !db.IsPostgres(a.tokenDB) {
			if err := os.MkdirAll(filepath.Dir(a.tokenDB), 0o700); err != nil {
				return nil, fmt.Errorf("token db dir: %w", err)
			}
		}
		gdb, err := db.Open(ctx, a.tokenDB)
		if err != nil {
			return nil, err
		}
		a.db = gdb
		gs, err := tokenstore.NewGormStore(gdb)
		if err != nil {
			return nil, err
		}
		store = gs
	}

	a.v = visitor.New(a.profile, visitor.Options{BaseURL: a.apiURL, Timeout: a.timeout}, store)
	if err := a.v.Session.Restore(ctx); err != nil {
		logging.FromContext(ctx).Warn("session_not_restored", "profile", a.profile, "error", err)
	}
	return a.v, nil
}

func (a *app) close() {
	if a.db != nil {
		_ = db.Close(a.db)
	}
}

func (a *app) printer(cmd *cobra.Command) printer {
	return printer{out: cmd.OutOrStdout(), json: a.output == "json"}
}
