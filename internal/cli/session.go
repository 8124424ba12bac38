package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"slices"
	"strings"

	"github.com/fjod/go_cart/cart-sync/internal/cart"
	"github.com/fjod/go_cart/cart-sync/internal/domain"
	"github.com/fjod/go_cart/cart-sync/internal/gateway"
	"github.com/fjod/go_cart/cart-sync/internal/orderapi"
	"github.com/fjod/go_cart/cart-sync/internal/reconcile"
	"github.com/fjod/go_cart/cart-sync/internal/resolver"
	"github.com/fjod/go_cart/cart-sync/internal/token"
	"github.com/fjod/go_cart/cart-sync/internal/view"
)

// session is one signed-in client: gateway, engine and the page it renders into.
type session struct {
	gw     *gateway.Client
	engine *reconcile.Engine
	page   *view.Page
}

func newSession(opts *RootOptions, items []domain.ItemID) (*session, error) {
	cfg := opts.cfg

	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid CART_BASE_URL: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	var cookies []*http.Cookie
	if cfg.SessionID != "" {
		cookies = append(cookies, &http.Cookie{Name: orderapi.SessionCookieName, Value: cfg.SessionID})
	}
	if cfg.CSRFToken != "" {
		cookies = append(cookies, &http.Cookie{Name: cfg.CSRFCookieName, Value: cfg.CSRFToken})
	}
	jar.SetCookies(u, cookies)

	gw, err := gateway.NewClient(cfg.BaseURL, token.NewJarAccessor(cfg.CSRFCookieName, jar, u),
		gateway.WithHTTPClient(&http.Client{Jar: jar}),
		gateway.WithTimeout(cfg.FetchTimeout),
		gateway.WithTokenHeader(cfg.CSRFHeaderName),
		gateway.WithLogger(opts.log),
	)
	if err != nil {
		return nil, err
	}

	engine := reconcile.NewEngine(gw,
		reconcile.WithFetchTimeout(cfg.FetchTimeout),
		reconcile.WithLogger(opts.log),
	)
	page := view.NewPage(items, cfg.CurrencySymbol)
	engine.Register(page.Menu)
	engine.Register(page.Cart)
	engine.RegisterAggregate(page.Badge)
	engine.RegisterAggregate(page.Total)

	return &session{gw: gw, engine: engine, page: page}, nil
}

func (s *session) controller(opts *RootOptions, p resolver.Prompter, out io.Writer) *cart.Controller {
	return cart.NewController(s.gw, p, s.engine,
		cart.WithLogger(opts.log),
		cart.WithNotifier(cart.NotifierFunc(func(n cart.Notice) {
			fmt.Fprintf(out, "! %s\n", n.Message)
		})),
	)
}

// parseItems splits a comma separated id list. Empty means the demo menu.
func parseItems(list string) []domain.ItemID {
	var items []domain.ItemID
	for _, part := range strings.Split(list, ",") {
		if id := strings.TrimSpace(part); id != "" {
			items = append(items, domain.ItemID(id))
		}
	}
	if len(items) == 0 {
		for id := range orderapi.DemoCatalog() {
			items = append(items, id)
		}
		slices.Sort(items)
	}
	return items
}

// linePrompter asks the conflict question on out and reads y/n from in.
func linePrompter(in io.Reader, out io.Writer) resolver.Prompter {
	r := bufio.NewReader(in)
	return resolver.PrompterFunc(func(ctx context.Context, message string) (domain.ConflictDecision, error) {
		fmt.Fprintf(out, "%s [y/N] ", message)

		type answer struct {
			line string
			err  error
		}
		ch := make(chan answer, 1)
		go func() {
			line, err := r.ReadString('\n')
			ch <- answer{line, err}
		}()

		select {
		case a := <-ch:
			if a.err != nil && !errors.Is(a.err, io.EOF) {
				return domain.DecisionAbort, a.err
			}
			switch strings.ToLower(strings.TrimSpace(a.line)) {
			case "y", "yes":
				return domain.DecisionProceed, nil
			}
			return domain.DecisionAbort, nil
		case <-ctx.Done():
			return domain.DecisionAbort, ctx.Err()
		}
	})
}
