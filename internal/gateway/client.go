package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/fjod/go_cart/cart-sync/internal/domain"
	"github.com/fjod/go_cart/cart-sync/internal/token"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	opAddToOrder      = "add-to-order"
	opRemoveFromOrder = "remove-from-order"
	opItemQuantities  = "get-item-quantities"
	opCartQuantity    = "get-cart-quantity"

	errDifferentRestaurant = "different_restaurant"
	errAuthRequired        = "authentication_required"

	// DefaultRequestTimeout bounds a round trip when no other timeout is configured.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultTokenHeader is the header carrying the CSRF token on every request.
	DefaultTokenHeader = "X-CSRFToken"

	maxResponseBody = 1 << 20 // 1MB
)

var errServerStatus = errors.New("server error status")

type reply struct {
	status int
	body   []byte
}

// Client talks to the order server. It never touches a view.
type Client struct {
	baseURL     *url.URL
	httpClient  *http.Client
	accessor    token.Accessor
	tokenHeader string
	breaker     *gobreaker.CircuitBreaker[reply]
	log         *slog.Logger
}

type Option func(*Client)

// WithHTTPClient uses a copy of hc in place of the default client. Its transport
// is still wrapped for tracing, and a client without a timeout keeps the default one.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc == nil {
			return
		}
		cp := *hc
		if cp.Timeout == 0 {
			cp.Timeout = c.httpClient.Timeout
		}
		c.httpClient = &cp
	}
}

// WithTimeout bounds every request made by the client. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func WithTokenHeader(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.tokenHeader = name
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithBreakerSettings overrides the circuit breaker configuration.
func WithBreakerSettings(st gobreaker.Settings) Option {
	return func(c *Client) {
		c.breaker = newBreaker(st)
	}
}

func NewClient(baseURL string, accessor token.Accessor, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", baseURL)
	}
	if accessor == nil {
		accessor = token.AccessorFunc(nil)
	}

	c := &Client{
		baseURL:     u,
		httpClient:  &http.Client{Timeout: DefaultRequestTimeout},
		accessor:    accessor,
		tokenHeader: DefaultTokenHeader,
		breaker:     newBreaker(gobreaker.Settings{Name: "order-server"}),
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc := *c.httpClient
	hc.Transport = otelhttp.NewTransport(base)
	c.httpClient = &hc

	return c, nil
}

func newBreaker(st gobreaker.Settings) *gobreaker.CircuitBreaker[reply] {
	if st.Timeout == 0 {
		st.Timeout = 15 * time.Second
	}
	if st.ReadyToTrip == nil {
		st.ReadyToTrip = func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		}
	}
	if st.IsSuccessful == nil {
		st.IsSuccessful = func(err error) bool {
			return err == nil
		}
	}
	return gobreaker.NewCircuitBreaker[reply](st)
}

type addRequest struct {
	ItemID   domain.ItemID `json:"item_id"`
	ForceNew bool          `json:"force_new"`
}

type removeRequest struct {
	ItemID domain.ItemID `json:"item_id"`
}

type mutationResponse struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

type quantitiesResponse struct {
	Success     bool                              `json:"success"`
	Error       string                            `json:"error"`
	Quantities  map[domain.ItemID]int             `json:"quantities"`
	TotalPrices map[domain.ItemID]decimal.Decimal `json:"total_prices"`
}

type cartQuantityResponse struct {
	Quantity   int                 `json:"quantity"`
	TotalPrice decimal.NullDecimal `json:"total_price"`
}

// AddItem adds one unit of itemID to the cart. forceNew tells the server to drop
// a cart from another restaurant and must only be set after user confirmation.
func (c *Client) AddItem(ctx context.Context, itemID domain.ItemID, forceNew bool) (domain.Outcome, error) {
	return c.mutate(ctx, opAddToOrder, itemID, addRequest{ItemID: itemID, ForceNew: forceNew})
}

// RemoveItem removes one unit of itemID from the cart.
func (c *Client) RemoveItem(ctx context.Context, itemID domain.ItemID) (domain.Outcome, error) {
	return c.mutate(ctx, opRemoveFromOrder, itemID, removeRequest{ItemID: itemID})
}

func (c *Client) mutate(ctx context.Context, op string, itemID domain.ItemID, payload any) (domain.Outcome, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.Outcome{}, &Error{Kind: KindTransport, Op: op, Err: fmt.Errorf("marshal request: %w", err)}
	}

	rep, err := c.do(ctx, http.MethodPost, op, body)
	if err != nil {
		return domain.Outcome{}, err
	}

	var resp mutationResponse
	if errDecode := json.Unmarshal(rep.body, &resp); errDecode != nil || resp.Success == nil {
		if isUnauthorized(rep.status) {
			return domain.Outcome{}, &Error{Kind: KindUnauthorized, Op: op, Status: rep.status}
		}
		if errDecode == nil {
			errDecode = errors.New("response has no success field")
		}
		return domain.Outcome{}, &Error{Kind: KindTransport, Op: op, Status: rep.status, Err: fmt.Errorf("decode response: %w", errDecode)}
	}

	switch {
	case *resp.Success:
		return domain.Success(itemID), nil
	case resp.Error == errAuthRequired || isUnauthorized(rep.status):
		return domain.Outcome{}, &Error{Kind: KindUnauthorized, Op: op, Status: rep.status, Message: resp.Message}
	case resp.Error == errDifferentRestaurant:
		return domain.RestaurantConflict(itemID, resp.Message), nil
	default:
		reason := resp.Error
		if reason == "" {
			reason = resp.Message
		}
		return domain.Failure(itemID, reason), nil
	}
}

// FetchQuantities returns the authoritative per-item quantities and line totals.
func (c *Client) FetchQuantities(ctx context.Context) (domain.CartSnapshot, error) {
	rep, err := c.do(ctx, http.MethodGet, opItemQuantities, nil)
	if err != nil {
		return domain.CartSnapshot{}, err
	}
	if err := checkFetchStatus(opItemQuantities, rep.status); err != nil {
		return domain.CartSnapshot{}, err
	}

	var resp quantitiesResponse
	if err := json.Unmarshal(rep.body, &resp); err != nil {
		return domain.CartSnapshot{}, &Error{Kind: KindTransport, Op: opItemQuantities, Status: rep.status, Err: fmt.Errorf("decode response: %w", err)}
	}
	if !resp.Success {
		return domain.CartSnapshot{}, &Error{Kind: KindBusinessFailure, Op: opItemQuantities, Status: rep.status, Message: resp.Error}
	}

	return domain.NewCartSnapshot(resp.Quantities, resp.TotalPrices), nil
}

// FetchAggregate returns the navbar count and the cart total.
func (c *Client) FetchAggregate(ctx context.Context) (domain.Aggregate, error) {
	rep, err := c.do(ctx, http.MethodGet, opCartQuantity, nil)
	if err != nil {
		return domain.Aggregate{}, err
	}
	if err := checkFetchStatus(opCartQuantity, rep.status); err != nil {
		return domain.Aggregate{}, err
	}

	var resp cartQuantityResponse
	if err := json.Unmarshal(rep.body, &resp); err != nil {
		return domain.Aggregate{}, &Error{Kind: KindTransport, Op: opCartQuantity, Status: rep.status, Err: fmt.Errorf("decode response: %w", err)}
	}

	agg := domain.Aggregate{Quantity: resp.Quantity, TotalPrice: decimal.Zero}
	if resp.TotalPrice.Valid {
		agg.TotalPrice = resp.TotalPrice.Decimal
	}
	return agg, nil
}

func checkFetchStatus(op string, status int) error {
	if isUnauthorized(status) {
		return &Error{Kind: KindUnauthorized, Op: op, Status: status}
	}
	if status < 200 || status > 299 {
		return &Error{Kind: KindTransport, Op: op, Status: status}
	}
	return nil
}

func isUnauthorized(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

// do performs one round trip through the circuit breaker. Any HTTP status is
// returned as a reply; only failures to get a response are errors.
func (c *Client) do(ctx context.Context, method, op string, body []byte) (reply, error) {
	u := c.baseURL.JoinPath(op + "/")

	rep, err := c.breaker.Execute(func() (reply, error) {
		var rdr io.Reader
		if body != nil {
			rdr = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
		if err != nil {
			return reply{}, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", uuid.NewString())
		tok, _ := c.accessor.Token()
		req.Header.Set(c.tokenHeader, tok)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return reply{}, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
		if err != nil {
			return reply{}, fmt.Errorf("read body: %w", err)
		}
		rep := reply{status: resp.StatusCode, body: data}
		if resp.StatusCode >= 500 {
			return rep, errServerStatus
		}
		return rep, nil
	})

	if errors.Is(err, errServerStatus) {
		return rep, nil
	}
	if err != nil {
		kind := KindTransport
		if isTimeout(ctx, err) {
			kind = KindTimeout
		}
		c.log.WarnContext(ctx, "order server request failed", "op", op, "kind", kind, "error", err)
		return reply{}, &Error{Kind: kind, Op: op, Err: err}
	}
	return rep, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
