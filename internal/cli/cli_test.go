package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fjod/go_cart/cart-sync/internal/config"
	"github.com/fjod/go_cart/cart-sync/internal/domain"
	"github.com/fjod/go_cart/cart-sync/internal/gateway"
	"github.com/fjod/go_cart/cart-sync/internal/logger"
	"github.com/fjod/go_cart/cart-sync/internal/orderapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := orderapi.NewService(orderapi.NewMemoryStore(), orderapi.DemoCatalog(), logger.Discard())
	srv := httptest.NewServer(orderapi.NewHandler(svc, logger.Discard()).Routes("csrftoken", "X-CSRFToken"))
	t.Cleanup(srv.Close)
	return srv
}

func testRootOptions(baseURL string) *RootOptions {
	return &RootOptions{
		cfg: &config.Config{
			BaseURL:        baseURL,
			SessionID:      "u1",
			CSRFCookieName: "csrftoken",
			CSRFHeaderName: "X-CSRFToken",
			CSRFToken:      "tok",
			PollInterval:   20 * time.Millisecond,
			FetchTimeout:   time.Second,
			CurrencySymbol: "S$",
		},
		log: logger.Discard(),
	}
}

func TestParseItems(t *testing.T) {
	assert.Equal(t, []domain.ItemID{"7", "9"}, parseItems(" 7, ,9"))
	assert.Equal(t, []domain.ItemID{"1", "2", "3", "4"}, parseItems(""))
}

func TestLinePrompter(t *testing.T) {
	tests := []struct {
		input string
		want  domain.ConflictDecision
	}{
		{"y\n", domain.DecisionProceed},
		{"YES\n", domain.DecisionProceed},
		{"n\n", domain.DecisionAbort},
		{"\n", domain.DecisionAbort},
		{"", domain.DecisionAbort},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		p := linePrompter(strings.NewReader(tt.input), &out)
		got, err := p.Confirm(context.Background(), "switch?")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Equal(t, "switch? [y/N] ", out.String())
	}
}

func TestRunMutate_AddPrintsPage(t *testing.T) {
	srv := newTestServer(t)
	opts := &MutateOptions{RootOptions: testRootOptions(srv.URL), Items: "1,3"}

	var out bytes.Buffer
	require.NoError(t, runMutate(context.Background(), opts, "add", "1", strings.NewReader(""), &out))

	assert.Contains(t, out.String(), "badge: 1")
	assert.Contains(t, out.String(), "  1: x 1 $5.44")
	assert.Contains(t, out.String(), "total: S$ 5.44")
}

func TestRunMutate_DeclinedSwitchKeepsCart(t *testing.T) {
	srv := newTestServer(t)
	opts := &MutateOptions{RootOptions: testRootOptions(srv.URL), Items: "1,3"}
	ctx := context.Background()

	require.NoError(t, runMutate(ctx, opts, "add", "1", strings.NewReader(""), &bytes.Buffer{}))

	var out bytes.Buffer
	require.NoError(t, runMutate(ctx, opts, "add", "3", strings.NewReader("n\n"), &out))
	assert.Contains(t, out.String(), "Would you like to continue? [y/N] ")
	assert.Contains(t, out.String(), "  1: x 1 $5.44")
	assert.Contains(t, out.String(), "  3: hidden")
}

func TestRunMutate_RemoveUnknownReportsNotice(t *testing.T) {
	srv := newTestServer(t)
	opts := &MutateOptions{RootOptions: testRootOptions(srv.URL)}

	var out bytes.Buffer
	err := runMutate(context.Background(), opts, "remove", "2", strings.NewReader(""), &out)
	require.Error(t, err)
	assert.Contains(t, out.String(), "! Item not found in order")
}

func TestRunMutate_StalledServerTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	opts := &MutateOptions{RootOptions: testRootOptions(srv.URL)}
	opts.cfg.FetchTimeout = 50 * time.Millisecond

	done := make(chan error, 1)
	var out bytes.Buffer
	go func() {
		done <- runMutate(context.Background(), opts, "add", "1", strings.NewReader(""), &out)
	}()

	select {
	case err := <-done:
		assert.True(t, gateway.IsKind(err, gateway.KindTimeout))
		assert.Contains(t, out.String(), "! An error occurred. Please try again.")
	case <-time.After(3 * time.Second):
		t.Fatal("add did not time out")
	}
}

func TestRunWatch_PrintsUntilCanceled(t *testing.T) {
	srv := newTestServer(t)
	opts := &WatchOptions{RootOptions: testRootOptions(srv.URL), Items: "1"}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	require.NoError(t, runWatch(ctx, opts, &out))
	assert.Contains(t, out.String(), "--- seq ")
	assert.Contains(t, out.String(), "items: hidden")
}
