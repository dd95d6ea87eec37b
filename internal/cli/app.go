// Package cli implements the autox command line client: it keeps the
// session in the configured storage backend and talks to the marketplace
// API through the gateway client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/autox/marketplace-client/internal/core/session"
	"github.com/autox/marketplace-client/internal/gateway"
	"github.com/autox/marketplace-client/internal/infrastructure/storage"
	"github.com/autox/marketplace-client/internal/metrics"
	"github.com/autox/marketplace-client/internal/pkg/config"
	"github.com/autox/marketplace-client/pkg/logger"
)

// App holds the per-invocation state shared by all commands.
type App struct {
	// Env replaces the process environment when non-nil.
	Env map[string]string
	Out io.Writer
	Err io.Writer

	verbose bool
	noColor bool
	apiURL  string
	stats   bool

	cfg      *config.Config
	log      zerolog.Logger
	printer  *Printer
	backend  *storage.Backend
	session  *session.Store
	client   *gateway.Client
	registry *prometheus.Registry
}

// setup loads configuration and opens the session. Called once before any
// command runs.
func (a *App) setup(ctx context.Context) error {
	a.printer = NewPrinter(a.Out, a.Err, a.noColor)

	var err error
	if a.Env != nil {
		a.cfg, err = config.LoadFrom(ctx, a.Env)
	} else {
		a.cfg, err = config.Load(ctx)
	}
	if err != nil {
		return err
	}

	level := a.cfg.LogLevel
	if a.verbose {
		level = "debug"
	}
	logger.Init(logger.Options{Level: level, Pretty: a.cfg.LogPretty, Output: a.Err, App: "autox"})
	a.log = logger.Component("cli")

	a.backend, err = storage.Open(ctx, a.cfg, a.log)
	if err != nil {
		return fmt.Errorf("open session storage: %w", err)
	}
	a.session = session.NewStore(a.backend.Store, logger.Component("session"))
	if err := a.session.Initialize(ctx); err != nil {
		// Initialize already fell back to a logged-out session.
		a.log.Warn().Err(err).Msg("session restore failed")
	}

	baseURL := a.cfg.APIURL
	if a.apiURL != "" {
		baseURL = a.apiURL
	}
	a.registry = prometheus.NewRegistry()
	a.client = gateway.New(baseURL,
		gateway.WithTokenSource(a.session),
		gateway.WithLogger(logger.Component("gateway")),
		gateway.WithMetrics(metrics.NewClient(a.registry)),
	)
	return nil
}

// close prints request statistics when asked and releases the storage.
func (a *App) close(ctx context.Context) error {
	if a.stats && a.registry != nil {
		a.printStats()
	}
	if a.backend == nil {
		return nil
	}
	return a.backend.Close(ctx)
}

func (a *App) printStats() {
	families, err := a.registry.Gather()
	if err != nil {
		a.log.Warn().Err(err).Msg("gather client metrics")
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			sort.Strings(labels)
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(a.Err, "%s{%s} %g\n", mf.GetName(), strings.Join(labels, ","), m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Fprintf(a.Err, "%s{%s} count=%d sum=%.3fs\n", mf.GetName(), strings.Join(labels, ","), h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
}

// requireLogin fails early when no session is stored.
func (a *App) requireLogin() error {
	if !a.session.IsAuthenticated() {
		return errNotLoggedIn
	}
	return nil
}

var errNotLoggedIn = errors.New("not logged in")

// describe turns an error into a status line plus an optional hint.
func describe(err error) (string, string) {
	if errors.Is(err, errNotLoggedIn) {
		return err.Error(), "Run 'autox login' first"
	}
	var re *gateway.RequestError
	if !errors.As(err, &re) {
		return err.Error(), ""
	}
	switch re.Kind {
	case gateway.KindTransport:
		return err.Error(), "Check AUTOX_API_URL and that the API is reachable"
	case gateway.KindDecode:
		return err.Error(), "The server did not answer with JSON"
	}
	msg := fmt.Sprintf("%s (HTTP %d)", re.Message, re.StatusCode)
	if re.StatusCode == 401 {
		return msg, "Your session may have expired; run 'autox login'"
	}
	return msg, ""
}

// parsePairs converts repeated key=value flags.
func parsePairs(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid key=value pair %q", p)
		}
		out[key] = value
	}
	return out, nil
}

func queryFrom(pairs map[string]string) url.Values {
	q := url.Values{}
	for k, v := range pairs {
		q.Set(k, v)
	}
	return q
}
