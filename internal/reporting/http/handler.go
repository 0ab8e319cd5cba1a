package reportinghttp

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/odyssey-ledger/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-ledger/internal/reporting"
)

// DefaultWindow is the look-back used when from is omitted.
const DefaultWindow = 30 * 24 * time.Hour

// ReportBuilder returns a report rendered as JSON.
type ReportBuilder interface {
	Build(ctx context.Context, report reporting.Report, from, to time.Time) (json.RawMessage, error)
}

// Handler serves reports over HTTP.
type Handler struct {
	logger  *slog.Logger
	service ReportBuilder
	limit   int
	builds  singleflight.Group
	now     func() time.Time
}

// NewHandler constructs the reports handler. limitPerMinute caps report
// requests per client IP; zero disables the limiter.
func NewHandler(logger *slog.Logger, service ReportBuilder, limitPerMinute int) *Handler {
	return &Handler{logger: logger, service: service, limit: limitPerMinute, now: time.Now}
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

// MountRoutes registers one GET route per report.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Group(func(gr chi.Router) {
		if h.limit > 0 {
			gr.Use(httprate.Limit(h.limit, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests", "report rate limit reached")
				}),
			))
		}
		for _, report := range reporting.Reports {
			gr.Get("/"+string(report), h.serve(report))
		}
	})
}

func (h *Handler) serve(report reporting.Report) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, to, err := h.window(r)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		key := string(report) + "|" + from.Format(time.RFC3339) + "|" + to.Format(time.RFC3339)
		ctx := r.Context()
		// Identical concurrent requests share one build, so the build must
		// outlive whichever caller started it.
		shared := context.WithoutCancel(ctx)
		result := h.builds.DoChan(key, func() (interface{}, error) {
			return h.service.Build(shared, report, from, to)
		})
		var res singleflight.Result
		select {
		case <-ctx.Done():
			httpx.RespondError(w, ctx.Err())
			return
		case res = <-result:
		}
		if res.Err != nil {
			h.logger.Error("build report", slog.String("report", string(report)), slog.Any("error", res.Err))
			httpx.RespondError(w, res.Err)
			return
		}
		raw, _ := res.Val.(json.RawMessage)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(raw)
	}
}

// window reads from/to as inclusive calendar dates. to defaults to today,
// from to DefaultWindow before to.
func (h *Handler) window(r *http.Request) (time.Time, time.Time, error) {
	to, err := httpx.QueryDate(r, "to", httpx.EndOfDay(h.now()), true)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	fallback := to.Add(-DefaultWindow).Truncate(24 * time.Hour)
	from, err := httpx.QueryDate(r, "from", fallback, false)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}
