package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"

	"superstore/internal/engine"
	"superstore/internal/models"
	"superstore/internal/telemetry"
)

// Handler serves summary tables over the loaded dataset. Until SetData is called
// every data route answers 503.
type Handler struct {
	table   atomic.Pointer[engine.OrderTable]
	topN    int
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

func NewHandler(table *engine.OrderTable, topN int, metrics *telemetry.Metrics, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = telemetry.New()
	}
	h := &Handler{topN: topN, metrics: metrics, logger: logger.With(slog.String("component", "api"))}
	if table != nil {
		h.table.Store(table)
	}
	return h
}

// SetData publishes the loaded table to all subsequent requests.
func (h *Handler) SetData(table *engine.OrderTable) {
	h.table.Store(table)
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	api := e.Group("/api")
	api.GET("/dashboard", h.GetDashboard)
	api.GET("/metrics", h.GetMetrics)
	api.GET("/sales/monthly", h.GetMonthlySales)
	api.GET("/sales/categories", h.GetCategoryBreakdown)
	api.GET("/sales/regions", h.GetRegionalSales)
	api.GET("/sales/segments", h.GetSegmentPerformance)
	api.GET("/products/top", h.GetTopProducts)
	api.GET("/customers", h.GetCustomers)
	api.GET("/customers/regions", h.GetCustomersByRegion)
	api.GET("/patterns", h.GetOrderPatterns)
	api.GET("/trends/categories", h.GetCategoryTrends)
	api.GET("/filters", h.GetFilterOptions)
	api.GET("/orders/export", h.ExportOrders)
}

var errLoading = echo.NewHTTPError(http.StatusServiceUnavailable, "data loading")

// view resolves the loaded table and applies the request's filter.
func (h *Handler) view(c echo.Context) (*engine.OrderTable, error) {
	table := h.table.Load()
	if table == nil {
		return nil, errLoading
	}
	f, err := bindFilter(c)
	if err != nil {
		return nil, err
	}
	return table.Filter(f), nil
}

// serve runs one summary query with timing and outcome metrics.
func (h *Handler) serve(c echo.Context, query string, fn func(view *engine.OrderTable) (any, error)) error {
	start := time.Now()
	view, err := h.view(c)
	if err != nil {
		h.metrics.ObserveQuery(query, "error", time.Since(start))
		return err
	}
	out, err := fn(view)
	if err != nil {
		h.metrics.ObserveQuery(query, "error", time.Since(start))
		h.logger.Error("query failed", slog.String("query", query), slog.String("error", err.Error()))
		return err
	}
	outcome := "ok"
	if view.Len() == 0 {
		outcome = "empty"
	}
	h.metrics.ObserveQuery(query, outcome, time.Since(start))
	return c.JSON(http.StatusOK, out)
}

// --- HANDLERS ---

func (h *Handler) Health(c echo.Context) error {
	table := h.table.Load()
	if table == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{"status": "loading"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"status": "ready", "records": table.Len()})
}

func (h *Handler) GetDashboard(c echo.Context) error {
	start := time.Now()
	table := h.table.Load()
	if table == nil {
		h.metrics.ObserveQuery("dashboard", "error", time.Since(start))
		return errLoading
	}
	f, err := bindFilter(c)
	if err != nil {
		h.metrics.ObserveQuery("dashboard", "error", time.Since(start))
		return err
	}
	data, err := engine.BuildDashboard(c.Request().Context(), table, f, h.topN)
	if err != nil {
		h.metrics.ObserveQuery("dashboard", "error", time.Since(start))
		return err
	}
	outcome := "ok"
	if data.Empty {
		outcome = "empty"
	}
	h.metrics.ObserveQuery("dashboard", outcome, time.Since(start))
	return c.JSON(http.StatusOK, data)
}

func (h *Handler) GetMetrics(c echo.Context) error {
	return h.serve(c, "metrics", func(v *engine.OrderTable) (any, error) {
		return engine.KPIsFor(v)
	})
}

func (h *Handler) GetMonthlySales(c echo.Context) error {
	return h.serve(c, "monthly_sales", func(v *engine.OrderTable) (any, error) {
		return engine.MonthlyItems(engine.MonthlySales(v)), nil
	})
}

func (h *Handler) GetCategoryBreakdown(c echo.Context) error {
	return h.serve(c, "category_breakdown", func(v *engine.OrderTable) (any, error) {
		return engine.CategoryItems(engine.CategoryBreakdown(v)), nil
	})
}

func (h *Handler) GetRegionalSales(c echo.Context) error {
	return h.serve(c, "regional_sales", func(v *engine.OrderTable) (any, error) {
		return engine.TotalItems(engine.RegionalSales(v)), nil
	})
}

func (h *Handler) GetSegmentPerformance(c echo.Context) error {
	return h.serve(c, "segment_performance", func(v *engine.OrderTable) (any, error) {
		return engine.TotalItems(engine.SegmentPerformance(v)), nil
	})
}

// GetTopProducts returns the top products, h.topN unless ?limit= overrides it.
func (h *Handler) GetTopProducts(c echo.Context) error {
	limit, _ := getPaginationParams(c, h.topN)
	return h.serve(c, "top_products", func(v *engine.OrderTable) (any, error) {
		return engine.TopItems(engine.TopProducts(v, limit)), nil
	})
}

func (h *Handler) GetCustomers(c echo.Context) error {
	return h.serve(c, "customers", func(v *engine.OrderTable) (any, error) {
		all := engine.CustomerItems(engine.CustomerSummary(v))
		total := len(all)
		limit, offset := getPaginationParams(c, total)

		page := models.Page[models.CustomerItem]{Data: []models.CustomerItem{}, Total: total, Limit: limit, Offset: offset}
		if offset >= total {
			return page, nil
		}
		end := offset + limit
		if end > total {
			end = total
		}
		page.Data = all[offset:end]
		return page, nil
	})
}

func (h *Handler) GetCustomersByRegion(c echo.Context) error {
	return h.serve(c, "customers_by_region", func(v *engine.OrderTable) (any, error) {
		return engine.CountItems(engine.CustomersByRegion(v)), nil
	})
}

func (h *Handler) GetOrderPatterns(c echo.Context) error {
	return h.serve(c, "order_patterns", func(v *engine.OrderTable) (any, error) {
		return engine.PatternItems(engine.OrderPatterns(v)), nil
	})
}

func (h *Handler) GetCategoryTrends(c echo.Context) error {
	return h.serve(c, "category_trends", func(v *engine.OrderTable) (any, error) {
		return engine.CategoryTrendRows(engine.CategoryTrends(v)), nil
	})
}

// GetFilterOptions lists every selectable value of the whole dataset; the
// request's own filter does not narrow it.
func (h *Handler) GetFilterOptions(c echo.Context) error {
	start := time.Now()
	table := h.table.Load()
	if table == nil {
		h.metrics.ObserveQuery("filter_options", "error", time.Since(start))
		return errLoading
	}
	outcome := "ok"
	if table.Len() == 0 {
		outcome = "empty"
	}
	opts := engine.FilterOptionsModel(engine.Options(table))
	h.metrics.ObserveQuery("filter_options", outcome, time.Since(start))
	return c.JSON(http.StatusOK, opts)
}

// ExportOrders streams the filtered rows as newline-delimited JSON.
func (h *Handler) ExportOrders(c echo.Context) error {
	start := time.Now()
	view, err := h.view(c)
	if err != nil {
		h.metrics.ObserveQuery("export", "error", time.Since(start))
		return err
	}
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "application/x-ndjson")
	res.Header().Set("X-Record-Count", strconv.Itoa(view.Len()))
	res.WriteHeader(http.StatusOK)
	if err := engine.WriteJSONRows(view, res); err != nil {
		h.metrics.ObserveQuery("export", "error", time.Since(start))
		h.logger.Error("export failed", slog.String("error", err.Error()))
		// Headers are already sent; nothing useful can reach the client.
		return nil
	}
	h.metrics.ObserveQuery("export", "ok", time.Since(start))
	return nil
}

