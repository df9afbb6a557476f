package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"superstore/internal/engine"
)

// RequestValidator plugs go-playground/validator into echo's c.Validate.
type RequestValidator struct {
	v *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	if err := rv.v.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// filterParams are the query parameters shared by every summary route.
// category, region and segment may repeat.
type filterParams struct {
	Categories []string `query:"category"`
	Regions    []string `query:"region"`
	Segments   []string `query:"segment"`
	Year       int      `query:"year" validate:"omitempty,min=1900,max=2100"`
	From       string   `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To         string   `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

func bindFilter(c echo.Context) (engine.Filter, error) {
	var p filterParams
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &p); err != nil {
		return engine.Filter{}, echo.NewHTTPError(http.StatusBadRequest, "invalid filter parameters")
	}
	if err := c.Validate(&p); err != nil {
		return engine.Filter{}, err
	}

	f := engine.Filter{
		Categories: p.Categories,
		Regions:    p.Regions,
		Segments:   p.Segments,
		Year:       p.Year,
	}
	// Layout already checked by the validator.
	if p.From != "" {
		f.From, _ = time.Parse(time.DateOnly, p.From)
	}
	if p.To != "" {
		f.To, _ = time.Parse(time.DateOnly, p.To)
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return engine.Filter{}, echo.NewHTTPError(http.StatusBadRequest, "from must not be after to")
	}
	return f, nil
}

func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
