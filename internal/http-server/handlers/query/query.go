// Package query reads the filter parameters shared by the list endpoints.
package query

import (
	"net/http"
	"strconv"
	"strings"

	"selectclass/internal/analytics"
	"selectclass/internal/reconcile"
	"selectclass/pkg/response"
)

// Int reads an integer parameter. A missing parameter is 0.
func Int(r *http.Request, name string) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, response.Invalid(name, "must be a number")
	}

	return n, nil
}

// Period reads year, month and day.
func Period(r *http.Request) (analytics.Period, error) {
	var (
		p   analytics.Period
		err error
	)

	if p.Year, err = Int(r, "year"); err != nil {
		return p, err
	}
	if p.Month, err = Int(r, "month"); err != nil {
		return p, err
	}
	if p.Day, err = Int(r, "day"); err != nil {
		return p, err
	}

	return p, p.Validate()
}

// Category reads the booking kind. A missing parameter is "", which each
// view resolves to its own default.
func Category(r *http.Request) (reconcile.Kind, error) {
	v := strings.TrimSpace(r.URL.Query().Get("category"))
	if v == "" {
		return "", nil
	}

	kind, ok := reconcile.ParseKind(v)
	if !ok {
		return "", response.Invalid("category", "must be cursos or palestras")
	}

	return kind, nil
}
