package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nainya/simplesearch/internal/listing"
	"github.com/nainya/simplesearch/pkg/query"
	"github.com/nainya/simplesearch/pkg/search"
)

// Parameters consumed by the HTTP layer and never passed to translation
var reservedParams = []string{"limit", "offset", "explain", "dialect"}

type listResponse struct {
	View     string          `json:"view"`
	Count    int             `json:"count"`
	Limit    int             `json:"limit"`
	Offset   int             `json:"offset"`
	Applied  search.Applied  `json:"applied"`
	Warnings []string        `json:"warnings"`
	Items    []query.Record  `json:"items"`
	Query    json.RawMessage `json:"query,omitempty"`
}

type explainResponse struct {
	View      string          `json:"view"`
	Predicate string          `json:"predicate"`
	Query     json.RawMessage `json:"query"`
	Dialect   string          `json:"dialect"`
	Where     string          `json:"where"`
	Args      []any           `json:"args"`
	Terms     []string        `json:"terms"`
	Applied   search.Applied  `json:"applied"`
	Warnings  []string        `json:"warnings"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "simplesearch"})
}

func (s *Server) handleReady(c *gin.Context) {
	if !s.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "starting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "views": s.names})
}

func (s *Server) handleViews(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"views": s.names})
}

func (s *Server) handleList(c *gin.Context) {
	view, ok := s.view(c)
	if !ok {
		return
	}
	page, err := parsePage(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := view.List(c.Request.Context(), searchParams(c), page)
	if err != nil {
		respondError(c, statusFor(err), err)
		return
	}

	resp := listResponse{
		View:     result.View,
		Count:    len(result.Items),
		Limit:    result.Page.Limit,
		Offset:   result.Page.Offset,
		Applied:  result.Applied,
		Warnings: nonNil(result.Warnings),
		Items:    result.Items,
	}
	if c.Query("explain") == "1" {
		raw, err := query.MarshalJSON(result.Predicate)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err)
			return
		}
		resp.Query = raw
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleExplain(c *gin.Context) {
	view, ok := s.view(c)
	if !ok {
		return
	}

	dialect := query.SQLite
	switch c.DefaultQuery("dialect", query.SQLite.Name) {
	case query.SQLite.Name:
	case query.Postgres.Name:
		dialect = query.Postgres
	default:
		respondError(c, http.StatusBadRequest, fmt.Errorf("unknown dialect %q", c.Query("dialect")))
		return
	}

	res, err := view.Translate(searchParams(c))
	if err != nil {
		respondError(c, statusFor(err), err)
		return
	}
	raw, err := query.MarshalJSON(res.Predicate)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	where, args, err := query.ToSQL(res.Predicate, dialect)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	warnings := []string{}
	for _, issue := range res.Issues() {
		warnings = append(warnings, issue.Message())
	}
	c.JSON(http.StatusOK, explainResponse{
		View:      view.Name(),
		Predicate: res.Predicate.String(),
		Query:     raw,
		Dialect:   dialect.Name,
		Where:     where,
		Args:      nonNilArgs(args),
		Terms:     nonNil(res.Terms),
		Applied:   res.Applied,
		Warnings:  warnings,
	})
}

func (s *Server) view(c *gin.Context) (*listing.View, bool) {
	name := c.Param("name")
	v, ok := s.views[name]
	if !ok {
		respondError(c, http.StatusNotFound, fmt.Errorf("unknown view %q", name))
	}
	return v, ok
}

func searchParams(c *gin.Context) search.Params {
	values := c.Request.URL.Query()
	for _, k := range reservedParams {
		values.Del(k)
	}
	return search.Params(values)
}

func parsePage(c *gin.Context) (listing.Page, error) {
	var page listing.Page
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return page, fmt.Errorf("invalid limit %q", raw)
		}
		page.Limit = n
	}
	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return page, fmt.Errorf("invalid offset %q", raw)
		}
		page.Offset = n
	}
	return page, nil
}

// statusFor maps translation and store errors to HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, search.ErrInvalidBoolean),
		errors.Is(err, search.ErrDateFormat),
		errors.Is(err, search.ErrMissingDateBounds):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilArgs(a []any) []any {
	if a == nil {
		return []any{}
	}
	return a
}
