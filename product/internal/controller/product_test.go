package controller

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/ornamently/jewelify/internal/middleware"
	"github.com/ornamently/jewelify/product/internal/service"
)

func newTestRouter() *mux.Router {
	svc := service.ProductService{}
	router := mux.NewRouter()
	authed := router.NewRoute().Subrouter()
	authed.Use(middleware.Auth("test-secret"))
	AttachProductAdminController(authed, &svc)
	AttachProductController(router, &svc)
	return router
}

func TestProductMutationsRequireAuth(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name   string
		method string
		target string
	}{
		{name: "insert", method: http.MethodPost, target: "/products"},
		{name: "update", method: http.MethodPut, target: "/products/7b8a4ad1-1f5e-4a0d-9d2a-0a4c8a2c9f11"},
		{name: "delete", method: http.MethodDelete, target: "/products/7b8a4ad1-1f5e-4a0d-9d2a-0a4c8a2c9f11"},
	}
	for _, test := range tests {
		t.Run(test.name+" without token is rejected", func(t *testing.T) {
			req := httptest.NewRequest(test.method, test.target, strings.NewReader("{}"))
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestProductReadsStayOpen(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name   string
		method string
		target string
	}{
		{name: "list", method: http.MethodGet, target: "/products"},
		{name: "by id", method: http.MethodGet, target: "/products/7b8a4ad1-1f5e-4a0d-9d2a-0a4c8a2c9f11"},
	}
	for _, test := range tests {
		t.Run(test.name+" routes without auth", func(t *testing.T) {
			req := httptest.NewRequest(test.method, test.target, nil)

			match := mux.RouteMatch{}
			assert.True(t, router.Match(req, &match))
			assert.NoError(t, match.MatchErr)
		})
	}
}
