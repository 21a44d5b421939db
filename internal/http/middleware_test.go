package http

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestReadOnlyMiddlewareVerbs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(readOnlyMiddleware(true))
	r.Any("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := map[string]int{
		http.MethodGet:     http.StatusOK,
		http.MethodHead:    http.StatusOK,
		http.MethodPost:    http.StatusForbidden,
		http.MethodPut:     http.StatusForbidden,
		http.MethodPatch:   http.StatusForbidden,
		http.MethodDelete:  http.StatusForbidden,
		http.MethodConnect: http.StatusMethodNotAllowed,
		http.MethodTrace:   http.StatusMethodNotAllowed,
	}
	for method, want := range cases {
		t.Run(method, func(t *testing.T) {
			rec := performRequest(r, method, "/x", nil)
			if rec.Code != want {
				t.Fatalf("expected status %d, got %d", want, rec.Code)
			}
		})
	}
}

func TestReadOnlyMiddlewareDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(readOnlyMiddleware(false))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusCreated) })

	if rec := performRequest(r, http.MethodPost, "/x", nil); rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
}

func TestReadOnlyMiddlewareExemptPath(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(readOnlyMiddleware(true, "/auth/login"))
	r.POST("/auth/login", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.POST("/sessions", func(c *gin.Context) { c.Status(http.StatusCreated) })

	if rec := performRequest(r, http.MethodPost, "/auth/login", nil); rec.Code != http.StatusCreated {
		t.Fatalf("expected exempt path to pass, got %d", rec.Code)
	}
	if rec := performRequest(r, http.MethodPost, "/sessions", nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
}
