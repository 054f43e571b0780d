package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chasmapasal/chasmapasal-api/internal/auth"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

func router(tokens *auth.TokenIssuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"user": Identity(c).UserID}) }

	priv := r.Group("/", AuthMiddleware(tokens))
	priv.GET("/me", ok)
	priv.GET("/admin", RequireRole(models.RoleAdmin), ok)
	priv.GET("/users/:userId", RequireSelfOrAdmin("userId"), ok)
	return r
}

func call(r http.Handler, path, token string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenIssuer("secret", time.Hour)
	r := router(tokens)

	user, _ := tokens.Issue(&models.User{ID: 7, Role: models.RoleUser})
	admin, _ := tokens.Issue(&models.User{ID: 1, Role: models.RoleAdmin})
	forged, _ := auth.NewTokenIssuer("other", time.Hour).Issue(&models.User{ID: 1, Role: models.RoleAdmin})

	cases := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"no token", "/me", "", http.StatusUnauthorized},
		{"forged", "/me", forged, http.StatusUnauthorized},
		{"valid", "/me", user, http.StatusOK},
		{"user on admin route", "/admin", user, http.StatusForbidden},
		{"admin route", "/admin", admin, http.StatusOK},
		{"self", "/users/7", user, http.StatusOK},
		{"someone else", "/users/8", user, http.StatusForbidden},
		{"admin on someone else", "/users/8", admin, http.StatusOK},
		{"bad id", "/users/abc", user, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := call(r, tc.path, tc.token); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware("http://shop.local"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://shop.local")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "http://shop.local" {
		t.Fatalf("unexpected preflight %d %v", w.Code, w.Header())
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.local")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("unknown origins must not be echoed")
	}
}
