package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"Synergy_Link/internal/pkg"

	"github.com/gin-gonic/gin"
)

func newAuthEngine(signer *pkg.TokenSigner) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(signer), func(c *gin.Context) {
		uid, err := CurrentUserID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": uid, "email": CurrentEmail(c)})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	signer := pkg.NewTokenSigner("test-secret")
	good, err := signer.GenerateAccess("u1", "aki@example.com")
	if err != nil {
		t.Fatal(err)
	}
	forged, _ := pkg.NewTokenSigner("other-secret").GenerateAccess("u1", "")

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + good, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + good, http.StatusUnauthorized},
		{"bad signature", "Bearer " + forged, http.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized},
	}
	r := newAuthEngine(signer)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestCurrentUserIDWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, err := CurrentUserID(c); pkg.KindOf(err) != pkg.KindUnauthenticated {
		t.Fatalf("err = %v, want unauthenticated", err)
	}
}
