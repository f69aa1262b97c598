package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/arklim/software-access-portal/internal/core/domain"
	"github.com/arklim/software-access-portal/internal/infra/security"
)

type stubTokenParser struct {
	claims *security.IdentityClaims
	err    error
}

func (s *stubTokenParser) ParseAccessToken(tokenString string) (*security.IdentityClaims, error) {
	return s.claims, s.err
}

func newAuthTestRouter(parser TokenParser, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequireAuth(parser))
	for _, mw := range extra {
		router.Use(mw)
	}
	router.GET("/", func(c *gin.Context) {
		identity, _ := GetIdentity(c)
		c.JSON(http.StatusOK, gin.H{"user_id": identity.UserID, "role": string(identity.Role)})
	})
	return router
}

func TestRequireAuthMissingHeader(t *testing.T) {
	router := newAuthTestRouter(&stubTokenParser{})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestRequireAuthMalformedHeader(t *testing.T) {
	router := newAuthTestRouter(&stubTokenParser{})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestRequireAuthExpiredToken(t *testing.T) {
	router := newAuthTestRouter(&stubTokenParser{err: security.ErrExpiredToken})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer expired")

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}

	var body ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error != "access token expired" {
		t.Fatalf("unexpected error message %q", body.Error)
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	router := newAuthTestRouter(&stubTokenParser{err: security.ErrInvalidToken})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestRequireAuthStoresIdentity(t *testing.T) {
	parser := &stubTokenParser{claims: &security.IdentityClaims{
		UserID:   "user-1",
		Username: "alice",
		Role:     domain.RoleManager,
	}}
	router := newAuthTestRouter(parser)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer valid")

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["user_id"] != "user-1" || body["role"] != "Manager" {
		t.Fatalf("unexpected identity payload: %v", body)
	}
}

func TestRequireOperationDeniesEmployeeWrites(t *testing.T) {
	parser := &stubTokenParser{claims: &security.IdentityClaims{
		UserID:   "user-1",
		Username: "alice",
		Role:     domain.RoleEmployee,
	}}
	router := newAuthTestRouter(parser, RequireOperation(domain.OpCatalogWrite))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer valid")

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestRequireOperationAllowsAdminWrites(t *testing.T) {
	parser := &stubTokenParser{claims: &security.IdentityClaims{
		UserID:   "admin-1",
		Username: "root",
		Role:     domain.RoleAdmin,
	}}
	router := newAuthTestRouter(parser, RequireOperation(domain.OpCatalogWrite))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer valid")

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
