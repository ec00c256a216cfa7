package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/campushub/school-portal-api/internal/models"
	"github.com/campushub/school-portal-api/internal/service"
)

type noopUserRepo struct{}

func (noopUserRepo) FindByEmail(context.Context, string) (*models.User, error) { return nil, nil }
func (noopUserRepo) FindByID(context.Context, string) (*models.User, error)    { return nil, nil }
func (noopUserRepo) UpdatePassword(context.Context, string, string) error      { return nil }

func testRouter(secret string, roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	authSvc := service.NewAuthService(noopUserRepo{}, nil, nil, service.AuthConfig{
		TokenSecret: secret,
		TokenExpiry: time.Hour,
		Issuer:      "test",
	})

	router := gin.New()
	group := router.Group("/", JWT(authSvc))
	if len(roles) > 0 {
		group.Use(RequireRoles(roles...))
	}
	group.GET("/protected", func(c *gin.Context) {
		claims, _ := c.Get(ContextUserKey)
		c.JSON(http.StatusOK, gin.H{"userId": claims.(*models.JWTClaims).UserID})
	})
	return router
}

func signToken(t *testing.T, secret, userID string, role models.UserRole) string {
	t.Helper()
	claims := &models.JWTClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestJWTMiddlewareAcceptsValidToken(t *testing.T) {
	router := testRouter("secret")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "secret", "user-1", models.RoleAdmin))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestJWTMiddlewareRejectsMissingHeader(t *testing.T) {
	router := testRouter("secret")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestJWTMiddlewareRejectsMalformedHeader(t *testing.T) {
	router := testRouter("secret")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestJWTMiddlewareRejectsForgedToken(t *testing.T) {
	router := testRouter("secret")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", "user-1", models.RoleAdmin))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestRequireRolesAllowsMatchingRole(t *testing.T) {
	router := testRouter("secret", models.RoleTeacher)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "secret", "teacher-1", models.RoleTeacher))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestRequireRolesForbidsOtherRole(t *testing.T) {
	router := testRouter("secret", models.RoleAdmin)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "secret", "student-1", models.RoleStudent))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}
