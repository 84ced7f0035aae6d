package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "segredo-de-teste"

func init() { gin.SetMode(gin.TestMode) }

func signToken(t *testing.T, secret string, claims jwt.Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func validClaims(role string) jwt.MapClaims {
	return jwt.MapClaims{
		"user_id":  uuid.NewString(),
		"username": "joao",
		"role":     role,
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
}

func protectedRouter(roles ...string) *gin.Engine {
	r := gin.New()
	r.GET("/x", JWTAuth(testSecret), RequireRole(roles...), func(c *gin.Context) {
		ator := GetAtor(c)
		c.JSON(http.StatusOK, gin.H{"username": ator.Username, "role": ator.Role})
	})
	return r
}

func get(r http.Handler, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := protectedRouter("VENDEDOR", "ADMIN")

	w := get(r, "/x", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Autenticação necessária")

	w = get(r, "/x", map[string]string{"Authorization": "Bearer " + signToken(t, "outro", validClaims("ADMIN"))})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token inválido ou expirado")

	expirado := validClaims("ADMIN")
	expirado["exp"] = time.Now().Add(-time.Minute).Unix()
	w = get(r, "/x", map[string]string{"Authorization": "Bearer " + signToken(t, testSecret, expirado)})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	semID := validClaims("ADMIN")
	semID["user_id"] = "nao-e-uuid"
	w = get(r, "/x", map[string]string{"Authorization": "Bearer " + signToken(t, testSecret, semID)})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "/x", map[string]string{"Authorization": "Bearer " + signToken(t, testSecret, validClaims("VENDEDOR"))})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"username":"joao","role":"VENDEDOR"}`, w.Body.String())
}

func TestRequireRole(t *testing.T) {
	r := protectedRouter("ADMIN")

	w := get(r, "/x", map[string]string{"Authorization": "Bearer " + signToken(t, testSecret, validClaims("CAIXA"))})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Permissão insuficiente")

	w = get(r, "/x", map[string]string{"Authorization": "Bearer " + signToken(t, testSecret, validClaims("ADMIN"))})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetAtorSemClaims(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetClaims(c))
	assert.Equal(t, uuid.Nil, GetAtor(c).ID)
}

func TestWindowLimiter(t *testing.T) {
	now := time.Date(2026, 10, 16, 20, 0, 0, 0, time.UTC)
	l := newWindowLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	ok, _ := l.hit("1.1.1.1")
	assert.True(t, ok)
	ok, _ = l.hit("1.1.1.1")
	assert.True(t, ok)
	ok, wait := l.hit("1.1.1.1")
	assert.False(t, ok)
	assert.Equal(t, time.Minute, wait)

	ok, _ = l.hit("2.2.2.2")
	assert.True(t, ok, "keys are independent")

	now = now.Add(61 * time.Second)
	assert.Equal(t, 2, l.purge())
	ok, _ = l.hit("1.1.1.1")
	assert.True(t, ok)
}

func TestRateLimiterResponde429(t *testing.T) {
	r := gin.New()
	r.GET("/x", limitBy(newWindowLimiter(1, time.Minute), "devagar"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, get(r, "/x", nil).Code)
	w := get(r, "/x", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"detail":"devagar"}`, w.Body.String())
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://bar.local/"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := get(r, "/x", map[string]string{"Origin": "http://bar.local"})
	assert.Equal(t, "http://bar.local", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))

	w = get(r, "/x", map[string]string{"Origin": "http://evil.local"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := get(r, "/x", map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = get(r, "/x", map[string]string{RequestIDHeader: strings.Repeat("x", 65)})
	_, err := uuid.Parse(w.Body.String())
	assert.NoError(t, err)
}

func TestRecoveryEErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Logger(), Recovery(), ErrorHandler())
	r.GET("/panic", func(*gin.Context) { panic("boom") })
	r.GET("/erro", func(c *gin.Context) { _ = c.Error(assert.AnError) })

	w := get(r, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"Erro interno do servidor"}`, w.Body.String())

	w = get(r, "/erro", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"Erro interno do servidor"}`, w.Body.String())
}
