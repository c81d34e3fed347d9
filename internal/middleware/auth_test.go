package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jobboard/cms/internal/database/dbtest"
	jwtpkg "github.com/jobboard/cms/internal/pkg/jwt"
	sessionpkg "github.com/jobboard/cms/internal/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type authFixture struct {
	db     *gorm.DB
	engine *gin.Engine
	token  string
	sid    string
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	jwtpkg.SetSecret("middleware-test")
	db := dbtest.Open(t)

	token, s, err := sessionpkg.Issue(db, "admin-1", "", "", time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.Use(OptionalAuth(db), RateLimit(nil, 50, zap.NewNop()))
	r.GET("/public", func(c *gin.Context) { c.String(http.StatusOK, CurrentUserID(c)) })
	r.GET("/admin", Auth(db), func(c *gin.Context) { c.String(http.StatusOK, CurrentSessionID(c)) })

	return &authFixture{db: db, engine: r, token: token, sid: s.ID}
}

func (f *authFixture) get(path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	f := newAuthFixture(t)

	t.Run("missing token", func(t *testing.T) {
		w := f.get("/admin", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"authentication required"}`, w.Body.String())
	})

	t.Run("garbage token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, f.get("/admin", "abc").Code)
	})

	t.Run("valid token", func(t *testing.T) {
		w := f.get("/admin", f.token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, f.sid, w.Body.String())
	})

	t.Run("query token", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, f.get("/admin?token="+f.token, "").Code)
	})

	t.Run("optional auth on public route", func(t *testing.T) {
		assert.Equal(t, "admin-1", f.get("/public", f.token).Body.String())

		w := f.get("/public", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("revoked session", func(t *testing.T) {
		require.NoError(t, sessionpkg.Revoke(f.db, "admin-1", f.sid))
		assert.Equal(t, http.StatusUnauthorized, f.get("/admin", f.token).Code)
	})
}

func TestNormalizeToken(t *testing.T) {
	assert.Equal(t, "abc", NormalizeToken("  Bearer abc "))
	assert.Equal(t, "abc", NormalizeToken("bearer abc"))
	assert.Equal(t, "abc", NormalizeToken("abc"))
	assert.Equal(t, "", NormalizeToken("   "))
}
