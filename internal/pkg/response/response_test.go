package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() { gin.SetMode(gin.TestMode) }

func run(h gin.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	h(c)
	return w
}

func TestOKWrapsSlices(t *testing.T) {
	w := run(func(c *gin.Context) { OK(c, []string{"a", "b"}) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":["a","b"]}`, w.Body.String())

	w = run(func(c *gin.Context) { OK(c, gin.H{"a": 1}) })
	assert.JSONEq(t, `{"a":1}`, w.Body.String())
}

func TestErrorBodies(t *testing.T) {
	cases := []struct {
		name   string
		h      gin.HandlerFunc
		status int
		msg    string
	}{
		{"bad request", func(c *gin.Context) { BadRequest(c, "bad id") }, 400, "bad id"},
		{"not found", func(c *gin.Context) { NotFound(c) }, 404, "not found"},
		{"conflict", func(c *gin.Context) { Conflict(c, "taken") }, 409, "taken"},
		{"internal", func(c *gin.Context) { InternalError(c, errors.New("dial tcp: refused")) }, 500, "internal server error"},
		{"unauthorized", func(c *gin.Context) { Unauthorized(c) }, 401, "authentication required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := run(tc.h)
			assert.Equal(t, tc.status, w.Code)
			var body ErrorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.msg, body.Error)
			assert.Empty(t, body.Fields)
		})
	}
}

func TestValidationFailed(t *testing.T) {
	w := run(func(c *gin.Context) {
		ValidationFailed(c, []FieldError{{Field: "title", Rule: "required", Message: "title is required"}})
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t,
		`{"error":"validation failed","fields":[{"field":"title","rule":"required","message":"title is required"}]}`,
		w.Body.String())
}

func TestFail(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, run(func(c *gin.Context) { Fail(c, fmt.Errorf("delete: %w", gorm.ErrRecordNotFound)) }).Code)
	assert.Equal(t, http.StatusConflict, run(func(c *gin.Context) { Fail(c, gorm.ErrDuplicatedKey) }).Code)
	assert.Equal(t, http.StatusInternalServerError, run(func(c *gin.Context) { Fail(c, errors.New("x")) }).Code)
}
