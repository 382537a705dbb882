package respond

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	svcErr "github.com/oggyb/devmatch/internal/errors"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]int{"total": 3})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"total":3}`, rec.Body.String())
}

func TestError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/conversations/c1", nil)

	rec := httptest.NewRecorder()
	Error(rec, req, svcErr.Forbidden("You are not a participant in this conversation"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"You are not a participant in this conversation"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	Error(rec, req, svcErr.Internal("load conversation", fmt.Errorf("secret dsn")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestDecode(t *testing.T) {
	var dst struct {
		Content string `json:"content"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":"hi"}`))
	require.NoError(t, Decode(req, &dst))
	assert.Equal(t, "hi", dst.Content)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":`))
	err := Decode(req, &dst)
	assert.True(t, svcErr.Is(err, svcErr.KindValidation))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	assert.EqualError(t, Decode(req, &dst), "VALIDATION: request body is required")
}
