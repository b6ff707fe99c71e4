package response

import (
	"encoding/json/v2"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/litewiki/litewiki-server/internal/errors"
	"github.com/litewiki/litewiki-server/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var result Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	return result
}

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusOK, map[string]string{"title": "Home"}, testLogger())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	result := decode(t, w)
	assert.True(t, result.Success)
	assert.NotNil(t, result.Data)
	assert.Empty(t, result.Error)
}

func TestCreated(t *testing.T) {
	w := httptest.NewRecorder()
	Created(w, map[string]string{"id": "page-1"}, testLogger())
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decode(t, w).Success)
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	NoContent(w)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, http.StatusNotFound, "NOT_FOUND", "page not found", testLogger())

	assert.Equal(t, http.StatusNotFound, w.Code)
	result := decode(t, w)
	assert.False(t, result.Success)
	assert.Equal(t, "page not found", result.Error)
	assert.Equal(t, "NOT_FOUND", result.Code)
}

func TestHandleError_DomainError(t *testing.T) {
	w := httptest.NewRecorder()
	HandleError(w, apperrors.DuplicateTitle("title taken"), testLogger())

	assert.Equal(t, http.StatusConflict, w.Code)
	result := decode(t, w)
	assert.Equal(t, "title taken", result.Error)
	assert.Equal(t, "DUPLICATE_TITLE", result.Code)
}

func TestHandleError_InternalHidesCause(t *testing.T) {
	w := httptest.NewRecorder()
	HandleError(w, apperrors.Internal("query failed", errors.New("disk io details")), testLogger())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	result := decode(t, w)
	assert.Equal(t, "internal server error", result.Error)
	assert.NotContains(t, w.Body.String(), "disk io")
}

func TestHandleError_StoreError(t *testing.T) {
	w := httptest.NewRecorder()
	HandleError(w, store.ErrNotFound.WithMessage("page not found"), testLogger())

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "page not found", decode(t, w).Error)
}

func TestHandleError_Unknown(t *testing.T) {
	w := httptest.NewRecorder()
	HandleError(w, errors.New("boom"), testLogger())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decode(t, w).Error)
}
