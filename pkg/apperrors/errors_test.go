package apperrors

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
)

func TestAppError_MarshalJSONHidesCause(t *testing.T) {
	err := Wrap(errors.New("secret db failure"), CodeInternalError, "system", "Internal server error", http.StatusInternalServerError)

	raw, mErr := json.Marshal(err)
	require.NoError(t, mErr)

	assert.JSONEq(t, `{"code":"INTERNAL_ERROR","domain":"system","message":"Internal server error"}`, string(raw))
	assert.NotContains(t, string(raw), "secret")
}

func TestAppError_WithDetailsDoesNotMutateOriginal(t *testing.T) {
	withDetails := ErrImageRequired.WithDetails("field image")

	assert.Nil(t, ErrImageRequired.Details)
	assert.Equal(t, "field image", withDetails.Details)
	assert.True(t, Is(withDetails, ErrImageRequired))
}

func TestAppError_IsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("reset: %w", ErrInvalidOrExpiredToken)

	assert.True(t, Is(wrapped, ErrInvalidOrExpiredToken))
	assert.False(t, Is(wrapped, ErrForbidden))

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)
}

func TestHandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		debug      bool
		wantStatus int
		wantCode   ErrorCode
		wantDetail bool
	}{
		{name: "unauthenticated", err: ErrUnauthenticated, wantStatus: http.StatusUnauthorized, wantCode: CodeUnauthenticated},
		{name: "forbidden", err: ErrOwnerOnly, wantStatus: http.StatusForbidden, wantCode: CodeForbidden},
		{name: "delivery failure", err: ErrDeliveryFailure, wantStatus: http.StatusBadGateway, wantCode: CodeDeliveryFailure},
		{name: "unknown error hidden", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: CodeInternalError},
		{name: "unknown error in debug", err: errors.New("boom"), debug: true, wantStatus: http.StatusInternalServerError, wantCode: CodeInternalError, wantDetail: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetDebug(tt.debug)
			defer SetDebug(false)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)

			var body struct {
				Error struct {
					Code    ErrorCode   `json:"code"`
					Details interface{} `json:"details"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Error.Code)
			if tt.wantDetail {
				assert.Equal(t, "boom", body.Error.Details)
			} else {
				assert.Nil(t, body.Error.Details)
			}
		})
	}
}

func TestNotFoundHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.NoRoute(NotFoundHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "GET /nope")
}
