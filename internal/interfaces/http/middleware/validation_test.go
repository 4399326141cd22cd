package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tafa/dashboard/internal/interfaces/http/dto"
)

type rangeQuery struct {
	StartDate string `form:"start_date" binding:"omitempty,yyyymmdd"`
	Format    string `form:"format" binding:"omitempty,oneof=json csv xlsx"`
}

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	tests := []struct {
		value string
		valid bool
	}{
		{"2025-01-31", true},
		{"2024-02-29", true},
		{"2025-02-30", false},
		{"31-01-2025", false},
		{"2025/01/31", false},
		{"yesterday", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := v.Var(tt.value, DateTag)
			assert.Equal(t, tt.valid, err == nil)
		})
	}
}

func TestHandleValidationError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	SetupValidator()

	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		var q rangeQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	t.Run("rejects malformed parameters", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test?start_date=01/02/2025&format=pdf", nil)
		req.Header.Set(RequestIDHeader, "req-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "req-1", resp.Error.RequestID)
		require.Len(t, resp.Error.Details, 2)
		assert.Equal(t, "start_date", resp.Error.Details[0].Field)
		assert.Equal(t, "Must be a date in yyyy-mm-dd format", resp.Error.Details[0].Message)
		assert.Equal(t, "format", resp.Error.Details[1].Field)
		assert.Equal(t, "Must be one of: json csv xlsx", resp.Error.Details[1].Message)
	})

	t.Run("accepts valid parameters", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test?start_date=2025-01-01&format=csv", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestFormatValidationErrors_PlainError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "req-2")

	require.NotNil(t, resp.Error)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, assert.AnError.Error(), resp.Error.Details[0].Message)
}
