package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewMissingColumn("日期"),
			want: `[MISSING_COLUMN] missing required column "日期"`,
		},
		{
			name: "with cause",
			err:  NewFetchFailed("download failed", fmt.Errorf("connection refused")),
			want: "[FETCH_FAILED] download failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestIsType(t *testing.T) {
	base := NewInvalidLocator("not a url")
	wrapped := fmt.Errorf("resolving input: %w", base)

	assert.True(t, IsType(base, ErrTypeInvalidLocator))
	assert.True(t, IsType(wrapped, ErrTypeInvalidLocator), "wrapped AppError should keep its type")
	assert.False(t, IsType(wrapped, ErrTypeFetchFailed))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrTypeInvalidLocator))
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrTypePersistence, TypeOf(NewPersistenceError("write failed", nil)))
	assert.Equal(t, ErrorType(""), TypeOf(fmt.Errorf("plain")))
}

func TestToAPIError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid locator", NewInvalidLocator("x"), http.StatusBadRequest, "INVALID_LOCATOR"},
		{"fetch failed", NewFetchFailed("empty file", nil), http.StatusBadGateway, "FETCH_FAILED"},
		{"missing column", NewMissingColumn("代碼"), http.StatusUnprocessableEntity, "MISSING_COLUMN"},
		{"unreadable", NewUnreadableTable("no encoding matched", nil), http.StatusUnprocessableEntity, "UNREADABLE_TABLE"},
		{"persistence", NewPersistenceError("disk full", nil), http.StatusInternalServerError, "PERSISTENCE"},
		{"unknown error", fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := ToAPIError(tt.err)
			require.NotNil(t, api)
			assert.Equal(t, tt.wantStatus, api.StatusCode)
			assert.Equal(t, tt.wantCode, api.ErrorCode)
		})
	}
}

func TestToAPIError_IncludesCauseDetail(t *testing.T) {
	api := ToAPIError(NewFetchFailed("download failed", fmt.Errorf("404 not found")))
	assert.Equal(t, "404 not found", api.Detail)
}
