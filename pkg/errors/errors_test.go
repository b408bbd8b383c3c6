package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeTokenMissing, http.StatusUnauthorized},
		{ErrCodeTokenInvalid, http.StatusUnauthorized},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{ErrCodeAccountNotFound, http.StatusUnauthorized},
		{ErrCodeMissingDeviceID, http.StatusBadRequest},
		{ErrCodeDeviceConflict, http.StatusForbidden},
		{ErrCodeStoreUnavailable, http.StatusInternalServerError},
		{ErrorCode("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorCodeToHTTPStatus(tt.code))
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	err := StoreUnavailable(context.DeadlineExceeded, "claim device binding")

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.True(t, IsCode(err, ErrCodeStoreUnavailable))
	assert.Contains(t, err.Error(), "STORE_UNAVAILABLE")

	wrapped := fmt.Errorf("outer: %w", err)
	assert.Equal(t, ErrCodeStoreUnavailable, GetCode(wrapped))
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatusCode())

	assert.Nil(t, Wrap(nil, ErrCodeInternal, "nothing"))
}

func TestGetCode_Unstructured(t *testing.T) {
	assert.Equal(t, ErrCodeInternal, GetCode(errors.New("plain")))
	assert.False(t, IsCode(errors.New("plain"), ErrCodeTokenInvalid))
}

func TestIsCredentialError(t *testing.T) {
	assert.True(t, IsCredentialError(TokenMissing()))
	assert.True(t, IsCredentialError(AccountNotFound("u1")))
	assert.False(t, IsCredentialError(StoreUnavailable(errors.New("io"), "read")))
	assert.False(t, IsCredentialError(New(ErrCodeDeviceConflict, "conflict")))
}
