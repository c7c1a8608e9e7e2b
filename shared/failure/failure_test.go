package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"innkeeper/shared/failure"
)

func TestFailureCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "bad request",
			err:  failure.BadRequest(errors.New("bad input")),
			want: http.StatusBadRequest,
		},
		{
			name: "unauthorized",
			err:  failure.Unauthorized("no token"),
			want: http.StatusUnauthorized,
		},
		{
			name: "not found",
			err:  failure.NotFound("reservation"),
			want: http.StatusNotFound,
		},
		{
			name: "conflict",
			err:  failure.Conflict("already exists"),
			want: http.StatusConflict,
		},
		{
			name: "malformed record",
			err:  failure.MalformedRecord("not an object"),
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "storage auth",
			err:  failure.StorageAuth(errors.New("access denied")),
			want: http.StatusBadGateway,
		},
		{
			name: "internal error",
			err:  failure.InternalError(errors.New("boom")),
			want: http.StatusInternalServerError,
		},
		{
			name: "plain error defaults to internal",
			err:  errors.New("unclassified"),
			want: http.StatusInternalServerError,
		},
		{
			name: "overwrite gate",
			err:  failure.OverwriteNotConfirmed,
			want: http.StatusBadRequest,
		},
		{
			name: "raw write outside sandbox",
			err:  failure.RawWriteOutsideSandbox,
			want: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, failure.GetCode(tt.err))
		})
	}
}

func TestGetCode_Wrapped(t *testing.T) {
	err := fmt.Errorf("outer context: %w", failure.NotFound("reservation"))

	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
}

func TestIsStorageAuth(t *testing.T) {
	assert.True(t, failure.IsStorageAuth(failure.StorageAuth(errors.New("denied"))))
	assert.True(t, failure.IsStorageAuth(fmt.Errorf("wrapped: %w", failure.StorageAuth(errors.New("denied")))))
	assert.False(t, failure.IsStorageAuth(failure.NotFound("reservation")))
	assert.False(t, failure.IsStorageAuth(errors.New("plain")))
}

func TestNilErrorsStayNil(t *testing.T) {
	assert.NoError(t, failure.BadRequest(nil))
	assert.NoError(t, failure.InternalError(nil))
	assert.NoError(t, failure.StorageAuth(nil))
}
