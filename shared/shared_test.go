package shared_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"innkeeper/shared"
	"innkeeper/shared/constant"
)

func TestConvertStringToBool(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *bool
	}{
		{name: "true", input: "true", want: boolPtr(true)},
		{name: "false", input: "false", want: boolPtr(false)},
		{name: "numeric true", input: "1", want: boolPtr(true)},
		{name: "empty means absent", input: "", want: nil},
		{name: "garbage means absent", input: "yep", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shared.ConvertStringToBool(tt.input)

			if tt.want == nil {
				assert.Nil(t, got)
			} else {
				assert.NotNil(t, got)
				assert.Equal(t, *tt.want, *got)
			}
		})
	}
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "reservation:acme:get:r1", shared.BuildCacheKey("reservation", "acme", "get", "r1"))
	assert.Equal(t, "single", shared.BuildCacheKey("single"))
}

func TestTenantFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), constant.ContextKeyTenantID, "acme")
	assert.Equal(t, "acme", shared.TenantFromContext(ctx))

	assert.Empty(t, shared.TenantFromContext(context.Background()))
}

func boolPtr(v bool) *bool {
	return &v
}
