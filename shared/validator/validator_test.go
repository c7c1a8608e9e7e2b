package validator_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"innkeeper/shared/validator"
)

type samplePayload struct {
	Name      string `json:"name" validate:"required"`
	SandboxID string `json:"sandboxId" validate:"omitempty,sandboxid"`
	Date      string `json:"date" validate:"omitempty,bookingdate"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{
			name:    "valid payload",
			body:    `{"name":"ok","sandboxId":"sb-1","date":"2025-06-01"}`,
			wantErr: false,
		},
		{
			name:    "invalid JSON body",
			body:    `{"name":`,
			wantErr: true,
		},
		{
			name:    "missing required field",
			body:    `{"sandboxId":"sb-1"}`,
			wantErr: true,
		},
		{
			name:    "uppercase sandbox id rejected",
			body:    `{"name":"ok","sandboxId":"SB-1"}`,
			wantErr: true,
		},
		{
			name:    "sandbox id with slash rejected",
			body:    `{"name":"ok","sandboxId":"a/b"}`,
			wantErr: true,
		},
		{
			name:    "malformed date rejected",
			body:    `{"name":"ok","date":"June 1st"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload samplePayload
			err := validator.Validate(strings.NewReader(tt.body), &payload)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, validator.ValidateVar("sb-1", "sandboxid"))
	assert.Error(t, validator.ValidateVar("Not A Slug", "sandboxid"))
	assert.NoError(t, validator.ValidateVar("2025-06-01", "bookingdate"))
	assert.Error(t, validator.ValidateVar("01-06-2025", "bookingdate"))
}
