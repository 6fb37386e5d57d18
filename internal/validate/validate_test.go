package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=4,max=8"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name    string
		in      signup
		wantErr string
	}{
		{name: "valid", in: signup{Email: "a@example.com", Password: "secret"}},
		{name: "missing email", in: signup{Password: "secret"}, wantErr: "email is required"},
		{name: "bad email", in: signup{Email: "nope", Password: "secret"}, wantErr: "email must be a valid email address"},
		{name: "short password", in: signup{Email: "a@example.com", Password: "abc"}, wantErr: "password must be at least 4 characters"},
		{name: "long password", in: signup{Email: "a@example.com", Password: "abcdefghi"}, wantErr: "password must be at most 8 characters"},
		{
			name:    "multiple",
			in:      signup{},
			wantErr: "email is required; password is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}
