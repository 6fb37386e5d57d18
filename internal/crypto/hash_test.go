package crypto

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordPolicy(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"typical", "correct-horse-battery-staple", nil},
		{"single byte", "x", nil},
		{"at limit", strings.Repeat("a", MaxPasswordBytes), nil},
		{"multibyte at limit", strings.Repeat("é", MaxPasswordBytes/2), nil},
		{"over limit", strings.Repeat("a", MaxPasswordBytes+1), bcrypt.ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("HashPassword() error = %v, want %v", err, tt.wantErr)
				}
				if hash != "" {
					t.Errorf("HashPassword() = %q on error, want empty", hash)
				}
				return
			}
			if err != nil {
				t.Fatalf("HashPassword() unexpected error: %v", err)
			}

			cost, err := bcrypt.Cost([]byte(hash))
			if err != nil {
				t.Fatalf("bcrypt.Cost() unexpected error: %v", err)
			}
			if cost != HashCost {
				t.Errorf("cost = %d, want %d", cost, HashCost)
			}

			ok, err := VerifyPassword(tt.password, hash)
			if err != nil || !ok {
				t.Errorf("VerifyPassword() = %v, %v; want true, nil", ok, err)
			}
		})
	}
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword() unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
		wantErr  bool
	}{
		{"match", "s3cret-pass", hash, true, false},
		{"mismatch", "s3cret-pasS", hash, false, false},
		{"empty password", "", hash, false, false},
		{"malformed hash", "s3cret-pass", "not-a-bcrypt-hash", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VerifyPassword(tt.password, tt.hash)
			if (err != nil) != tt.wantErr {
				t.Fatalf("VerifyPassword() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("VerifyPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHashPasswordSalts(t *testing.T) {
	a, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword() unexpected error: %v", err)
	}
	b, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword() unexpected error: %v", err)
	}
	if a == b {
		t.Error("two hashes of the same password are identical")
	}
}
