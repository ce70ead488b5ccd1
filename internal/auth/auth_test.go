package auth

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCheckPasswordHash(t *testing.T) {
	hash, err := HashPassword("correctPassword123!")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"correct password", "correctPassword123!", false},
		{"incorrect password", "wrongPassword", true},
		{"empty password", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPasswordHash(tt.password, hash)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckPasswordHash() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateJWT(t *testing.T) {
	userID := uuid.New()
	validToken, _ := MakeJWT(userID, "secret", time.Hour)
	expiredToken, _ := MakeJWT(userID, "secret", -time.Hour)

	tests := []struct {
		name        string
		tokenString string
		tokenSecret string
		wantUserID  uuid.UUID
		wantErr     bool
	}{
		{"valid token", validToken, "secret", userID, false},
		{"invalid token", "invalid.token.string", "secret", uuid.Nil, true},
		{"wrong secret", validToken, "wrong_secret", uuid.Nil, true},
		{"expired token", expiredToken, "secret", uuid.Nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUserID, err := ValidateJWT(tt.tokenString, tt.tokenSecret)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateJWT() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if gotUserID != tt.wantUserID {
				t.Errorf("ValidateJWT() gotUserID = %v, want %v", gotUserID, tt.wantUserID)
			}
		})
	}
}

func TestGetBearerToken(t *testing.T) {
	tests := []struct {
		name      string
		headers   http.Header
		wantToken string
		wantErr   error
	}{
		{"valid", http.Header{"Authorization": []string{"Bearer abc.def"}}, "abc.def", nil},
		{"missing", http.Header{}, "", ErrNoAuthHeaderIncluded},
		{"malformed", http.Header{"Authorization": []string{"Token abc"}}, "", errors.New("malformed")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetBearerToken(tt.headers)
			if got != tt.wantToken {
				t.Errorf("GetBearerToken() = %q, want %q", got, tt.wantToken)
			}
			if (err != nil) != (tt.wantErr != nil) {
				t.Errorf("GetBearerToken() error = %v, wantErr %v", err, tt.wantErr)
			}
			if errors.Is(tt.wantErr, ErrNoAuthHeaderIncluded) && !errors.Is(err, ErrNoAuthHeaderIncluded) {
				t.Errorf("GetBearerToken() error = %v, want ErrNoAuthHeaderIncluded", err)
			}
		})
	}
}
