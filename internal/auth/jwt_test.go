package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret")

	token, err := m.Generate("asha", time.Hour)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.User() != "asha" {
		t.Errorf("User() = %q, want asha", claims.User())
	}
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("test-secret")

	expired, err := m.Generate("asha", -time.Minute)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	otherKey, err := NewJWTManager("another-secret").Generate("asha", time.Hour)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{UserID: "asha"}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong key", otherKey},
		{"no subject", noSubject},
		{"wrong algorithm", wrongAlg},
		{"garbage", "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Validate(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestClaims_SubjectFallback(t *testing.T) {
	c := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "bilal"}}
	if c.User() != "bilal" {
		t.Errorf("User() = %q, want bilal", c.User())
	}
}
