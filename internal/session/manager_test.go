package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-0123456789"

func newTestManager(t *testing.T, now time.Time) *manager {
	t.Helper()
	m, err := NewManager(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	mm := m.(*manager)
	mm.now = func() time.Time { return now }
	return mm
}

func TestNewManager_EmptySecret(t *testing.T) {
	if _, err := NewManager("", time.Hour); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("Expected ErrMissingSecret, got %v", err)
	}
}

func TestIssueAndVerify(t *testing.T) {
	now := time.Now()
	m := newTestManager(t, now)

	token, expiresAt, err := m.Issue(Identity{ID: "user-1", Email: "fan@example.com", Name: "Fan"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if !expiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("Expected expiry one hour out, got %v", expiresAt)
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.UserID != "user-1" || claims.Subject != "user-1" {
		t.Errorf("Unexpected subject claims: id=%q sub=%q", claims.UserID, claims.Subject)
	}
	if claims.Email != "fan@example.com" || claims.Name != "Fan" {
		t.Errorf("Unexpected profile claims: %+v", claims)
	}
	if claims.Issuer != DefaultIssuer {
		t.Errorf("Expected issuer %q, got %q", DefaultIssuer, claims.Issuer)
	}
}

func TestVerify_SameTokenIsStable(t *testing.T) {
	m := newTestManager(t, time.Now())
	token, _, _ := m.Issue(Identity{ID: "user-1", Email: "fan@example.com"})

	first, err1 := m.Verify(token)
	second, err2 := m.Verify(token)
	if err1 != nil || err2 != nil {
		t.Fatalf("Verify() errors = %v, %v", err1, err2)
	}
	if first.UserID != second.UserID || first.Email != second.Email {
		t.Error("Expected repeated verification to yield the same claims")
	}
}

func TestVerify_Rejections(t *testing.T) {
	now := time.Now()
	m := newTestManager(t, now)

	other, _ := NewManager("another-secret-0123456789", time.Hour)
	wrongKey, _, _ := other.Issue(Identity{ID: "user-1", Email: "fan@example.com"})

	expired := newTestManager(t, now.Add(-2*time.Hour))
	expiredToken, _, _ := expired.Issue(Identity{ID: "user-1", Email: "fan@example.com"})

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    DefaultIssuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:           "user-1",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: DefaultIssuer},
	}).SignedString([]byte(testSecret))

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-jwt"},
		{"wrong signing key", wrongKey},
		{"expired", expiredToken},
		{"alg none", unsigned},
		{"missing exp", noExpiry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Verify(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
