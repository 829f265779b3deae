package auth

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ribbitworks/slimepond/internal/persistence"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := persistence.Open(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewService(db, "test-secret", time.Hour)
}

func TestRegisterLoginVerify(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.Register("ribbit", "hunter22")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	userID, err := svc.Verify(token)
	if err != nil || userID == "" {
		t.Fatalf("verify registered token: id=%q err=%v", userID, err)
	}

	token2, err := svc.Login("ribbit", "hunter22")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	userID2, err := svc.Verify(token2)
	if err != nil || userID2 != userID {
		t.Errorf("login token subject = %q err=%v, want %q", userID2, err, userID)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Register("ribbit", "hunter22"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login("ribbit", "wrong"); err != ErrInvalidCredentials {
		t.Errorf("bad password err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login("nobody", "hunter22"); err != ErrInvalidCredentials {
		t.Errorf("unknown user err = %v, want ErrInvalidCredentials", err)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	svc := newTestService(t)
	token, err := svc.Register("ribbit", "hunter22")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Verify(token + "x"); err != ErrInvalidToken {
		t.Errorf("tampered token err = %v, want ErrInvalidToken", err)
	}

	other := NewService(nil, "different-secret", time.Hour)
	if _, err := other.Verify(token); err != ErrInvalidToken {
		t.Errorf("wrong secret err = %v, want ErrInvalidToken", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := newTestService(t)
	token, err := svc.Register("ribbit", "hunter22")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.Verify(token); err != ErrInvalidToken {
		t.Errorf("expired token err = %v, want ErrInvalidToken", err)
	}
}

func TestBearerToken(t *testing.T) {
	if got := BearerToken("Bearer abc.def.ghi"); got != "abc.def.ghi" {
		t.Errorf("got %q", got)
	}
	if got := BearerToken("bearer abc"); got != "abc" {
		t.Errorf("case-insensitive scheme: got %q", got)
	}
	if got := BearerToken(""); got != "" {
		t.Errorf("empty header: got %q", got)
	}
	if got := BearerToken("Basic abc"); got != "" {
		t.Errorf("wrong scheme: got %q", got)
	}
}
