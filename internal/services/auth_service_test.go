package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/miffy/internal/models"
	"gorm.io/gorm"
)

type stubAuthUserRepo struct {
	users map[uint]models.User
}

func newStubAuthUserRepo() *stubAuthUserRepo {
	return &stubAuthUserRepo{users: make(map[uint]models.User)}
}

func (stub *stubAuthUserRepo) FindByID(userID uint) (models.User, error) {
	user, ok := stub.users[userID]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (stub *stubAuthUserRepo) FindByNormalizedEmail(email string) (models.User, error) {
	for _, user := range stub.users {
		if strings.EqualFold(strings.TrimSpace(user.Email), email) {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (stub *stubAuthUserRepo) Create(user *models.User) error {
	user.ID = uint(len(stub.users) + 1)
	stub.users[user.ID] = *user
	return nil
}

func (stub *stubAuthUserRepo) UpdateLoginNonceHash(userID uint, nonceHash string) error {
	user := stub.users[userID]
	user.LoginNonceHash = nonceHash
	stub.users[userID] = user
	return nil
}

func (stub *stubAuthUserRepo) ConsumeLoginNonce(userID uint, nonceHash string, signedInAt time.Time) (bool, error) {
	user, ok := stub.users[userID]
	if !ok || nonceHash == "" || user.LoginNonceHash != nonceHash {
		return false, nil
	}
	user.LoginNonceHash = ""
	user.LastSignInAt = &signedInAt
	stub.users[userID] = user
	return true, nil
}

type stubLinkSender struct {
	email string
	link  string
	err   error
}

func (stub *stubLinkSender) SendSignInLink(ctx context.Context, email string, link string) error {
	stub.email = email
	stub.link = link
	return stub.err
}

var testAuthSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestAuthService(repo *stubAuthUserRepo, sender LinkSender) *AuthService {
	return NewAuthService(repo, AuthOptions{
		SecretKey: testAuthSecret,
		SiteURL:   "https://miffy.example/",
		LinkTTL:   15 * time.Minute,
		Sender:    sender,
	})
}

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	parsed, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse link: %v", err)
	}
	if parsed.Path != "/auth/callback" {
		t.Fatalf("unexpected link path %q", parsed.Path)
	}
	return parsed.Query().Get("token")
}

func TestAuthServiceSignInLinkWorksOnce(t *testing.T) {
	repo := newStubAuthUserRepo()
	sender := &stubLinkSender{}
	service := newTestAuthService(repo, sender)

	if err := service.RequestSignInLink(context.Background(), "  Ada@Example.com "); err != nil {
		t.Fatalf("request link: %v", err)
	}
	if sender.email != "ada@example.com" || !strings.HasPrefix(sender.link, "https://miffy.example/auth/callback?token=") {
		t.Fatalf("unexpected delivery %q -> %q", sender.email, sender.link)
	}
	created := repo.users[1]
	if created.DisplayName != "ada" || created.LoginNonceHash == "" {
		t.Fatalf("expected account created with nonce hash, got %+v", created)
	}

	token := tokenFromLink(t, sender.link)
	user, err := service.ConsumeSignInLink(token)
	if err != nil {
		t.Fatalf("consume link: %v", err)
	}
	if user.ID != 1 || user.LastSignInAt == nil || user.LoginNonceHash != "" {
		t.Fatalf("unexpected signed-in user: %+v", user)
	}

	if _, err := service.ConsumeSignInLink(token); !errors.Is(err, ErrSignInLinkInvalid) {
		t.Fatalf("expected second use to fail, got %v", err)
	}
}

func TestAuthServiceNewLinkReplacesOlderOne(t *testing.T) {
	repo := newStubAuthUserRepo()
	service := newTestAuthService(repo, &stubLinkSender{})

	first, _, err := service.IssueSignInLink("ada@example.com")
	if err != nil {
		t.Fatalf("first link: %v", err)
	}
	second, _, err := service.IssueSignInLink("ada@example.com")
	if err != nil {
		t.Fatalf("second link: %v", err)
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected one account for repeated requests, got %d", len(repo.users))
	}

	if _, err := service.ConsumeSignInLink(tokenFromLink(t, first)); !errors.Is(err, ErrSignInLinkInvalid) {
		t.Fatalf("expected older link to be rejected, got %v", err)
	}
	if _, err := service.ConsumeSignInLink(tokenFromLink(t, second)); err != nil {
		t.Fatalf("expected newest link to work, got %v", err)
	}
}

func TestAuthServiceRejectsExpiredAndForeignTokens(t *testing.T) {
	repo := newStubAuthUserRepo()
	service := newTestAuthService(repo, &stubLinkSender{})

	link, _, err := service.IssueSignInLink("ada@example.com")
	if err != nil {
		t.Fatalf("issue link: %v", err)
	}
	token := tokenFromLink(t, link)

	service.now = func() time.Time { return time.Now().Add(time.Hour) }
	if _, err := service.ConsumeSignInLink(token); !errors.Is(err, ErrSignInLinkInvalid) {
		t.Fatalf("expected expired link to fail, got %v", err)
	}
	service.now = time.Now

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, signInLinkClaims{
		UserID:  1,
		Nonce:   "guess",
		Purpose: signInLinkPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	signed, _ := forged.SignedString([]byte("another-secret-another-secret-00"))
	if _, err := service.ConsumeSignInLink(signed); !errors.Is(err, ErrSignInLinkInvalid) {
		t.Fatalf("expected foreign signature to fail, got %v", err)
	}

	wrongNonce := jwt.NewWithClaims(jwt.SigningMethodHS256, signInLinkClaims{
		UserID:  1,
		Nonce:   "guess",
		Purpose: signInLinkPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	signed, _ = wrongNonce.SignedString(testAuthSecret)
	if _, err := service.ConsumeSignInLink(signed); !errors.Is(err, ErrSignInLinkInvalid) {
		t.Fatalf("expected wrong nonce to fail, got %v", err)
	}

	if _, err := service.ConsumeSignInLink(" "); !errors.Is(err, ErrSignInLinkInvalid) {
		t.Fatalf("expected empty token to fail, got %v", err)
	}
}

func TestAuthServiceRequestErrors(t *testing.T) {
	sender := &stubLinkSender{err: errors.New("relay down")}
	service := newTestAuthService(newStubAuthUserRepo(), sender)

	if err := service.RequestSignInLink(context.Background(), "not-an-email"); !errors.Is(err, ErrAuthEmailInvalid) {
		t.Fatalf("expected ErrAuthEmailInvalid, got %v", err)
	}
	if err := service.RequestSignInLink(context.Background(), "ada@example.com"); !errors.Is(err, ErrSignInLinkSendFailed) {
		t.Fatalf("expected ErrSignInLinkSendFailed, got %v", err)
	}
}
