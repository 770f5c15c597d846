package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/miffy/internal/models"
	"github.com/terraincognita07/miffy/internal/security"
	"gorm.io/gorm"
)

const signInLinkPurpose = "sign_in"

var (
	ErrSignInLinkInvalid     = errors.New("sign-in link invalid or expired")
	ErrSignInLinkIssueFailed = errors.New("issue sign-in link failed")
	ErrSignInLinkSendFailed  = errors.New("send sign-in link failed")
)

type AuthUserRepository interface {
	FindByID(userID uint) (models.User, error)
	FindByNormalizedEmail(email string) (models.User, error)
	Create(user *models.User) error
	UpdateLoginNonceHash(userID uint, nonceHash string) error
	ConsumeLoginNonce(userID uint, nonceHash string, signedInAt time.Time) (bool, error)
}

type AuthOptions struct {
	SecretKey []byte
	SiteURL   string
	LinkTTL   time.Duration
	Sender    LinkSender
}

type signInLinkClaims struct {
	UserID  uint   `json:"uid"`
	Nonce   string `json:"nonce"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// AuthService signs users in with one-time links. Each link carries a nonce
// whose hash is stored on the user; issuing a new link replaces the hash and
// redeeming a link clears it.
type AuthService struct {
	users     AuthUserRepository
	secretKey []byte
	siteURL   string
	linkTTL   time.Duration
	sender    LinkSender
	now       func() time.Time
}

func NewAuthService(users AuthUserRepository, options AuthOptions) *AuthService {
	linkTTL := options.LinkTTL
	if linkTTL <= 0 {
		linkTTL = 15 * time.Minute
	}
	return &AuthService{
		users:     users,
		secretKey: options.SecretKey,
		siteURL:   strings.TrimRight(options.SiteURL, "/"),
		linkTTL:   linkTTL,
		sender:    options.Sender,
		now:       time.Now,
	}
}

func (service *AuthService) FindByID(userID uint) (models.User, error) {
	return service.users.FindByID(userID)
}

// RequestSignInLink issues a link for the email and hands it to the sender.
func (service *AuthService) RequestSignInLink(ctx context.Context, rawEmail string) error {
	link, user, err := service.IssueSignInLink(rawEmail)
	if err != nil {
		return err
	}
	if service.sender == nil {
		return fmt.Errorf("%w: no link sender configured", ErrSignInLinkSendFailed)
	}
	if err := service.sender.SendSignInLink(ctx, user.Email, link); err != nil {
		return fmt.Errorf("%w: %v", ErrSignInLinkSendFailed, err)
	}
	return nil
}

// IssueSignInLink creates the account on first use and returns a fresh link.
func (service *AuthService) IssueSignInLink(rawEmail string) (string, models.User, error) {
	email, err := NormalizeSignInEmail(rawEmail)
	if err != nil {
		return "", models.User{}, err
	}
	user, err := service.findOrCreateUser(email)
	if err != nil {
		return "", models.User{}, fmt.Errorf("%w: %v", ErrSignInLinkIssueFailed, err)
	}

	nonce, nonceHash, err := security.NewNonce()
	if err != nil {
		return "", models.User{}, fmt.Errorf("%w: %v", ErrSignInLinkIssueFailed, err)
	}
	if err := service.users.UpdateLoginNonceHash(user.ID, nonceHash); err != nil {
		return "", models.User{}, fmt.Errorf("%w: %v", ErrSignInLinkIssueFailed, err)
	}
	user.LoginNonceHash = nonceHash

	token, err := service.buildLinkToken(user.ID, nonce)
	if err != nil {
		return "", models.User{}, fmt.Errorf("%w: %v", ErrSignInLinkIssueFailed, err)
	}
	return service.siteURL + "/auth/callback?token=" + url.QueryEscape(token), user, nil
}

func (service *AuthService) findOrCreateUser(email string) (models.User, error) {
	user, err := service.users.FindByNormalizedEmail(email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, err
	}

	user = models.User{Email: email, DisplayName: DisplayNameFromEmail(email), CreatedAt: service.now()}
	if err := service.users.Create(&user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return service.users.FindByNormalizedEmail(email)
		}
		return models.User{}, err
	}
	return user, nil
}

func (service *AuthService) buildLinkToken(userID uint, nonce string) (string, error) {
	now := service.now()
	claims := signInLinkClaims{
		UserID:  userID,
		Nonce:   nonce,
		Purpose: signInLinkPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(service.linkTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(service.secretKey)
}

// ConsumeSignInLink verifies the link token and redeems its nonce. A link
// works once and only while it is the most recently issued one.
func (service *AuthService) ConsumeSignInLink(rawToken string) (models.User, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return models.User{}, ErrSignInLinkInvalid
	}

	claims := &signInLinkClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return service.secretKey, nil
	}, jwt.WithTimeFunc(service.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid || claims.Purpose != signInLinkPurpose || claims.UserID == 0 {
		return models.User{}, ErrSignInLinkInvalid
	}

	user, err := service.users.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrSignInLinkInvalid
		}
		return models.User{}, err
	}
	if !security.NonceMatches(user.LoginNonceHash, claims.Nonce) {
		return models.User{}, ErrSignInLinkInvalid
	}

	signedInAt := service.now()
	consumed, err := service.users.ConsumeLoginNonce(user.ID, user.LoginNonceHash, signedInAt)
	if err != nil {
		return models.User{}, err
	}
	if !consumed {
		return models.User{}, ErrSignInLinkInvalid
	}
	user.LoginNonceHash = ""
	user.LastSignInAt = &signedInAt
	return user, nil
}
