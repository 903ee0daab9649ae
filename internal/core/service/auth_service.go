package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/financevault/internal/core/domain"
	"github.com/99minutos/financevault/internal/core/ports"
	"github.com/99minutos/financevault/internal/pkg/sealing"
)

const (
	defaultKeyName  = "main"
	defaultTokenTTL = 24 * time.Hour
	saltBytes       = 16
)

// IdentityOptions configures the development identity backend.
type IdentityOptions struct {
	JWTSecret string
	TokenTTL  time.Duration
	KeyName   string
	KeyBits   int
}

// IdentityService implements registration, login and token handling for the
// development identity backend. Passwords arrive RSA-OAEP encrypted and are
// decrypted with the private half of the named key pair.
type IdentityService struct {
	accounts ports.AccountRepository
	keys     ports.KeyRepository
	revoked  ports.RevocationList
	opts     IdentityOptions
	log      zerolog.Logger
	now      func() time.Time

	mu     sync.Mutex
	priv   *rsa.PrivateKey
	pubPEM string
}

func NewIdentityService(accounts ports.AccountRepository, keys ports.KeyRepository, revoked ports.RevocationList, opts IdentityOptions, log zerolog.Logger) *IdentityService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = defaultTokenTTL
	}
	if opts.KeyName == "" {
		opts.KeyName = defaultKeyName
	}
	if opts.KeyBits <= 0 {
		opts.KeyBits = sealing.DefaultKeyBits
	}
	return &IdentityService{
		accounts: accounts,
		keys:     keys,
		revoked:  revoked,
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
}

var _ ports.IdentityService = (*IdentityService)(nil)

// PublicKey returns the PKCS#1 PEM of the active key, creating the pair on
// first use.
func (s *IdentityService) PublicKey(ctx context.Context) (string, error) {
	if _, err := s.privateKey(ctx); err != nil {
		return "", err
	}
	return s.pubPEM, nil
}

func (s *IdentityService) Register(ctx context.Context, creds domain.EncryptedCredentials) (*domain.AuthResponse, error) {
	username := strings.TrimSpace(creds.Username)
	if username == "" || creds.EncryptedPassword == "" {
		return nil, domain.ErrInvalidCredentials
	}

	password, err := s.decrypt(ctx, creds.EncryptedPassword)
	if err != nil {
		return nil, err
	}

	if _, err := s.accounts.FindByUsername(ctx, username); err == nil {
		return nil, domain.ErrUserAlreadyExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	salt, err := newSalt()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword(saltedDigest(password, salt), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account, err := s.accounts.Create(ctx, &domain.Account{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Salt:         salt,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("username", account.Username).Str("user_id", account.ID).Msg("account created")
	return s.issue(account)
}

func (s *IdentityService) Login(ctx context.Context, creds domain.EncryptedCredentials) (*domain.AuthResponse, error) {
	if creds.Username == "" || creds.EncryptedPassword == "" {
		return nil, domain.ErrInvalidCredentials
	}

	password, err := s.decrypt(ctx, creds.EncryptedPassword)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.FindByUsername(ctx, strings.TrimSpace(creds.Username))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), saltedDigest(password, account.Salt)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issue(account)
}

// Logout revokes token until it would have expired.
func (s *IdentityService) Logout(ctx context.Context, token string) error {
	claims, err := s.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	if err := s.revoked.Revoke(ctx, token, time.Unix(claims.ExpiresAt, 0)); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.log.Info().Str("username", claims.Username).Str("token", domain.TokenFingerprint(token)).Msg("token revoked")
	return nil
}

// Authenticate validates a bearer token and rejects revoked ones.
func (s *IdentityService) Authenticate(ctx context.Context, token string) (*ports.TokenClaims, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.opts.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}

	revoked, err := s.revoked.IsRevoked(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, domain.ErrTokenRevoked
	}

	out := &ports.TokenClaims{UserID: claims.UserID, Username: claims.Username}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return out, nil
}

func (s *IdentityService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	account, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.User{ID: account.ID, Username: account.Username}, nil
}

type tokenClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func (s *IdentityService) issue(account *domain.Account) (*domain.AuthResponse, error) {
	now := s.now()
	claims := tokenClaims{
		UserID:   account.ID,
		Username: account.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.opts.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &domain.AuthResponse{Token: signed, UserID: account.ID, Username: account.Username}, nil
}

func (s *IdentityService) decrypt(ctx context.Context, ciphertext string) (string, error) {
	priv, err := s.privateKey(ctx)
	if err != nil {
		return "", err
	}
	password, err := sealing.DecryptPassword(ciphertext, priv)
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", domain.ErrInvalidCredentials
	}
	return password, nil
}

// privateKey loads the named key pair, generating and saving one on first
// use. If another instance saved first, its pair is used.
func (s *IdentityService) privateKey(ctx context.Context) (*rsa.PrivateKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.priv != nil {
		return s.priv, nil
	}

	kp, err := s.keys.FindByName(ctx, s.opts.KeyName)
	if errors.Is(err, domain.ErrKeyNotFound) {
		generated, genErr := sealing.GenerateKeyPair(s.opts.KeyName, s.opts.KeyBits)
		if genErr != nil {
			return nil, genErr
		}
		kp, err = s.keys.Save(ctx, generated)
		if err == nil {
			s.log.Info().Str("key", s.opts.KeyName).Int("bits", s.opts.KeyBits).Msg("rsa key pair created")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("load key %q: %w", s.opts.KeyName, err)
	}

	priv, err := sealing.ParsePrivateKey(kp.PrivateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("load key %q: %w", s.opts.KeyName, err)
	}
	s.priv = priv
	s.pubPEM = sealing.EncodePublicKey(&priv.PublicKey)
	return priv, nil
}

func newSalt() (string, error) {
	b := make([]byte, saltBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// saltedDigest keeps the bcrypt input under its 72 byte limit for any
// password that fits in one OAEP block.
func saltedDigest(password, salt string) []byte {
	sum := sha256.Sum256([]byte(password + salt))
	return []byte(hex.EncodeToString(sum[:]))
}
