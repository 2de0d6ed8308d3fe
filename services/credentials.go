package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"projecthub/config"
	"projecthub/database"
	"projecthub/models"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Claims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// Credentials hashes passwords and issues and verifies session tokens.
type Credentials struct {
	db     *gorm.DB
	log    *zap.Logger
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

func NewCredentials(db *gorm.DB, cfg config.AuthConfig, log *zap.Logger) *Credentials {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	ttl := cfg.JWTExpiration
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Credentials{
		db:     db,
		log:    log,
		secret: []byte(cfg.JWTSecret),
		ttl:    ttl,
		cost:   cost,
		now:    time.Now,
	}
}

// WithClock replaces the time source used for issuing and verifying tokens.
func (c *Credentials) WithClock(now func() time.Time) *Credentials {
	c.now = now
	return c
}

func (c *Credentials) HashPassword(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", validationErr("password must be at most %d bytes", maxPasswordBytes)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func (c *Credentials) CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Register creates a USER account. The email is stored lower-cased.
func (c *Credentials) Register(ctx context.Context, email, nama, password string) (*models.User, error) {
	email = NormalizeEmail(email)

	var count int64
	if err := c.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateEmail
	}

	hashed, err := c.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        email,
		Nama:         strings.TrimSpace(nama),
		PasswordHash: hashed,
		Role:         models.RoleUser,
	}
	if err := c.db.WithContext(ctx).Create(&user).Error; err != nil {
		if database.IsDuplicate(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	c.log.Info("user registered", zap.Uint("user_id", user.ID))
	return &user, nil
}

// Authenticate checks the email/password pair and issues a token. Unknown email and
// wrong password both yield ErrInvalidCredentials.
func (c *Credentials) Authenticate(ctx context.Context, email, password string) (*models.User, string, error) {
	var user models.User
	err := c.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.burnCompare(password)
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if !c.CheckPassword(user.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, expiresAt, err := c.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	record := models.Token{Token: token, UserID: user.ID, ExpiresAt: expiresAt}
	if err := c.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, "", fmt.Errorf("record token: %w", err)
	}

	return &user, token, nil
}

// IssueToken signs an HS512 token for userID valid for the configured window.
func (c *Credentials) IssueToken(userID uint) (string, time.Time, error) {
	if len(c.secret) == 0 {
		return "", time.Time{}, ErrMissingSecret
	}

	now := c.now()
	expiresAt := now.Add(c.ttl)
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// VerifyToken returns the user id embedded in a valid token.
func (c *Credentials) VerifyToken(tokenString string) (uint, error) {
	if len(c.secret) == 0 {
		return 0, ErrMissingSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}

// burnCompare runs one bcrypt comparison against a throwaway hash so unknown
// emails cost the same as wrong passwords.
func (c *Credentials) burnCompare(password string) {
	c.dummyOnce.Do(func() {
		c.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("projecthub-unknown-user"), c.cost)
	})
	_ = bcrypt.CompareHashAndPassword(c.dummyHash, []byte(password))
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
