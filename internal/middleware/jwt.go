package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"daily-checkin/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const userKey = "current_user"

// renewWithin is how close to expiry a token must be before JWTAuth hands out
// a fresh one in X-New-Token.
const renewWithin = 24 * time.Hour

// Claims is the token body.
type Claims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Role          string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Tokens signs and checks HS256 bearer tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *Tokens) Issue(u model.CurrentUser) (string, error) {
	now := t.now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		Role:          u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}).SignedString(t.secret)
}

func (t *Tokens) Parse(raw string) (*Claims, error) {
	var c Claims
	token, err := jwt.ParseWithClaims(raw, &c, func(tok *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid || c.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return &c, nil
}

// JWTAuth rejects requests without a valid bearer token and stores the
// current user in the gin context.
func (t *Tokens) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		claims, err := t.Parse(auth[7:])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		u := model.CurrentUser{
			UID:           claims.Subject,
			Email:         claims.Email,
			Role:          claims.Role,
			EmailVerified: claims.EmailVerified,
		}
		c.Set(userKey, u)

		if claims.ExpiresAt != nil && claims.ExpiresAt.Sub(t.now()) < renewWithin {
			if fresh, err := t.Issue(u); err == nil {
				c.Header("X-New-Token", fresh)
			}
		}

		c.Next()
	}
}

// CurrentUser returns the signed-in user, or nil outside JWTAuth.
func CurrentUser(c *gin.Context) *model.CurrentUser {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, ok := v.(model.CurrentUser)
	if !ok {
		return nil
	}
	return &u
}
