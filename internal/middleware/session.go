package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// SessionCookie carries the signed session token.
	SessionCookie = "session"
	// LoginPath is where anonymous visitors of protected routes are sent.
	LoginPath = "/auth/login/"

	tokenIssuer   = "yatube"
	tokenAudience = "yatube-web"
	blacklistKey  = "blacklist:"
)

// ErrSessionRevoked is returned for tokens that were logged out.
var ErrSessionRevoked = errors.New("session has been revoked")

// Session is the verified content of a session token.
type Session struct {
	UserID    uint
	Username  string
	JTI       string
	ExpiresAt time.Time
}

// Sessions issues, verifies and revokes HS256 session tokens.
type Sessions struct {
	secret       []byte
	ttl          time.Duration
	redis        *redis.Client
	secureCookie bool
}

// NewSessions creates a session manager. A nil Redis client disables revocation checks.
func NewSessions(secret string, ttl time.Duration, rdb *redis.Client, secureCookie bool) *Sessions {
	return &Sessions{
		secret:       []byte(secret),
		ttl:          ttl,
		redis:        rdb,
		secureCookie: secureCookie,
	}
}

// Issue signs a new token for the user.
func (s *Sessions) Issue(userID uint, username string) (string, *Session, error) {
	if len(s.secret) == 0 {
		return "", nil, fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	session := &Session{
		UserID:    userID,
		Username:  username,
		JTI:       fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8]),
		ExpiresAt: now.Add(s.ttl),
	}
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"exp":      session.ExpiresAt.Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      session.JTI,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, session, nil
}

// Parse verifies the token signature, registered claims and revocation state.
func (s *Sessions) Parse(ctx context.Context, tokenString string) (*Session, error) {
	token, err := jwt.Parse(tokenString, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, errors.New("invalid subject claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in token: %w", err)
	}

	session := &Session{UserID: uint(userID)}
	session.Username, _ = claims["username"].(string)
	session.JTI, _ = claims["jti"].(string)
	if exp, expErr := claims.GetExpirationTime(); expErr == nil && exp != nil {
		session.ExpiresAt = exp.Time
	}

	if session.JTI != "" && s.redis != nil {
		revoked, redisErr := s.redis.Exists(ctx, blacklistKey+session.JTI).Result()
		if redisErr == nil && revoked > 0 {
			return nil, ErrSessionRevoked
		}
	}

	return session, nil
}

// Revoke blacklists the session's token id until it would have expired.
func (s *Sessions) Revoke(ctx context.Context, session *Session) error {
	if session == nil || session.JTI == "" {
		return nil
	}
	if s.redis == nil {
		Logger.WarnContext(ctx, "session revocation skipped: redis unavailable")
		return nil
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.redis.Set(ctx, blacklistKey+session.JTI, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// SetCookie stores the token in an HTTP-only cookie.
func (s *Sessions) SetCookie(c *fiber.Ctx, token string, session *Session) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		Secure:   s.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (s *Sessions) ClearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Load attaches the session, if any, to the request. Invalid tokens are treated as anonymous.
func (s *Sessions) Load() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			tokenString = c.Cookies(SessionCookie)
		}
		if tokenString == "" {
			return c.Next()
		}

		session, err := s.Parse(c.UserContext(), tokenString)
		if err != nil {
			return c.Next()
		}

		c.Locals("userID", session.UserID)
		c.Locals("session", session)
		c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, session.UserID))
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	parts := strings.Split(c.Get("Authorization"), " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// LoginRequired redirects anonymous visitors to the login page, remembering where they were going.
func LoginRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CurrentUserID(c); ok {
			return c.Next()
		}
		return c.Redirect(LoginRedirectURL(c.OriginalURL()), fiber.StatusFound)
	}
}

// LoginRedirectURL builds the login URL carrying next.
func LoginRedirectURL(next string) string {
	return LoginPath + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// CurrentUserID returns the authenticated user of the request.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	uid, ok := c.Locals("userID").(uint)
	return uid, ok && uid != 0
}

// CurrentSession returns the verified session of the request, or nil.
func CurrentSession(c *fiber.Ctx) *Session {
	session, _ := c.Locals("session").(*Session)
	return session
}
