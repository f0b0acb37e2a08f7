package middleware

import (
	"net/http"
	"time"

	"github.com/aq2208/gstore-api/configs"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// SessionHeader carries the session token for clients without cookies.
	SessionHeader = "X-Session-Token"
	sessionKey    = "session_id"
	sessionIssuer = "storefront"
)

// Sessions gives every shopper a signed, anonymous session id. It is not
// authentication: the token only proves the id was issued by this server.
type Sessions struct {
	secret []byte
	cookie string
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewSessions(cfg configs.Config) *Sessions {
	return &Sessions{
		secret: []byte(cfg.Session.Secret),
		cookie: cfg.Session.Cookie,
		ttl:    cfg.Session.TTL,
		secure: cfg.Session.Secure,
		now:    time.Now,
	}
}

// Attach resolves the session of the request, minting a new one when the
// token is missing, expired or forged.
func (s *Sessions) Attach() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(SessionHeader)
		if raw == "" {
			raw, _ = c.Cookie(s.cookie)
		}

		sid, exp, ok := s.parse(raw)
		if !ok || exp.Sub(s.now()) < s.ttl/2 {
			if !ok {
				sid = uuid.NewString()
			}
			token, err := s.Issue(sid)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(s.cookie, token, int(s.ttl.Seconds()), "/", "", s.secure, true)
			c.Header(SessionHeader, token)
		}

		c.Set(sessionKey, sid)
		c.Next()
	}
}

// Issue signs a session token for sid.
func (s *Sessions) Issue(sid string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    sessionIssuer,
		Subject:   sid,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Sessions) parse(raw string) (string, time.Time, bool) {
	if raw == "" {
		return "", time.Time{}, false
	}
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithLeeway(30*time.Second), // small clock skew
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid || claims.Subject == "" || claims.ExpiresAt == nil {
		return "", time.Time{}, false
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", time.Time{}, false
	}
	return claims.Subject, claims.ExpiresAt.Time, true
}

// SessionID returns the id set by Attach.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}
