package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rl1809/storefront/internal/core/domain"
)

const sessionKey = "session"

var (
	ErrMissingToken = &domain.Error{Kind: domain.ErrUnauthorized, Msg: "missing bearer token"}
	ErrInvalidToken = &domain.Error{Kind: domain.ErrUnauthorized, Msg: "invalid bearer token"}
	ErrForbidden    = &domain.Error{Kind: domain.ErrUnauthorized, Msg: "operator role required"}
)

// TokenVerifier turns a bearer token into a Session. With an empty secret
// the signature is not checked here: the token is only forwarded, the owning
// API remains its verifier and the resulting session is unverified.
type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// ParseSession accepts either "Bearer <jwt>" or the bare token.
//
// A verified session is keyed by its user_id and takes its role from the
// token. An unverified one is always a customer keyed by a digest of the
// token, so claims alone never reach another shopper's state.
func (v *TokenVerifier) ParseSession(header string) (domain.Session, error) {
	raw := strings.TrimSpace(header)
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		raw = strings.TrimSpace(raw[7:])
	}
	if raw == "" {
		return domain.Session{}, ErrMissingToken
	}

	claims := jwt.MapClaims{}
	var err error
	verified := len(v.secret) > 0
	if !verified {
		_, _, err = jwt.NewParser().ParseUnverified(raw, claims)
	} else {
		var token *jwt.Token
		token, err = jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
			return v.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err == nil && !token.Valid {
			err = errors.New("token not valid")
		}
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return domain.Session{}, fmt.Errorf("%w: user_id claim missing", ErrInvalidToken)
	}

	sess := domain.Session{
		UserID:      int64(userID),
		Role:        domain.RoleCustomer,
		BearerToken: raw,
		Verified:    verified,
	}
	if !verified {
		sess.ID = tokenSessionID(raw)
		return sess, nil
	}
	if role, ok := claims["role"].(string); ok && role != "" {
		sess.Role = strings.ToLower(role)
	}
	sess.ID = fmt.Sprintf("user-%d", sess.UserID)
	return sess, nil
}

func tokenSessionID(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return "token-" + hex.EncodeToString(sum[:16])
}

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(v *TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := v.ParseSession(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// OptionalAuthMiddleware lets anonymous shoppers browse with a throwaway
// session. A token that is present must still be valid.
func OptionalAuthMiddleware(v *TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Set(sessionKey, domain.Session{ID: "anon-" + uuid.NewString(), Role: domain.RoleCustomer})
			c.Next()
			return
		}
		sess, err := v.ParseSession(header)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func RequireOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !sessionFrom(c).IsOperator() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": ErrForbidden.Error()})
			return
		}
		c.Next()
	}
}

func sessionFrom(c *gin.Context) domain.Session {
	if v, ok := c.Get(sessionKey); ok {
		if sess, ok := v.(domain.Session); ok {
			return sess
		}
	}
	return domain.Session{}
}
