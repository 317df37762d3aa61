package server

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"vidtrack/internal/version"
)

const userKey = "user"

type TokenClaims struct {
	jwt.RegisteredClaims
	UserId string `json:"user_id"`
}

// GenToken signs a bearer token for userId, valid for ttl.
func GenToken(userId, jwtSecret string, ttl time.Duration) (string, error) {
	if jwtSecret == "" {
		return "", errors.New("jwt secret is not configured")
	}
	now := time.Now()
	claims := TokenClaims{
		UserId: userId,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    version.APP,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

func parseToken(tokenStr, jwtSecret string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid || claims.UserId == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func TrySetUserToContext(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.Query("token")
		if tokenStr == "" {
			auth := c.GetHeader("Authorization")
			if len(auth) > 7 && auth[:7] == "Bearer " {
				tokenStr = auth[7:]
			}
		}
		if tokenStr != "" {
			claims, err := parseToken(tokenStr, jwtSecret)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Success: false, Message: "invalid token"})
				return
			}
			c.Set(userKey, claims.UserId)
		}
		c.Next()
	}
}

func NeedAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(userKey); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Success: false, Message: "unauthorized"})
			return
		}
		c.Next()
	}
}

const NotificationSecretHeader = "X-Notification-Secret"

// NeedNotificationSecret rejects requests whose shared secret header does not
// match. An empty secret rejects everything.
func NeedNotificationSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(NotificationSecretHeader)
		if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Success: false, Message: "unauthorized"})
			return
		}
		c.Next()
	}
}

// sameUser reports whether the caller may act for userId. Without a jwt
// secret every caller may.
func (s *Server) sameUser(c *gin.Context, userId string) bool {
	if s.conf.JwtSecret == "" {
		return true
	}
	return c.GetString(userKey) == userId
}
