package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jinhajunho/luel-note-sub000/internal/model"
)

const (
	ctxMemberID  = "member_id"
	ctxActorRole = "actor_role"
)

// Claims is the token payload issued by the member portal.
type Claims struct {
	MemberID int64  `json:"member_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Auth validates the Bearer token and stores the caller's identity on the
// context. The role claim decides whether the edit-window gate applies.
func Auth(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authorization header is required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authorization header must be in the format: Bearer {token}"})
			c.Abort()
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid or expired token"})
			c.Abort()
			return
		}

		role := model.ActorParticipant
		if claims.Role == string(model.MemberRoleStaff) {
			role = model.ActorStaff
		}

		c.Set(ctxMemberID, claims.MemberID)
		c.Set(ctxActorRole, role)
		c.Next()
	}
}

// RequireStaff rejects non-staff callers. Must run after Auth.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actorRole(c) != model.ActorStaff {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "staff only"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequestLogger tags every request with an id and logs its outcome.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Set("request_id", requestID)
		start := time.Now()

		c.Next()

		logger.Info("HTTP request",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

func actorRole(c *gin.Context) model.ActorRole {
	if v, ok := c.Get(ctxActorRole); ok {
		if role, ok := v.(model.ActorRole); ok {
			return role
		}
	}
	return model.ActorParticipant
}

func callerMemberID(c *gin.Context) int64 {
	if v, ok := c.Get(ctxMemberID); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}
