package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Roles carried in the access token.
const (
	RoleAdmin       = "admin"
	RoleCoordinator = "coordinator"
	RoleFood        = "food"
	RoleParticipant = "participant"
)

func AccessTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Request.Header.Get("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(401, gin.H{"error": "Authorization header is missing"})
			return
		}

		tokenString := strings.Replace(header, "Bearer ", "", 1)
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			hmacSampleSecret := []byte(os.Getenv("JWT_SECRET_KEY"))
			return hmacSampleSecret, nil
		})

		if err != nil {
			c.AbortWithStatusJSON(403, gin.H{"error": "Token is expired or invalid: " + err.Error()})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			c.AbortWithStatusJSON(401, gin.H{"error": "Invalid token claims"})
			return
		}

		c.Set("claims", claims)

		operatorID, ok := claims["sub"].(string)
		if !ok || operatorID == "" {
			c.AbortWithStatusJSON(401, gin.H{"error": "Invalid subject in token claims"})
			return
		}
		c.Set("operatorId", operatorID)

		if role, ok := claims["role"].(string); ok {
			c.Set("role", role)
		}
		if teamID, ok := claims["teamId"].(string); ok {
			c.Set("teamId", teamID)
		}
		if eventName, ok := claims["eventName"].(string); ok {
			c.Set("eventName", eventName)
		}

		c.Next()
	}
}

func AdminMiddleware() gin.HandlerFunc {
	return RoleMiddleware(RoleAdmin)
}

func FoodCoordinatorMiddleware() gin.HandlerFunc {
	return RoleMiddleware(RoleFood)
}

func CoordinatorMiddleware() gin.HandlerFunc {
	return RoleMiddleware(RoleCoordinator)
}

func ParticipantMiddleware() gin.HandlerFunc {
	return RoleMiddleware(RoleParticipant)
}

func RoleMiddleware(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get("claims")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Claims not found"})
			return
		}

		claims, ok := claimsValue.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid claims format"})
			return
		}

		role, ok := claims["role"].(string)
		if !ok || role != required {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}

		c.Next()
	}
}

func RefreshTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.Request.Header.Get("Authorization")
		if authHeader == "" {
			c.JSON(401, gin.H{"error": "Refresh token is missing"})
			c.Abort()
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || bearerToken[0] != "Bearer" {
			c.JSON(401, gin.H{"error": "Invalid token format"})
			c.Abort()
			return
		}

		refreshToken := bearerToken[1]
		hmacSampleSecret := []byte(os.Getenv("JWT_REFRESH_SECRET_KEY"))
		token, err := jwt.Parse(refreshToken, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return hmacSampleSecret, nil
		})

		if err != nil {
			c.JSON(403, gin.H{"error": "Invalid refresh token: " + err.Error()})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			c.JSON(401, gin.H{"error": "Invalid refresh token claims"})
			c.Abort()
			return
		}

		if exp, ok := claims["expiresAt"].(float64); ok {
			if int64(exp) < time.Now().Unix() {
				c.JSON(401, gin.H{"error": "Refresh token has expired"})
				c.Abort()
				return
			}
		}

		sub, ok := claims["sub"].(string)
		if !ok || sub == "" {
			c.JSON(401, gin.H{"error": "Invalid token claims: subject not found"})
			c.Abort()
			return
		}

		c.Set("claims", claims)
		c.Set("operatorId", sub)
		c.Set("refreshToken", refreshToken)

		c.Next()
	}
}
