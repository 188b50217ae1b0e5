package auth

import (
	"net/http"
	"os"
	"strings"
	"time"

	"integraportal/dto"
	"integraportal/middleware"
	"integraportal/model"
	"integraportal/services"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func AuthController(router *gin.Engine, firestoreClient *firestore.Client) {
	routes := router.Group("/auth")
	{
		routes.POST("/login", func(c *gin.Context) {
			Login(c, firestoreClient)
		})
		routes.POST("/refresh", middleware.RefreshTokenMiddleware(), func(c *gin.Context) {
			RefreshToken(c)
		})
	}
}

// Login authenticates one of the four dashboard roles. Staff roles check
// their own collection; participants authenticate against the
// credentials document issued at registration and must belong to a
// verified team.
func Login(c *gin.Context, firestoreClient *firestore.Client) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifier, password and role are required"})
		return
	}

	switch req.Role {
	case middleware.RoleAdmin:
		loginOperator(c, firestoreClient, "admins", req, "")
	case middleware.RoleCoordinator:
		loginOperator(c, firestoreClient, "coordinators", req, req.EventName)
	case middleware.RoleFood:
		loginOperator(c, firestoreClient, "foodCoordinators", req, "")
	case middleware.RoleParticipant:
		loginParticipant(c, firestoreClient, req)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
	}
}

func loginOperator(c *gin.Context, firestoreClient *firestore.Client, collection string, req dto.LoginRequest, eventName string) {
	email := strings.ToLower(strings.TrimSpace(req.Identifier))

	docs, err := firestoreClient.Collection(collection).
		Where("email", "==", email).
		Limit(1).
		Documents(c).GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed. Please try again."})
		return
	}
	if len(docs) == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	var operator model.Operator
	if err := docs[0].DataTo(&operator); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed. Please try again."})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(operator.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	// Event coordinators carry their event in the token so the lots
	// endpoints never trust a client-supplied event name.
	if req.Role == middleware.RoleCoordinator {
		if operator.EventName != "" {
			eventName = operator.EventName
		}
		if eventName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Event name is required for coordinator login"})
			return
		}
	}

	issueTokens(c, tokenClaims{
		Subject:   docs[0].Ref.ID,
		Role:      req.Role,
		EventName: eventName,
	}, gin.H{
		"name":  operator.Name,
		"email": operator.Email,
	})
}

func loginParticipant(c *gin.Context, firestoreClient *firestore.Client, req dto.LoginRequest) {
	credential, regID, ok := findCredential(c, firestoreClient, req.Identifier)
	if !ok {
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(credential.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	teamID, team, err := services.FindTeamByEmail(c, firestoreClient, credential.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed. Please try again."})
		return
	}
	if team == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No team found for this login"})
		return
	}
	if team.PaymentStatus != model.PaymentVerified {
		c.JSON(http.StatusForbidden, gin.H{"error": "Registration is not verified yet"})
		return
	}

	issueTokens(c, tokenClaims{
		Subject: regID,
		Role:    middleware.RoleParticipant,
		TeamID:  teamID,
	}, gin.H{
		"regId":       regID,
		"collegeName": team.CollegeName,
		"teamLead":    team.TeamLead,
	})
}

// findCredential resolves the identifier as a registration id first,
// then as the username issued at registration.
func findCredential(c *gin.Context, firestoreClient *firestore.Client, identifier string) (*model.Credential, string, bool) {
	identifier = strings.TrimSpace(identifier)

	doc, err := firestoreClient.Collection("credentials").Doc(strings.ToUpper(identifier)).Get(c)
	if err == nil {
		var credential model.Credential
		if err := doc.DataTo(&credential); err == nil {
			return &credential, doc.Ref.ID, true
		}
	}

	docs, err := firestoreClient.Collection("credentials").
		Where("username", "==", strings.ToLower(identifier)).
		Limit(1).
		Documents(c).GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed. Please try again."})
		return nil, "", false
	}
	if len(docs) == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return nil, "", false
	}

	var credential model.Credential
	if err := docs[0].DataTo(&credential); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed. Please try again."})
		return nil, "", false
	}
	return &credential, docs[0].Ref.ID, true
}

type tokenClaims struct {
	Subject   string
	Role      string
	TeamID    string
	EventName string
}

func issueTokens(c *gin.Context, claims tokenClaims, profile gin.H) {
	accessToken, err := signAccessToken(claims)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}
	refreshToken, err := signRefreshToken(claims)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
		"role":         claims.Role,
		"profile":      profile,
	})
}

func signAccessToken(claims tokenClaims) (string, error) {
	now := time.Now()
	mapClaims := jwt.MapClaims{
		"sub":  claims.Subject,
		"role": claims.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(12 * time.Hour).Unix(),
	}
	if claims.TeamID != "" {
		mapClaims["teamId"] = claims.TeamID
	}
	if claims.EventName != "" {
		mapClaims["eventName"] = claims.EventName
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET_KEY")))
}

func signRefreshToken(claims tokenClaims) (string, error) {
	now := time.Now()
	mapClaims := jwt.MapClaims{
		"sub":       claims.Subject,
		"role":      claims.Role,
		"iat":       now.Unix(),
		"expiresAt": now.Add(7 * 24 * time.Hour).Unix(),
	}
	if claims.TeamID != "" {
		mapClaims["teamId"] = claims.TeamID
	}
	if claims.EventName != "" {
		mapClaims["eventName"] = claims.EventName
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims)
	return token.SignedString([]byte(os.Getenv("JWT_REFRESH_SECRET_KEY")))
}

// RefreshToken reissues an access token from a valid refresh token.
func RefreshToken(c *gin.Context) {
	claimsValue, _ := c.Get("claims")
	claims, ok := claimsValue.(jwt.MapClaims)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid claims format"})
		return
	}

	token := tokenClaims{Subject: c.MustGet("operatorId").(string)}
	if role, ok := claims["role"].(string); ok {
		token.Role = role
	}
	if teamID, ok := claims["teamId"].(string); ok {
		token.TeamID = teamID
	}
	if eventName, ok := claims["eventName"].(string); ok {
		token.EventName = eventName
	}

	accessToken, err := signAccessToken(token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"accessToken": accessToken})
}
