package admin

import (
	"log"
	"net/http"
	"strings"

	"integraportal/model"
	"integraportal/services"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// VerifyPayment marks a registration as paid: team and payment documents
// flip to verified, the participant login is provisioned and credentials
// are mailed to every member. Provisioning and mail are best effort; the
// verification itself must not fail because SMTP is down.
func VerifyPayment(c *gin.Context, firestoreClient *firestore.Client, app *firebase.App) {
	teamID := c.Param("id")

	team, err := services.GetTeam(c, firestoreClient, teamID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Registration not found"})
		return
	}
	if team.PaymentStatus == model.PaymentVerified {
		c.JSON(http.StatusConflict, gin.H{"error": "Registration is already verified"})
		return
	}

	paymentDocs, err := firestoreClient.Collection("payments").
		Where("teamId", "==", teamID).
		Documents(c).GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payment record"})
		return
	}

	batch := firestoreClient.Batch()
	batch.Update(firestoreClient.Collection("teams").Doc(teamID), []firestore.Update{
		{Path: "paymentStatus", Value: model.PaymentVerified},
	})
	for _, doc := range paymentDocs {
		batch.Update(doc.Ref, []firestore.Update{
			{Path: "status", Value: model.PaymentVerified},
			{Path: "verifiedAt", Value: firestore.ServerTimestamp},
		})
	}
	if _, err := batch.Commit(c); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify registration"})
		return
	}

	username, password := ensureCredentials(c, firestoreClient, team)

	provisionAuthUser(c, app, team.Email, password)

	mailed := 0
	for _, member := range team.Participants {
		if strings.TrimSpace(member.Email) == "" {
			continue
		}
		if err := services.SendCredentialsEmail(member.Email, team, username, password); err != nil {
			log.Printf("verify %s: credentials mail to %s failed: %v", team.RegID, member.Email, err)
			continue
		}
		mailed++
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Registration verified",
		"regId":        team.RegID,
		"emailsMailed": mailed,
	})
}

// ensureCredentials makes sure the credentials document for the team
// exists, creating it from the leader contact when a legacy registration
// predates credential issuance. Returns the username/password pair for
// the notification mail.
func ensureCredentials(c *gin.Context, firestoreClient *firestore.Client, team *model.Team) (string, string) {
	username := team.Email
	password := team.Phone

	ref := firestoreClient.Collection("credentials").Doc(team.RegID)
	if _, err := ref.Get(c); err == nil {
		return username, password
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("verify %s: credential hash failed: %v", team.RegID, err)
		return username, password
	}
	if _, err := ref.Set(c, model.Credential{
		Email:        team.Email,
		Username:     username,
		PasswordHash: string(hash),
		RegID:        team.RegID,
		College:      team.CollegeName,
	}); err != nil {
		log.Printf("verify %s: credential write failed: %v", team.RegID, err)
	}
	return username, password
}

// provisionAuthUser creates the Firebase Auth account backing the
// participant login. An already-existing account is fine.
func provisionAuthUser(c *gin.Context, app *firebase.App, email, password string) {
	authClient, err := app.Auth(c)
	if err != nil {
		log.Printf("auth provisioning: client init failed: %v", err)
		return
	}

	params := (&firebaseauth.UserToCreate{}).
		Email(email).
		Password(password).
		EmailVerified(false)
	if _, err := authClient.CreateUser(c, params); err != nil {
		if firebaseauth.IsEmailAlreadyExists(err) {
			return
		}
		log.Printf("auth provisioning: create user %s failed: %v", email, err)
	}
}

// RejectPayment flags the registration as rejected without touching the
// food token or participant documents, so an admin can still re-verify.
func RejectPayment(c *gin.Context, firestoreClient *firestore.Client) {
	setPaymentStatus(c, firestoreClient, model.PaymentRejected, "Registration rejected")
}

// UnverifyPayment rolls a verified registration back to pending and
// clears the payment verification timestamp.
func UnverifyPayment(c *gin.Context, firestoreClient *firestore.Client) {
	setPaymentStatus(c, firestoreClient, model.PaymentPending, "Registration moved back to pending")
}

func setPaymentStatus(c *gin.Context, firestoreClient *firestore.Client, status, message string) {
	teamID := c.Param("id")

	if _, err := services.GetTeam(c, firestoreClient, teamID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Registration not found"})
		return
	}

	paymentDocs, err := firestoreClient.Collection("payments").
		Where("teamId", "==", teamID).
		Documents(c).GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payment record"})
		return
	}

	batch := firestoreClient.Batch()
	batch.Update(firestoreClient.Collection("teams").Doc(teamID), []firestore.Update{
		{Path: "paymentStatus", Value: status},
	})
	for _, doc := range paymentDocs {
		updates := []firestore.Update{{Path: "status", Value: status}}
		if status != model.PaymentVerified {
			updates = append(updates, firestore.Update{Path: "verifiedAt", Value: nil})
		}
		batch.Update(doc.Ref, updates)
	}
	if _, err := batch.Commit(c); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update registration"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}
