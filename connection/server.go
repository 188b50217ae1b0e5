package connection

import (
	"context"
	"fmt"
	"log"
	"os"

	"integraportal/controller/admin"
	"integraportal/controller/auth"
	"integraportal/controller/coordinator"
	"integraportal/controller/food"
	"integraportal/controller/participant"
	"integraportal/controller/registration"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

// FBApp initializes the Firebase app from the service account key
// configured in the environment.
func FBApp() (*firebase.App, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: No .env file found or failed to load")
	}

	serviceAccountKeyPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	if serviceAccountKeyPath == "" {
		return nil, fmt.Errorf("firebase credentials not configured")
	}

	ctx := context.Background()
	opt := option.WithCredentialsFile(serviceAccountKeyPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing app: %v", err)
	}
	return app, nil
}

// FBConnection returns a Firestore client for the portal project.
func FBConnection() (*firestore.Client, error) {
	app, err := FBApp()
	if err != nil {
		return nil, err
	}

	client, err := app.Firestore(context.Background())
	if err != nil {
		return nil, fmt.Errorf("error initializing Firestore client: %v", err)
	}
	return client, nil
}

func StartServer() {
	router := gin.Default()

	FB, err := FBConnection()
	if err != nil {
		log.Fatalf("Failed to initialize Firestore client: %v", err)
	}
	App, err := FBApp()
	if err != nil {
		log.Fatalf("Failed to initialize Firebase app: %v", err)
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Api is running!"})
	})

	router.Use(cors.Default())

	auth.AuthController(router, FB)

	registration.RegistrationController(router, FB)

	admin.AdminController(router, FB, App)
	admin.SettingsController(router, FB)
	admin.LotsController(router, FB)
	admin.ReportsController(router, FB)

	food.FoodController(router, FB)
	food.ScannerController(router, FB)

	participant.ParticipantController(router, FB)

	coordinator.CoordinatorController(router, FB)

	router.Run()
}
