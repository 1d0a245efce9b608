package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"codeduel_server/arena"
	"codeduel_server/routes"
	"codeduel_server/services"
	"codeduel_server/socket"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	// Initialize DynamoDB client and service
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient()
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	// Initialize Services
	challengeService := &services.ChallengeService{Dynamo: dynamoService}
	matchService := &services.MatchService{Dynamo: dynamoService}
	userProfileService := &services.UserProfileService{Dynamo: dynamoService}
	walletService := &services.WalletService{Dynamo: dynamoService}
	rewardService := &services.RewardService{
		Matches:  matchService,
		Profiles: userProfileService,
		Wallet:   walletService,
	}
	judgeService := services.NewJudgeService()

	// Initialize the match engine and its socket transport
	sessions := socket.NewSessionRegistry()
	engine := arena.NewEngine(challengeService, matchService, sessions)
	socketServer := socket.NewSocketServer(engine, sessions)
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Fatalf("Socket server error: %v", err)
		}
	}()
	defer socketServer.Close()

	// Set up the server port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Using server port: %s\n", port)

	// Initialize the router
	r := mux.NewRouter()

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to CodeDuel")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]interface{}{
			"status":        "healthy",
			"connections":   sessions.Count(),
			"waiting":       engine.WaitingCount(),
			"activeMatches": engine.ActiveMatchCount(),
		}
		json.NewEncoder(w).Encode(response)
	}).Methods("GET")

	// Register routes
	routes.RegisterUserProfileRoutes(r, userProfileService)
	routes.RegisterWalletRoutes(r, walletService)
	routes.RegisterCompetitionRoutes(r, matchService, challengeService, judgeService, rewardService)
	r.Handle("/socket.io/", socketServer)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler))
}
