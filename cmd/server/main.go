package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/ini272/majordomo/internal/achievements"
	"github.com/ini272/majordomo/internal/auth"
	"github.com/ini272/majordomo/internal/bounty"
	"github.com/ini272/majordomo/internal/database"
	"github.com/ini272/majordomo/internal/homes"
	"github.com/ini272/majordomo/internal/middleware"
	"github.com/ini272/majordomo/internal/quests"
	"github.com/ini272/majordomo/internal/rewards"
	"github.com/ini272/majordomo/internal/scribe"
	"github.com/ini272/majordomo/internal/users"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Stores
	homeStore := homes.NewStore(db)
	userStore := users.NewStore(db)
	questStore := quests.NewStore(db)
	bountyStore := bounty.NewStore(db)
	rewardStore := rewards.NewStore(db)
	achievementStore := achievements.NewStore(db)

	if err := achievementStore.SeedDefaults(); err != nil {
		log.Fatalf("Failed to seed achievements: %v", err)
	}

	// Services
	bountyService := bounty.NewService(bountyStore)
	achievementService := achievements.NewService(achievementStore)
	rewardService := rewards.NewService(rewardStore, userStore)
	questService := quests.NewService(questStore, userStore, bountyService, achievementService, scribe.New())

	// Handlers
	authHandler := auth.NewHandler(homeStore, userStore)
	homeHandler := homes.NewHandler(homeStore, userStore)
	userHandler := users.NewHandler(userStore)
	questHandler := quests.NewHandler(questService)
	bountyHandler := bounty.NewHandler(bountyService)
	rewardHandler := rewards.NewHandler(rewardStore, rewardService)
	achievementHandler := achievements.NewHandler(achievementStore)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	protected.HandleFunc("/home", homeHandler.GetCurrent).Methods("GET")
	protected.HandleFunc("/home", homeHandler.UpdateCurrent).Methods("PATCH")
	protected.HandleFunc("/home/members", homeHandler.ListMembers).Methods("GET")

	protected.HandleFunc("/users/{id:[0-9]+}", userHandler.GetUser).Methods("GET")
	protected.HandleFunc("/users/{id:[0-9]+}", userHandler.UpdateUser).Methods("PATCH")
	protected.HandleFunc("/users/{id:[0-9]+}", userHandler.DeleteUser).Methods("DELETE")
	protected.HandleFunc("/users/{id:[0-9]+}/xp", userHandler.AddXP).Methods("POST")
	protected.HandleFunc("/users/{id:[0-9]+}/gold", userHandler.AddGold).Methods("POST")

	protected.HandleFunc("/templates", questHandler.CreateTemplate).Methods("POST")
	protected.HandleFunc("/templates", questHandler.ListTemplates).Methods("GET")
	protected.HandleFunc("/templates/{id:[0-9]+}", questHandler.GetTemplate).Methods("GET")
	protected.HandleFunc("/templates/{id:[0-9]+}", questHandler.UpdateTemplate).Methods("PATCH")
	protected.HandleFunc("/templates/{id:[0-9]+}", questHandler.DeleteTemplate).Methods("DELETE")
	protected.HandleFunc("/templates/{id:[0-9]+}/instantiate", questHandler.InstantiateTemplate).Methods("POST")

	protected.HandleFunc("/quests", questHandler.CreateQuest).Methods("POST")
	protected.HandleFunc("/quests", questHandler.ListQuests).Methods("GET")
	protected.HandleFunc("/quests/check-corruption", questHandler.CheckCorruption).Methods("POST")
	protected.HandleFunc("/quests/generate", questHandler.GenerateQuests).Methods("POST")
	protected.HandleFunc("/quests/{id:[0-9]+}", questHandler.GetQuest).Methods("GET")
	protected.HandleFunc("/quests/{id:[0-9]+}", questHandler.UpdateQuest).Methods("PATCH")
	protected.HandleFunc("/quests/{id:[0-9]+}", questHandler.DeleteQuest).Methods("DELETE")
	protected.HandleFunc("/quests/{id:[0-9]+}/complete", questHandler.CompleteQuest).Methods("POST")

	protected.HandleFunc("/subscriptions", questHandler.CreateSubscription).Methods("POST")
	protected.HandleFunc("/subscriptions", questHandler.ListSubscriptions).Methods("GET")
	protected.HandleFunc("/subscriptions/upcoming", questHandler.UpcomingSubscriptions).Methods("GET")
	protected.HandleFunc("/subscriptions/{id:[0-9]+}", questHandler.UpdateSubscription).Methods("PATCH")
	protected.HandleFunc("/subscriptions/{id:[0-9]+}", questHandler.DeleteSubscription).Methods("DELETE")

	protected.HandleFunc("/bounty/today", bountyHandler.GetToday).Methods("GET")
	protected.HandleFunc("/bounty/refresh", bountyHandler.Refresh).Methods("POST")

	protected.HandleFunc("/rewards", rewardHandler.CreateReward).Methods("POST")
	protected.HandleFunc("/rewards", rewardHandler.ListRewards).Methods("GET")
	protected.HandleFunc("/rewards/claims", rewardHandler.ListClaims).Methods("GET")
	protected.HandleFunc("/rewards/{id:[0-9]+}/claim", rewardHandler.ClaimReward).Methods("POST")

	protected.HandleFunc("/achievements", achievementHandler.ListAchievements).Methods("GET")
	protected.HandleFunc("/achievements", achievementHandler.CreateAchievement).Methods("POST")
	protected.HandleFunc("/achievements/mine", achievementHandler.ListMine).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
