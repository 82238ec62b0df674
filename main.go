package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"alumniConnectAPI/handlers"
	"alumniConnectAPI/internal/docstore"
	"alumniConnectAPI/middleware"
	"alumniConnectAPI/services"

	_ "net/http/pprof"
)

var (
	store                 *docstore.FirestoreStore
	gamificationService   *services.GamificationService
	streakService         *services.StreakService
	questService          *services.QuestService
	challengeService      *services.ChallengeService
	connectionService     *services.ConnectionService
	recommendationService *services.RecommendationService
	eventService          *services.EventService
	jobService            *services.JobService
	skillGapService       *services.SkillGapService
	analyticsService      *services.AnalyticsService
	shadowingService      *services.ShadowingService
	userService           *services.UserService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	store, err = docstore.NewFirestoreStore(ctx, "./serviceAccountKey.json")
	if err != nil {
		log.Fatal("Failed to initialize Firestore:", err)
	}
	log.Println("Successfully connected to Firestore")

	analyticsCap, _ := strconv.Atoi(os.Getenv("ANALYTICS_FETCH_CAP"))

	gamificationService = services.NewGamificationService(store)
	streakService = services.NewStreakService(store, gamificationService)
	questService = services.NewQuestService(store, gamificationService)
	challengeService = services.NewChallengeService(store, gamificationService)
	connectionService = services.NewConnectionService(store, gamificationService)
	recommendationService = services.NewRecommendationService(store)
	eventService = services.NewEventService(store, gamificationService, challengeService, recommendationService)
	jobService = services.NewJobService(store)
	skillGapService = services.NewSkillGapService(store)
	analyticsService = services.NewAnalyticsService(store, analyticsCap)
	shadowingService = services.NewShadowingService(store, gamificationService)
	userService = services.NewUserService(store, gamificationService, questService)

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing Firestore client...")
		if err := store.Close(); err != nil {
			log.Printf("Firestore close error: %v", err)
		}
	}()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	gamificationHandler := handlers.NewGamificationHandler(gamificationService, streakService, userService)
	connectionHandler := handlers.NewConnectionHandler(connectionService)
	eventHandler := handlers.NewEventHandler(eventService, recommendationService)
	jobHandler := handlers.NewJobHandler(jobService, skillGapService)
	challengeHandler := handlers.NewChallengeHandler(challengeService, questService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	shadowingHandler := handlers.NewShadowingHandler(shadowingService)

	r := mux.NewRouter()

	// The SSE stream bypasses the monitoring wrapper, which does not expose
	// http.Flusher.
	r.Handle("/api/v1/connections/pending/stream",
		middleware.ClerkAuthMiddleware(http.HandlerFunc(connectionHandler.StreamPending))).Methods("GET")

	standardRouter := r.PathPrefix("/").Subrouter()

	go middleware.CleanupVisitors()

	standardRouter.Use(middleware.RateLimitMiddleware)
	standardRouter.Use(middleware.MonitorMiddleware)

	standardRouter.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	standardRouter.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	standardRouter.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "alumniConnect-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := standardRouter.PathPrefix("/api/v1").Subrouter()

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/users/me", userHandler.GetMe).Methods("GET")
	protected.HandleFunc("/users/me", userHandler.UpdateMe).Methods("PUT")
	protected.HandleFunc("/users/me/completion", userHandler.GetProfileCompletion).Methods("GET")
	protected.HandleFunc("/users", userHandler.SearchUsers).Methods("GET")
	protected.HandleFunc("/users/{id}", userHandler.GetUser).Methods("GET")

	protected.HandleFunc("/gamification/stats", gamificationHandler.GetStats).Methods("GET")
	protected.HandleFunc("/gamification/award", gamificationHandler.AwardPoints).Methods("POST")
	protected.HandleFunc("/gamification/history", gamificationHandler.GetPointsHistory).Methods("GET")
	protected.HandleFunc("/gamification/leaderboard", gamificationHandler.GetLeaderboard).Methods("GET")
	protected.HandleFunc("/gamification/login", gamificationHandler.RecordLogin).Methods("POST")
	protected.HandleFunc("/gamification/streak", gamificationHandler.GetStreak).Methods("GET")

	protected.HandleFunc("/connections", connectionHandler.SendRequest).Methods("POST")
	protected.HandleFunc("/connections", connectionHandler.List).Methods("GET")
	protected.HandleFunc("/connections/pending", connectionHandler.ListPending).Methods("GET")
	protected.HandleFunc("/connections/suggestions", connectionHandler.Suggestions).Methods("GET")
	protected.HandleFunc("/connections/{id}/respond", connectionHandler.Respond).Methods("POST")
	protected.HandleFunc("/connections/{id}", connectionHandler.Remove).Methods("DELETE")

	protected.HandleFunc("/events", eventHandler.Create).Methods("POST")
	protected.HandleFunc("/events", eventHandler.List).Methods("GET")
	protected.HandleFunc("/events/recommendations", eventHandler.Recommendations).Methods("GET")
	protected.HandleFunc("/events/recommendations/refresh", eventHandler.RefreshRecommendations).Methods("POST")
	protected.HandleFunc("/events/{id}", eventHandler.Get).Methods("GET")
	protected.HandleFunc("/events/{id}/rsvp", eventHandler.RSVP).Methods("POST")
	protected.HandleFunc("/events/{id}/attend", eventHandler.Attend).Methods("POST")
	protected.HandleFunc("/events/{id}/view", eventHandler.View).Methods("POST")
	protected.HandleFunc("/events/{id}/interest", eventHandler.Interest).Methods("POST")
	protected.HandleFunc("/events/{id}/rate", eventHandler.Rate).Methods("POST")

	protected.HandleFunc("/jobs", jobHandler.Create).Methods("POST")
	protected.HandleFunc("/jobs", jobHandler.List).Methods("GET")
	protected.HandleFunc("/jobs/skill-gap", jobHandler.AnalyzeAll).Methods("GET")
	protected.HandleFunc("/jobs/{id}", jobHandler.Get).Methods("GET")
	protected.HandleFunc("/jobs/{id}", jobHandler.Delete).Methods("DELETE")
	protected.HandleFunc("/jobs/{id}/skill-gap", jobHandler.AnalyzeJob).Methods("GET")

	protected.HandleFunc("/challenges", challengeHandler.CreateChallenge).Methods("POST")
	protected.HandleFunc("/challenges", challengeHandler.ListChallenges).Methods("GET")
	protected.HandleFunc("/challenges/progress", challengeHandler.RecordAction).Methods("POST")
	protected.HandleFunc("/quests", challengeHandler.ListQuests).Methods("GET")
	protected.HandleFunc("/quests/evaluate", challengeHandler.EvaluateQuests).Methods("POST")
	protected.HandleFunc("/quests/page-visit", challengeHandler.RecordPageVisit).Methods("POST")

	protected.HandleFunc("/analytics", analyticsHandler.GetPlatformAnalytics).Methods("GET")
	protected.HandleFunc("/analytics/heatmap", analyticsHandler.GetHeatmap).Methods("GET")

	protected.HandleFunc("/shadowing/opportunities", shadowingHandler.CreateOpportunity).Methods("POST")
	protected.HandleFunc("/shadowing/opportunities", shadowingHandler.ListOpportunities).Methods("GET")
	protected.HandleFunc("/shadowing/opportunities/{id}/book", shadowingHandler.Book).Methods("POST")
	protected.HandleFunc("/shadowing/bookings", shadowingHandler.ListBookings).Methods("GET")
	protected.HandleFunc("/shadowing/bookings/{id}/confirm", shadowingHandler.Confirm).Methods("POST")
	protected.HandleFunc("/shadowing/bookings/{id}/cancel", shadowingHandler.Cancel).Methods("POST")
	protected.HandleFunc("/shadowing/bookings/{id}/complete", shadowingHandler.Complete).Methods("POST")
	protected.HandleFunc("/shadowing/bookings/{id}/feedback", shadowingHandler.Feedback).Methods("POST")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		// No write deadline: the pending-request SSE stream holds its
		// response open indefinitely.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
