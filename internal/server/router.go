// Package server assembles the HTTP routes.
package server

import (
	"net/http"

	"github.com/Dias221467/shadowmeet/internal/config"
	"github.com/Dias221467/shadowmeet/internal/handlers"
	"github.com/Dias221467/shadowmeet/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth   *handlers.AuthHandler
	OTP    *handlers.OTPHandler
	User   *handlers.UserHandler
	Friend *handlers.FriendHandler
	Chat   *handlers.ChatHandler
	Upload *handlers.UploadHandler
	Health http.HandlerFunc
}

// NewRouter mounts every route under /api except /healthz and wraps the
// result in CORS, request logging and panic recovery. rdb may be nil.
func NewRouter(cfg *config.Config, h Handlers, users middleware.UserLookup, rdb *redis.Client) http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", h.Health).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	auth := middleware.AuthMiddleware(cfg.JWTSecret, users)
	limited := middleware.RateLimit(cfg.RateLimit, rdb)

	// Auth routes
	api.HandleFunc("/auth/signup", h.Auth.SignupHandler).Methods("POST")
	api.HandleFunc("/auth/login", h.Auth.LoginHandler).Methods("POST")
	api.HandleFunc("/auth/logout", h.Auth.LogoutHandler).Methods("POST")
	api.Handle("/auth/forgot-password", limited(http.HandlerFunc(h.Auth.ForgotPasswordHandler))).Methods("POST")
	api.HandleFunc("/auth/reset-password", h.Auth.ResetPasswordHandler).Methods("POST")
	api.Handle("/auth/onboarding", auth(http.HandlerFunc(h.Auth.OnboardingHandler))).Methods("POST")
	api.Handle("/auth/me", auth(http.HandlerFunc(h.Auth.MeHandler))).Methods("GET")

	// One-time-code registration
	api.Handle("/send-otp", limited(http.HandlerFunc(h.OTP.SendOTPHandler))).Methods("POST")
	api.HandleFunc("/verify-otp-register", h.OTP.VerifyOTPRegisterHandler).Methods("POST")

	// Protected user routes. Literal paths are registered before /{id}.
	userRoutes := api.PathPrefix("/users").Subrouter()
	userRoutes.Use(auth)
	userRoutes.HandleFunc("", h.User.GetRecommendedUsersHandler).Methods("GET")
	userRoutes.HandleFunc("/me", h.User.GetMeHandler).Methods("GET")
	userRoutes.HandleFunc("/friends", h.User.GetFriendsHandler).Methods("GET")
	userRoutes.HandleFunc("/friend-request/{id}", h.Friend.SendFriendRequestHandler).Methods("POST")
	userRoutes.HandleFunc("/friend-request/{id}/accept", h.Friend.AcceptFriendRequestHandler).Methods("PUT")
	userRoutes.HandleFunc("/friend-requests", h.Friend.GetFriendRequestsHandler).Methods("GET")
	userRoutes.HandleFunc("/outgoing-friend-requests", h.Friend.GetOutgoingFriendRequestsHandler).Methods("GET")
	userRoutes.HandleFunc("/{id}", h.User.UpdateUserHandler).Methods("PUT")

	api.Handle("/upload/avatar", limited(http.HandlerFunc(h.Upload.UploadAvatarHandler))).Methods("POST")
	api.Handle("/chat/token", auth(http.HandlerFunc(h.Chat.TokenHandler))).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.ClientURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Access-Token", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: true,
	})

	return middleware.RecoverMiddleware(middleware.LoggingMiddleware(c.Handler(router)))
}
