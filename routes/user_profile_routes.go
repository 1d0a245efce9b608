package routes

import (
	"codeduel_server/controllers"
	"codeduel_server/middleware"
	"codeduel_server/services"

	"github.com/gorilla/mux"
)

// RegisterUserProfileRoutes sets up routes for account operations under /api/auth and /api/user
func RegisterUserProfileRoutes(r *mux.Router, profiles *services.UserProfileService) {
	controller := controllers.NewUserProfileController(profiles)

	authRouter := r.PathPrefix("/api/auth").Subrouter()
	authRouter.HandleFunc("/register", controller.Register).Methods("POST")
	authRouter.HandleFunc("/login", controller.Login).Methods("POST")

	userRouter := r.PathPrefix("/api/user").Subrouter()
	userRouter.HandleFunc("/me", middleware.RequireAuth(controller.GetMe)).Methods("GET")
	userRouter.HandleFunc("/stats", middleware.RequireAuth(controller.GetStats)).Methods("GET")
}
