package routes

import (
	"codeduel_server/controllers"
	"codeduel_server/middleware"
	"codeduel_server/services"

	"github.com/gorilla/mux"
)

// RegisterCompetitionRoutes sets up routes for competition operations under /api/competition
func RegisterCompetitionRoutes(r *mux.Router, matches *services.MatchService, challenges *services.ChallengeService, judge *services.JudgeService, rewards *services.RewardService) {
	controller := controllers.NewCompetitionController(matches, challenges, judge, rewards)

	competitionRouter := r.PathPrefix("/api/competition").Subrouter()

	competitionRouter.HandleFunc("/start", middleware.RequireAuth(controller.StartCompetition)).Methods("POST")
	competitionRouter.HandleFunc("/run", middleware.RequireAuth(controller.RunCode)).Methods("POST")
	competitionRouter.HandleFunc("/submit", middleware.RequireAuth(controller.SubmitCode)).Methods("POST")
	competitionRouter.HandleFunc("/challenge/{matchId}", middleware.RequireAuth(controller.GetChallenge)).Methods("GET")
	competitionRouter.HandleFunc("/{matchId}/settle", middleware.RequireAuth(controller.SettleMatch)).Methods("POST")
}
