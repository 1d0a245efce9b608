package routes

import (
	"codeduel_server/controllers"
	"codeduel_server/middleware"
	"codeduel_server/services"

	"github.com/gorilla/mux"
)

// RegisterWalletRoutes sets up routes for wallet operations under /api/wallet
func RegisterWalletRoutes(r *mux.Router, wallet *services.WalletService) {
	controller := controllers.NewWalletController(wallet)

	walletRouter := r.PathPrefix("/api/wallet").Subrouter()
	walletRouter.HandleFunc("/balance", middleware.RequireAuth(controller.GetBalance)).Methods("GET")
	walletRouter.HandleFunc("/update", middleware.RequireAuth(controller.UpdateBalance)).Methods("PUT")
	walletRouter.HandleFunc("/transactions", middleware.RequireAuth(controller.GetTransactions)).Methods("GET")
}
