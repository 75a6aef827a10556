package router

import (
	"database/sql"
	"net/http"

	"marketplace/internal/assets"
	"marketplace/internal/handlers"
	"marketplace/internal/middleware"
	"marketplace/internal/services"
	"marketplace/internal/session"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

func SetupRouter(db *sql.DB, sessions *session.Registry, store *assets.Store, logger zerolog.Logger) *mux.Router {
	userService := services.NewUserService(db, logger)

	authHandler := handlers.NewAuthHandler(db, sessions, logger)
	productHandler := handlers.NewProductHandler(db, store, logger)
	userHandler := handlers.NewUserHandler(db, store, logger)

	r := mux.NewRouter()

	r.Use(middleware.ErrorHandling(logger))
	r.Use(middleware.PerformanceMonitoring(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	r.Use(middleware.Identity(sessions, userService, logger))

	api := r.PathPrefix("/api/v1").Subrouter()

	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", authHandler.Register).Methods("POST")
	auth.HandleFunc("/login", authHandler.Login).Methods("POST")
	auth.HandleFunc("/logout", authHandler.Logout).Methods("POST")

	products := api.PathPrefix("/products").Subrouter()
	products.HandleFunc("", productHandler.List).Methods("GET")
	products.HandleFunc("/{id}", productHandler.Get).Methods("GET")

	ownedProducts := api.PathPrefix("/products").Subrouter()
	ownedProducts.Use(middleware.RequireAuth())
	ownedProducts.HandleFunc("", productHandler.Create).Methods("POST")
	ownedProducts.HandleFunc("/{id}", productHandler.Update).Methods("PUT")
	ownedProducts.HandleFunc("/{id}", productHandler.Delete).Methods("DELETE")
	ownedProducts.HandleFunc("/{id}/rate", productHandler.Rate).Methods("POST")

	users := api.PathPrefix("/users").Subrouter()
	users.HandleFunc("/{id}", userHandler.GetUser).Methods("GET")

	// Stored product images are served straight off the asset directory.
	r.PathPrefix("/images/").Handler(
		http.StripPrefix("/images/", http.FileServer(http.Dir(store.Dir()))),
	).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return r
}
