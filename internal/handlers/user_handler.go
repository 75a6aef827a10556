package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"marketplace/internal/assets"
	"marketplace/internal/models"
	"marketplace/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type UserHandler struct {
	userService    *services.UserService
	productService *services.ProductService
	logger         zerolog.Logger
}

func NewUserHandler(db *sql.DB, store *assets.Store, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		userService:    services.NewUserService(db, logger),
		productService: services.NewProductService(db, store, logger),
		logger:         logger,
	}
}

// GetUser serves the public profile of any user: username, contact handle
// and their listings. Email and password hash stay private.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "invalid_user_id", "Invalid user ID")
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	products, err := h.productService.ListByOwner(userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if products == nil {
		products = []*models.Product{}
	}

	h.respondWithJSON(w, http.StatusOK, models.PublicProfile{
		ID:       user.ID,
		Username: user.Username,
		Whatsapp: user.Whatsapp,
		Products: products,
	})
}

func (h *UserHandler) respondWithError(w http.ResponseWriter, code int, errorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

func (h *UserHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
