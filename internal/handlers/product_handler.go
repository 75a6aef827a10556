package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"marketplace/internal/assets"
	"marketplace/internal/middleware"
	"marketplace/internal/models"
	"marketplace/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// maxUploadBytes caps the in-memory portion of a multipart upload.
const maxUploadBytes = 10 << 20

type ProductHandler struct {
	productService *services.ProductService
	ratingService  *services.RatingService
	logger         zerolog.Logger
}

func NewProductHandler(db *sql.DB, store *assets.Store, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		productService: services.NewProductService(db, store, logger),
		ratingService:  services.NewRatingService(db, logger),
		logger:         logger,
	}
}

// List returns every listing ranked by rating count, most popular first.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.ListAll()
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	counts, err := h.ratingService.CountsByProduct()
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, services.BuildRanking(products, counts))
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithServiceError(w, services.ErrUnauthenticated)
		return
	}

	form, imageName, imageData, err := parseProductForm(r)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	product, err := h.productService.Create(userID, form, imageName, imageData)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r)
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "invalid_product_id", "Invalid product ID")
		return
	}

	product, err := h.productService.GetByID(productID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	count, err := h.ratingService.CountForProduct(productID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	// Anonymous viewers simply get has_rated=false.
	userID, _ := middleware.GetUserID(r)
	hasRated, err := h.ratingService.HasRated(userID, productID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, models.ProductDetail{
		Product:     product,
		RatingCount: count,
		HasRated:    hasRated,
	})
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithServiceError(w, services.ErrUnauthenticated)
		return
	}

	productID, err := pathID(r)
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "invalid_product_id", "Invalid product ID")
		return
	}

	form, imageName, imageData, err := parseProductForm(r)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	product, err := h.productService.Update(productID, userID, form, imageName, imageData)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithServiceError(w, services.ErrUnauthenticated)
		return
	}

	productID, err := pathID(r)
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "invalid_product_id", "Invalid product ID")
		return
	}

	if err := h.productService.Delete(productID, userID); err != nil {
		respondWithServiceError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Product deleted",
	})
}

func (h *ProductHandler) Rate(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)

	productID, err := pathID(r)
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "invalid_product_id", "Invalid product ID")
		return
	}

	rating, err := h.ratingService.Rate(userID, productID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, rating)
}

func pathID(r *http.Request) (int, error) {
	return strconv.Atoi(mux.Vars(r)["id"])
}

// parseProductForm reads the multipart listing form. A missing image part
// yields empty bytes; whether that is acceptable depends on the operation,
// so the services decide.
func parseProductForm(r *http.Request) (*models.ProductForm, string, []byte, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, "", nil, fmt.Errorf("%w: expected multipart form data", services.ErrValidation)
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil {
		return nil, "", nil, fmt.Errorf("%w: price must be a number", services.ErrValidation)
	}

	stock, err := strconv.Atoi(r.FormValue("stock"))
	if err != nil {
		return nil, "", nil, fmt.Errorf("%w: stock must be an integer", services.ErrValidation)
	}

	form := &models.ProductForm{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       price,
		Stock:       stock,
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return form, "", nil, nil
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", nil, fmt.Errorf("%w: could not read image upload", services.ErrValidation)
	}

	return form, header.Filename, data, nil
}

func (h *ProductHandler) respondWithError(w http.ResponseWriter, code int, errorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

func (h *ProductHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
