package models

import "time"

type Product struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Image       string    `json:"image"`
	OwnerID     int       `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProductForm carries the user-editable fields of a listing; the image
// travels separately as raw bytes.
type ProductForm struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

// RankedProduct pairs a listing with its rating count for the front page.
type RankedProduct struct {
	Product     *Product `json:"product"`
	RatingCount int      `json:"rating_count"`
}

type ProductDetail struct {
	Product     *Product `json:"product"`
	RatingCount int      `json:"rating_count"`
	HasRated    bool     `json:"has_rated"`
}
