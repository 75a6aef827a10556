package models

import "time"

// Rating records that a user rated a product. It carries no score; the
// (user, product) pair is unique and the fact itself is the signal.
type Rating struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	ProductID int       `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}
