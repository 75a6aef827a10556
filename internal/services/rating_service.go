package services

import (
	"database/sql"
	"fmt"

	"marketplace/internal/models"

	"github.com/rs/zerolog"
)

type RatingService struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewRatingService(db *sql.DB, logger zerolog.Logger) *RatingService {
	return &RatingService{
		db:     db,
		logger: logger,
	}
}

// Rate records that the user rated the product. The unique index on
// (user_id, product_id) is what actually enforces one rating per pair;
// a duplicate insert, concurrent or not, comes back as ErrAlreadyRated.
func (s *RatingService) Rate(userID, productID int) (*models.Rating, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}

	var existingID int
	err := s.db.QueryRow("SELECT id FROM products WHERE id = ?", productID).Scan(&existingID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Int("product_id", productID).Msg("Error checking product")
		return nil, fmt.Errorf("database error: %w", err)
	}

	result, err := s.db.Exec(
		"INSERT INTO ratings (user_id, product_id) VALUES (?, ?)",
		userID, productID,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return nil, ErrAlreadyRated
		}
		s.logger.Error().Err(err).Int("user_id", userID).Int("product_id", productID).Msg("Error creating rating")
		return nil, fmt.Errorf("failed to create rating: %w", err)
	}

	ratingID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get rating ID: %w", err)
	}

	s.logger.Info().Int("user_id", userID).Int("product_id", productID).Msg("Product rated")

	return &models.Rating{
		ID:        int(ratingID),
		UserID:    userID,
		ProductID: productID,
	}, nil
}

// HasRated drives UI state only; it is not an enforcement point.
func (s *RatingService) HasRated(userID, productID int) (bool, error) {
	if userID == 0 {
		return false, nil
	}

	var id int
	err := s.db.QueryRow(
		"SELECT id FROM ratings WHERE user_id = ? AND product_id = ?",
		userID, productID,
	).Scan(&id)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Error checking rating")
		return false, fmt.Errorf("database error: %w", err)
	}

	return true, nil
}

func (s *RatingService) CountForProduct(productID int) (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM ratings WHERE product_id = ?", productID).Scan(&count)
	if err != nil {
		s.logger.Error().Err(err).Int("product_id", productID).Msg("Error counting ratings")
		return 0, fmt.Errorf("database error: %w", err)
	}
	return count, nil
}

// CountsByProduct returns rating counts keyed by product ID in one query,
// for building the ranked listing.
func (s *RatingService) CountsByProduct() (map[int]int, error) {
	rows, err := s.db.Query("SELECT product_id, COUNT(*) FROM ratings GROUP BY product_id")
	if err != nil {
		s.logger.Error().Err(err).Msg("Error counting ratings")
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var productID, count int
		if err := rows.Scan(&productID, &count); err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		counts[productID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	return counts, nil
}
