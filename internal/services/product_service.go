package services

import (
	"database/sql"
	"fmt"
	"strings"

	"marketplace/internal/assets"
	"marketplace/internal/models"

	"github.com/rs/zerolog"
)

type ProductService struct {
	db     *sql.DB
	assets *assets.Store
	logger zerolog.Logger
}

func NewProductService(db *sql.DB, store *assets.Store, logger zerolog.Logger) *ProductService {
	return &ProductService{
		db:     db,
		assets: store,
		logger: logger,
	}
}

func validateProductForm(form *models.ProductForm) error {
	if strings.TrimSpace(form.Name) == "" || strings.TrimSpace(form.Description) == "" {
		return fmt.Errorf("%w: name and description are required", ErrValidation)
	}
	if form.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if form.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrValidation)
	}
	return nil
}

func (s *ProductService) Create(ownerID int, form *models.ProductForm, imageName string, imageData []byte) (*models.Product, error) {
	if err := validateProductForm(form); err != nil {
		return nil, err
	}
	if len(imageData) == 0 {
		return nil, fmt.Errorf("%w: an image upload is required", ErrValidation)
	}

	filename, err := s.assets.Save(imageName, imageData)
	if err != nil {
		return nil, err
	}

	result, err := s.db.Exec(
		"INSERT INTO products (name, description, price, stock, image, owner_id) VALUES (?, ?, ?, ?, ?, ?)",
		form.Name, form.Description, form.Price, form.Stock, filename, ownerID,
	)
	if err != nil {
		// The asset was written first; drop it again so a failed insert does
		// not leave an orphaned file behind.
		if delErr := s.assets.Delete(filename); delErr != nil {
			s.logger.Warn().Err(delErr).Str("file", filename).Msg("Could not remove image after failed insert")
		}
		s.logger.Error().Err(err).Msg("Error creating product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	productID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get product ID: %w", err)
	}

	product, err := s.GetByID(int(productID))
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("product_id", product.ID).
		Int("owner_id", ownerID).
		Str("name", product.Name).
		Msg("Product created")

	return product, nil
}

func (s *ProductService) GetByID(productID int) (*models.Product, error) {
	return s.queryOne("SELECT id, name, description, price, stock, image, owner_id, created_at FROM products WHERE id = ?", productID)
}

// getOwned loads a product only if it belongs to the requester. Absent and
// not-owned deliberately produce the same ErrNotFound so existence is never
// revealed to non-owners.
func (s *ProductService) getOwned(productID, ownerID int) (*models.Product, error) {
	return s.queryOne("SELECT id, name, description, price, stock, image, owner_id, created_at FROM products WHERE id = ? AND owner_id = ?", productID, ownerID)
}

func (s *ProductService) queryOne(query string, args ...interface{}) (*models.Product, error) {
	var product models.Product
	err := s.db.QueryRow(query, args...).Scan(
		&product.ID, &product.Name, &product.Description, &product.Price,
		&product.Stock, &product.Image, &product.OwnerID, &product.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Error fetching product")
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &product, nil
}

// ListAll returns every listing in insertion order. Ranking is a separate
// concern; see RankProducts.
func (s *ProductService) ListAll() ([]*models.Product, error) {
	return s.queryMany("SELECT id, name, description, price, stock, image, owner_id, created_at FROM products ORDER BY id")
}

func (s *ProductService) ListByOwner(ownerID int) ([]*models.Product, error) {
	return s.queryMany("SELECT id, name, description, price, stock, image, owner_id, created_at FROM products WHERE owner_id = ? ORDER BY id", ownerID)
}

func (s *ProductService) queryMany(query string, args ...interface{}) ([]*models.Product, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error listing products")
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		var product models.Product
		err := rows.Scan(
			&product.ID, &product.Name, &product.Description, &product.Price,
			&product.Stock, &product.Image, &product.OwnerID, &product.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		products = append(products, &product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	return products, nil
}

func (s *ProductService) Update(productID, requesterID int, form *models.ProductForm, imageName string, imageData []byte) (*models.Product, error) {
	product, err := s.getOwned(productID, requesterID)
	if err != nil {
		return nil, err
	}

	if err := validateProductForm(form); err != nil {
		return nil, err
	}

	image := product.Image
	if len(imageData) > 0 {
		// Old asset goes first, replacement is written after; the reference
		// only moves once the new file exists.
		if err := s.assets.Delete(product.Image); err != nil {
			s.logger.Warn().Err(err).Str("file", product.Image).Msg("Could not remove old image")
		}

		image, err = s.assets.Save(imageName, imageData)
		if err != nil {
			return nil, err
		}
	}

	_, err = s.db.Exec(
		"UPDATE products SET name = ?, description = ?, price = ?, stock = ?, image = ? WHERE id = ?",
		form.Name, form.Description, form.Price, form.Stock, image, productID,
	)
	if err != nil {
		s.logger.Error().Err(err).Int("product_id", productID).Msg("Error updating product")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Info().Int("product_id", productID).Int("owner_id", requesterID).Msg("Product updated")
	return s.GetByID(productID)
}

func (s *ProductService) Delete(productID, requesterID int) error {
	product, err := s.getOwned(productID, requesterID)
	if err != nil {
		return err
	}

	// Best-effort asset removal; the file goes first, then the row.
	if err := s.assets.Delete(product.Image); err != nil {
		s.logger.Warn().Err(err).Str("file", product.Image).Msg("Could not remove image for deleted product")
	}

	_, err = s.db.Exec("DELETE FROM products WHERE id = ?", productID)
	if err != nil {
		s.logger.Error().Err(err).Int("product_id", productID).Msg("Error deleting product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.logger.Info().Int("product_id", productID).Int("owner_id", requesterID).Msg("Product deleted")
	return nil
}
