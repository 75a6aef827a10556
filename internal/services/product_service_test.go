package services

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"marketplace/internal/assets"
	"marketplace/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	selectProductByID = "SELECT id, name, description, price, stock, image, owner_id, created_at FROM products WHERE id = ?"
	selectOwned       = "SELECT id, name, description, price, stock, image, owner_id, created_at FROM products WHERE id = ? AND owner_id = ?"
	insertProduct     = "INSERT INTO products (name, description, price, stock, image, owner_id) VALUES (?, ?, ?, ?, ?, ?)"
	updateProduct     = "UPDATE products SET name = ?, description = ?, price = ?, stock = ?, image = ? WHERE id = ?"
	deleteProduct     = "DELETE FROM products WHERE id = ?"
)

func productColumns() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "description", "price", "stock", "image", "owner_id", "created_at"})
}

func newProductService(t *testing.T) (*ProductService, sqlmock.Sqlmock, *assets.Store) {
	t.Helper()
	db, mock := newMockDB(t)
	store, err := assets.NewStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	return NewProductService(db, store, zerolog.Nop()), mock, store
}

func storedFiles(t *testing.T, store *assets.Store) []string {
	t.Helper()
	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func validForm() *models.ProductForm {
	return &models.ProductForm{Name: "Widget", Description: "A widget", Price: 9.99, Stock: 5}
}

func TestCreateProduct(t *testing.T) {
	svc, mock, store := newProductService(t)

	mock.ExpectExec(regexp.QuoteMeta(insertProduct)).
		WithArgs("Widget", "A widget", 9.99, 5, sqlmock.AnyArg(), 1).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectProductByID)).
		WithArgs(3).
		WillReturnRows(productColumns().AddRow(3, "Widget", "A widget", 9.99, 5, "x_photo.jpg", 1, time.Now()))

	product, err := svc.Create(1, validForm(), "photo.jpg", []byte("image"))
	require.NoError(t, err)
	assert.Equal(t, 3, product.ID)
	assert.Equal(t, 1, product.OwnerID)

	// The asset landed on disk under a randomised name.
	files := storedFiles(t, store)
	require.Len(t, files, 1)
	assert.Contains(t, files[0], "_photo.jpg")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProductValidation(t *testing.T) {
	svc, _, store := newProductService(t)

	cases := []struct {
		name  string
		form  *models.ProductForm
		image []byte
	}{
		{"negative price", &models.ProductForm{Name: "W", Description: "d", Price: -1, Stock: 1}, []byte("i")},
		{"negative stock", &models.ProductForm{Name: "W", Description: "d", Price: 1, Stock: -1}, []byte("i")},
		{"missing name", &models.ProductForm{Description: "d", Price: 1, Stock: 1}, []byte("i")},
		{"empty image", validForm(), nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(1, tc.form, "photo.jpg", tc.image)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	// No rejected create may leave an asset behind.
	assert.Empty(t, storedFiles(t, store))
}

func TestCreateProductInsertFailureRemovesAsset(t *testing.T) {
	svc, mock, store := newProductService(t)

	mock.ExpectExec(regexp.QuoteMeta(insertProduct)).
		WillReturnError(errors.New("connection lost"))

	_, err := svc.Create(1, validForm(), "photo.jpg", []byte("image"))
	assert.Error(t, err)
	assert.Empty(t, storedFiles(t, store))
}

func TestGetByIDNotFound(t *testing.T) {
	svc, mock, _ := newProductService(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectProductByID)).
		WithArgs(42).
		WillReturnError(sql.ErrNoRows)

	_, err := svc.GetByID(42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateByNonOwnerMerged(t *testing.T) {
	svc, mock, _ := newProductService(t)

	// Whether the product is missing or just not theirs, the query comes
	// back empty and the caller sees the same error.
	mock.ExpectQuery(regexp.QuoteMeta(selectOwned)).
		WithArgs(3, 2).
		WillReturnError(sql.ErrNoRows)

	_, err := svc.Update(3, 2, validForm(), "", nil)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet(), "no mutation may happen after a failed ownership check")
}

func TestUpdateFieldsWithoutImage(t *testing.T) {
	svc, mock, _ := newProductService(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectOwned)).
		WithArgs(3, 1).
		WillReturnRows(productColumns().AddRow(3, "Old", "old", 1.0, 1, "keep.jpg", 1, time.Now()))
	mock.ExpectExec(regexp.QuoteMeta(updateProduct)).
		WithArgs("Widget", "A widget", 9.99, 5, "keep.jpg", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectProductByID)).
		WithArgs(3).
		WillReturnRows(productColumns().AddRow(3, "Widget", "A widget", 9.99, 5, "keep.jpg", 1, time.Now()))

	product, err := svc.Update(3, 1, validForm(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, "keep.jpg", product.Image)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateReplacesImage(t *testing.T) {
	svc, mock, store := newProductService(t)

	oldPath := filepath.Join(store.Dir(), "old.jpg")
	require.NoError(t, os.WriteFile(oldPath, []byte("old"), 0o644))

	mock.ExpectQuery(regexp.QuoteMeta(selectOwned)).
		WithArgs(3, 1).
		WillReturnRows(productColumns().AddRow(3, "Old", "old", 1.0, 1, "old.jpg", 1, time.Now()))
	mock.ExpectExec(regexp.QuoteMeta(updateProduct)).
		WithArgs("Widget", "A widget", 9.99, 5, sqlmock.AnyArg(), 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectProductByID)).
		WithArgs(3).
		WillReturnRows(productColumns().AddRow(3, "Widget", "A widget", 9.99, 5, "new.jpg", 1, time.Now()))

	_, err := svc.Update(3, 1, validForm(), "new.jpg", []byte("new image"))
	require.NoError(t, err)

	files := storedFiles(t, store)
	require.Len(t, files, 1)
	assert.Contains(t, files[0], "_new.jpg")
	_, err = os.Stat(oldPath)
	assert.True(t, os.IsNotExist(err), "old image should be gone")
}

func TestDeleteProduct(t *testing.T) {
	svc, mock, store := newProductService(t)

	imagePath := filepath.Join(store.Dir(), "img.jpg")
	require.NoError(t, os.WriteFile(imagePath, []byte("img"), 0o644))

	mock.ExpectQuery(regexp.QuoteMeta(selectOwned)).
		WithArgs(3, 1).
		WillReturnRows(productColumns().AddRow(3, "Widget", "d", 1.0, 1, "img.jpg", 1, time.Now()))
	mock.ExpectExec(regexp.QuoteMeta(deleteProduct)).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.Delete(3, 1))

	_, err := os.Stat(imagePath)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteToleratesMissingImage(t *testing.T) {
	svc, mock, _ := newProductService(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectOwned)).
		WithArgs(3, 1).
		WillReturnRows(productColumns().AddRow(3, "Widget", "d", 1.0, 1, "gone.jpg", 1, time.Now()))
	mock.ExpectExec(regexp.QuoteMeta(deleteProduct)).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, svc.Delete(3, 1))
}

func TestDeleteByNonOwnerMerged(t *testing.T) {
	svc, mock, _ := newProductService(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectOwned)).
		WithArgs(99, 2).
		WillReturnError(sql.ErrNoRows)

	err := svc.Delete(99, 2)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAll(t *testing.T) {
	svc, mock, _ := newProductService(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM products ORDER BY id")).
		WillReturnRows(productColumns().
			AddRow(1, "A", "d", 1.0, 1, "a.jpg", 1, time.Now()).
			AddRow(2, "B", "d", 2.0, 2, "b.jpg", 2, time.Now()))

	products, err := svc.ListAll()
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "A", products[0].Name)
}
