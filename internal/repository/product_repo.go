package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"catalog_service/internal/domain"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type postgresProductRepository struct {
	db        *sql.DB
	log       *logrus.Logger
	rawOffset bool
}

// NewPostgresProductRepository returns the Postgres-backed repository.
// rawPageOffset selects the historical offset-by-page-number pagination
// instead of page*limit.
func NewPostgresProductRepository(db *sql.DB, logger *logrus.Logger, rawPageOffset bool) domain.ProductRepository {
	return &postgresProductRepository{
		db:        db,
		log:       logger,
		rawOffset: rawPageOffset,
	}
}

// offsetFor converts a page number into a row offset.
func offsetFor(page, limitPerPage int, rawPageOffset bool) int {
	if rawPageOffset {
		return page
	}
	return page * limitPerPage
}

func (r *postgresProductRepository) CreateProduct(product *domain.Product) (*domain.Product, error) {
	query := `
        INSERT INTO products (title, image, seller_full_name, price, rating)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id`

	err := r.db.QueryRow(query, product.Title, product.Image, product.SellerFullName, product.Price, product.Rating).Scan(&product.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23514" {
			r.log.Warnf("Check constraint violation for product '%s': %s", product.Title, pqErr.Message)
			return nil, fmt.Errorf("product data constraint violation: %s", pqErr.Message)
		}
		r.log.Errorf("Failed to create product '%s': %v", product.Title, err)
		return nil, fmt.Errorf("could not create product: %w", err)
	}
	r.log.Infof("Product created successfully with ID: %d, Title: %s", product.ID, product.Title)
	return product, nil
}

func (r *postgresProductRepository) GetProductByID(id int) (*domain.Product, error) {
	query := `
        SELECT id, title, image, seller_full_name, price, rating
        FROM products
        WHERE id = $1`
	product := &domain.Product{}

	err := r.db.QueryRow(query, id).Scan(
		&product.ID,
		&product.Title,
		&product.Image,
		&product.SellerFullName,
		&product.Price,
		&product.Rating,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Product with ID %d not found", id)
			return nil, domain.ErrProductNotFound
		}
		r.log.Errorf("Failed to get product by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not get product by id: %w", err)
	}

	return product, nil
}

func (r *postgresProductRepository) ListProducts(titleFilter string, page, limitPerPage int) ([]domain.Product, error) {
	query := `
        SELECT id, title, image, seller_full_name, price, rating
        FROM products`
	args := []interface{}{}

	if titleFilter != "" {
		query += ` WHERE LOWER(title) LIKE '%' || LOWER($1) || '%'`
		args = append(args, titleFilter)
	}
	query += fmt.Sprintf(` ORDER BY id ASC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limitPerPage, offsetFor(page, limitPerPage, r.rawOffset))

	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.log.Errorf("Failed to list products (title %q, page %d, limit %d): %v", titleFilter, page, limitPerPage, err)
		return nil, fmt.Errorf("could not list products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(&product.ID, &product.Title, &product.Image, &product.SellerFullName, &product.Price, &product.Rating); err != nil {
			r.log.Errorf("Failed to scan product row: %v", err)
			return nil, fmt.Errorf("error scanning product data: %w", err)
		}
		products = append(products, product)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during products list iteration: %v", err)
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	r.log.Infof("Retrieved %d products (title: %q, page: %d, limit: %d)", len(products), titleFilter, page, limitPerPage)
	return products, nil
}

func (r *postgresProductRepository) UpdateProduct(product *domain.Product) (*domain.Product, error) {
	query := `
        UPDATE products
        SET title = $1, image = $2, seller_full_name = $3, price = $4, rating = $5
        WHERE id = $6`

	result, err := r.db.Exec(query, product.Title, product.Image, product.SellerFullName, product.Price, product.Rating, product.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23514" {
			r.log.Warnf("Check constraint violation for product update ID %d: %s", product.ID, pqErr.Message)
			return nil, fmt.Errorf("product data constraint violation: %s", pqErr.Message)
		}
		r.log.Errorf("Failed to update product ID %d: %v", product.ID, err)
		return nil, fmt.Errorf("could not update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Failed to get rows affected after updating product ID %d: %v", product.ID, err)
		return nil, fmt.Errorf("could not confirm product update: %w", err)
	}
	if rowsAffected == 0 {
		r.log.Warnf("Product with ID %d not found for update (0 rows affected)", product.ID)
		return nil, domain.ErrProductNotFound
	}

	r.log.Infof("Product updated successfully with ID: %d", product.ID)
	return r.GetProductByID(product.ID)
}

func (r *postgresProductRepository) DeleteProduct(id int) error {
	query := `DELETE FROM products WHERE id = $1`
	result, err := r.db.Exec(query, id)
	if err != nil {
		r.log.Errorf("Failed to delete product ID %d: %v", id, err)
		return fmt.Errorf("could not delete product: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Failed to get rows affected after deleting product ID %d: %v", id, err)
		return fmt.Errorf("could not confirm product deletion: %w", err)
	}
	if rowsAffected == 0 {
		r.log.Warnf("Attempted to delete non-existent product ID %d", id)
		return domain.ErrProductNotFound
	}
	r.log.Infof("Product deleted successfully with ID: %d", id)
	return nil
}
