package repository

import (
	"strings"
	"sync"

	"catalog_service/internal/domain"
)

// InMemoryProductRepository is an in-memory implementation of
// domain.ProductRepository. It backs the usecase and handler tests and honors
// the same list semantics as the Postgres repository.
type InMemoryProductRepository struct {
	mu        sync.Mutex
	products  []domain.Product
	nextID    int
	rawOffset bool
}

func NewInMemoryProductRepository(rawPageOffset bool) *InMemoryProductRepository {
	return &InMemoryProductRepository{
		products:  []domain.Product{},
		nextID:    1,
		rawOffset: rawPageOffset,
	}
}

func (r *InMemoryProductRepository) CreateProduct(product *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product.ID = r.nextID
	r.nextID++
	r.products = append(r.products, *product)
	return product, nil
}

func (r *InMemoryProductRepository) GetProductByID(id int) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.products {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (r *InMemoryProductRepository) ListProducts(titleFilter string, page, limitPerPage int) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	filtered := []domain.Product{}
	for _, p := range r.products {
		if titleFilter != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(titleFilter)) {
			continue
		}
		filtered = append(filtered, p)
	}

	start := offsetFor(page, limitPerPage, r.rawOffset)
	if start > len(filtered) {
		return []domain.Product{}, nil
	}
	end := start + limitPerPage
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], nil
}

func (r *InMemoryProductRepository) UpdateProduct(product *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.products {
		if p.ID == product.ID {
			r.products[i] = *product
			updated := *product
			return &updated, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (r *InMemoryProductRepository) DeleteProduct(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.products {
		if p.ID == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return nil
		}
	}
	return domain.ErrProductNotFound
}
