package domain

import (
	"errors"
	"io"
)

var (
	// ErrProductNotFound is returned when no product exists for a given id.
	ErrProductNotFound = errors.New("product not found")
	// ErrEmptyImage is returned when a product is created with a zero-length
	// image file.
	ErrEmptyImage = errors.New("image file is empty")
)

// ImageFile carries an uploaded image into the usecase layer without tying it
// to the HTTP transport. Size is the byte length reported by the upload.
type ImageFile struct {
	Filename string
	Size     int64
	Content  io.Reader
}

type ProductRepository interface {
	CreateProduct(product *Product) (*Product, error)
	GetProductByID(id int) (*Product, error)
	ListProducts(titleFilter string, page, limitPerPage int) ([]Product, error)
	UpdateProduct(product *Product) (*Product, error)
	DeleteProduct(id int) error
}

// FileStore persists uploaded binary content under a root directory and
// deletes by the path it returned. Delete is idempotent: removing an absent
// file is not an error.
type FileStore interface {
	Save(content io.Reader, originalFilename, subfolder string) (string, error)
	Delete(path string) error
}
