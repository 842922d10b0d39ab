package usecase

import (
	"fmt"

	"catalog_service/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ImageUploadFolder is the subfolder under the upload root holding product
// images.
const ImageUploadFolder = "images"

type CreateProductInput struct {
	Title          string
	SellerFullName string
	Price          decimal.Decimal
	Rating         float64
	Image          domain.ImageFile
}

// UpdateProductInput carries the optional fields of a partial update. A nil
// field was not supplied by the caller.
type UpdateProductInput struct {
	Title          *string
	SellerFullName *string
	Price          *decimal.Decimal
	Rating         *float64
	Image          *domain.ImageFile
}

type ProductUseCase interface {
	ListProducts(titleFilter string, page, limitPerPage int) ([]domain.Product, error)
	GetProduct(id int) (*domain.Product, error)
	CreateProduct(in CreateProductInput) (*domain.Product, error)
	UpdateProduct(id int, in UpdateProductInput) (*domain.Product, error)
	DeleteProduct(id int) error
}

type productUseCase struct {
	repo  domain.ProductRepository
	files domain.FileStore
	log   *logrus.Logger
}

func NewProductUseCase(repo domain.ProductRepository, files domain.FileStore, logger *logrus.Logger) ProductUseCase {
	return &productUseCase{
		repo:  repo,
		files: files,
		log:   logger,
	}
}

func (uc *productUseCase) ListProducts(titleFilter string, page, limitPerPage int) ([]domain.Product, error) {
	products, err := uc.repo.ListProducts(titleFilter, page, limitPerPage)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list products: %v", err)
		return nil, fmt.Errorf("could not retrieve products: %w", err)
	}
	return products, nil
}

func (uc *productUseCase) GetProduct(id int) (*domain.Product, error) {
	product, err := uc.repo.GetProductByID(id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get product ID %d: %v", id, err)
		return nil, err
	}
	return product, nil
}

func (uc *productUseCase) CreateProduct(in CreateProductInput) (*domain.Product, error) {
	// Size is the only guard: the content type of the upload is deliberately
	// not inspected.
	if in.Image.Size == 0 {
		uc.log.Warnf("Use Case: Attempted to create product '%s' with an empty image file", in.Title)
		return nil, domain.ErrEmptyImage
	}

	imagePath, err := uc.files.Save(in.Image.Content, in.Image.Filename, ImageUploadFolder)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to store image for product '%s': %v", in.Title, err)
		return nil, fmt.Errorf("could not store product image: %w", err)
	}

	product := &domain.Product{
		Title:          in.Title,
		Image:          imagePath,
		SellerFullName: in.SellerFullName,
		Price:          in.Price,
		Rating:         in.Rating,
	}
	created, err := uc.repo.CreateProduct(product)
	if err != nil {
		// The row never made it in; remove the file written above so it does
		// not linger as an orphan.
		if delErr := uc.files.Delete(imagePath); delErr != nil {
			uc.log.Errorf("Use Case: Failed to remove orphaned image %s: %v", imagePath, delErr)
		}
		uc.log.Errorf("Use Case: Repository failed to create product '%s': %v", in.Title, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Product '%s' created successfully with ID %d", created.Title, created.ID)
	return created, nil
}

func (uc *productUseCase) UpdateProduct(id int, in UpdateProductInput) (*domain.Product, error) {
	product, err := uc.GetProduct(id)
	if err != nil {
		return nil, err
	}

	if in.Image != nil {
		// New file first, old file after, so a failed write never leaves the
		// product without an image on disk.
		oldPath := product.Image
		newPath, err := uc.files.Save(in.Image.Content, in.Image.Filename, ImageUploadFolder)
		if err != nil {
			uc.log.Errorf("Use Case: Failed to store replacement image for product ID %d: %v", id, err)
			return nil, fmt.Errorf("could not store product image: %w", err)
		}
		product.Image = newPath
		if err := uc.files.Delete(oldPath); err != nil {
			uc.log.Warnf("Use Case: Failed to delete previous image %s for product ID %d: %v", oldPath, id, err)
		}
	}

	// An empty string counts as "not provided": a PATCH cannot clear a field
	// to empty.
	if in.Title != nil && *in.Title != "" {
		product.Title = *in.Title
	}
	if in.SellerFullName != nil && *in.SellerFullName != "" {
		product.SellerFullName = *in.SellerFullName
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.Rating != nil {
		product.Rating = *in.Rating
	}

	updated, err := uc.repo.UpdateProduct(product)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to update product ID %d: %v", id, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Product updated successfully for ID %d", updated.ID)
	return updated, nil
}

func (uc *productUseCase) DeleteProduct(id int) error {
	product, err := uc.GetProduct(id)
	if err != nil {
		return err
	}

	// A dangling file reference is worse than a leftover file, so a failed
	// file delete stops the row delete.
	if err := uc.files.Delete(product.Image); err != nil {
		uc.log.Errorf("Use Case: Failed to delete image %s for product ID %d: %v", product.Image, id, err)
		return fmt.Errorf("could not delete product image: %w", err)
	}

	if err := uc.repo.DeleteProduct(id); err != nil {
		uc.log.Errorf("Use Case: Repository failed to delete product ID %d: %v", id, err)
		return err
	}

	uc.log.Infof("Use Case: Product deleted successfully for ID %d", id)
	return nil
}
