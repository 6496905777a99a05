package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"torqbay/internal/caching"
	"torqbay/internal/catalog"
	"torqbay/internal/common"
	"torqbay/internal/models"
	"torqbay/internal/repositories"
)

const productImageBucket = "torqbay-product-images"

// ProductServiceInterface covers storefront reads and admin catalog writes.
type ProductServiceInterface interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	// ListProducts expands a category filter to all descendant slugs, so
	// browsing "seat-covers" also surfaces bucket-fit leatherette products.
	ListProducts(ctx context.Context, categorySlug string, filter *models.ProductSearchFilter) ([]*models.Product, error)
	UploadProductImage(ctx context.Context, productID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (string, error)
}

type productService struct {
	productRepo repositories.ProductRepository
	index       *catalog.Index
	mediaSvc    MediaService
	cacheSvc    caching.CacheService
}

// NewProductService creates a new product service instance
func NewProductService(productRepo repositories.ProductRepository, index *catalog.Index, mediaSvc MediaService, cacheSvc caching.CacheService) ProductServiceInterface {
	return &productService{
		productRepo: productRepo,
		index:       index,
		mediaSvc:    mediaSvc,
		cacheSvc:    cacheSvc,
	}
}

// normalizeLineage backfills sub/sub-sub category fields from the tree when a
// product was classified with a single slug at any depth (legacy records
// stored only one flat category value).
func (s *productService) normalizeLineage(product *models.Product) error {
	slug := product.Category
	if product.SubSubCategory != nil {
		slug = *product.SubSubCategory
	} else if product.SubCategory != nil {
		slug = *product.SubCategory
	}

	lineage, ok := s.index.GetLineage(slug)
	if !ok {
		return fmt.Errorf("%w: unknown category %q", common.ErrInvalidInput, slug)
	}
	product.Category = lineage.Category
	product.SubCategory = lineage.SubCategory
	product.SubSubCategory = lineage.SubSubCategory
	return nil
}

func (s *productService) validate(product *models.Product) error {
	if err := common.ValidateRequiredString(product.Name, "name"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	if err := common.ValidateRequiredString(product.Slug, "slug"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	if err := common.ValidatePositiveFloat(product.Price, "price", 10_000_000); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	if product.DiscountPrice != nil {
		if err := common.ValidatePositiveFloat(*product.DiscountPrice, "discount price", 10_000_000); err != nil {
			return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
		}
	}
	if product.Stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", common.ErrInvalidInput)
	}
	if ov := product.Installation; ov != nil {
		if ov.FlatRate != nil && *ov.FlatRate < 0 {
			return fmt.Errorf("%w: flat rate cannot be negative", common.ErrInvalidInput)
		}
		for segment, rate := range ov.SegmentRates {
			if !models.ValidSegment(segment) {
				return fmt.Errorf("%w: unknown segment %q", common.ErrInvalidInput, segment)
			}
			if rate < 0 {
				return fmt.Errorf("%w: rate for %s cannot be negative", common.ErrInvalidInput, segment)
			}
		}
	}
	return nil
}

func (s *productService) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := s.validate(product); err != nil {
		return err
	}
	if err := s.normalizeLineage(product); err != nil {
		return err
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if existing, err := s.productRepo.GetBySlug(ctx, product.Slug); err != nil {
		return fmt.Errorf("failed to check slug: %w", err)
	} else if existing != nil {
		return fmt.Errorf("%w: slug %q already in use", common.ErrInvalidInput, product.Slug)
	}
	return s.productRepo.Create(ctx, product)
}

func (s *productService) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.cacheSvc != nil {
		if product, err := s.cacheSvc.GetProduct(ctx, id); err == nil && product != nil {
			return product, nil
		}
	}
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product != nil && s.cacheSvc != nil {
		if cacheErr := s.cacheSvc.SetProduct(ctx, product, 5*time.Minute); cacheErr != nil {
			log.Printf("WARN: failed to cache product %s: %v", id, cacheErr)
		}
	}
	return product, nil
}

func (s *productService) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return s.productRepo.GetBySlug(ctx, slug)
}

func (s *productService) UpdateProduct(ctx context.Context, product *models.Product) error {
	if err := s.validate(product); err != nil {
		return err
	}
	if err := s.normalizeLineage(product); err != nil {
		return err
	}

	existing, err := s.productRepo.GetByID(ctx, product.ID)
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}
	if existing == nil {
		return common.ErrProductNotFound
	}
	product.CreatedAt = existing.CreatedAt

	if err := s.productRepo.Update(ctx, product); err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	s.invalidate(ctx, product.ID)
	return nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *productService) ListProducts(ctx context.Context, categorySlug string, filter *models.ProductSearchFilter) ([]*models.Product, error) {
	if filter == nil {
		filter = &models.ProductSearchFilter{}
	}
	var err error
	filter.Limit, filter.Offset, err = common.ValidatePaginationParams(filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	if filter.Query != "" {
		filter.Query = common.SanitizeSearchQuery(filter.Query)
	}

	if categorySlug != "" {
		slugs := s.index.AllChildSlugs(categorySlug)
		if len(slugs) == 0 {
			// Unknown slug means no match, not an error.
			return []*models.Product{}, nil
		}
		filter.CategorySlugs = slugs
	}
	return s.productRepo.List(ctx, filter)
}

func (s *productService) UploadProductImage(ctx context.Context, productID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return "", fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return "", common.ErrProductNotFound
	}

	objectName := fmt.Sprintf("%s/%s", productID, filename)
	if err := s.mediaSvc.EnsureBucketExists(ctx, productImageBucket); err != nil {
		return "", fmt.Errorf("failed to ensure bucket: %w", err)
	}
	if err := s.mediaSvc.UploadImage(ctx, productImageBucket, objectName, reader, size, contentType); err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	url, err := s.mediaSvc.GetPresignedURL(productImageBucket, objectName, 7*24*time.Hour)
	if err != nil {
		return "", fmt.Errorf("failed to sign image url: %w", err)
	}

	product.Images = append(product.Images, objectName)
	if err := s.productRepo.Update(ctx, product); err != nil {
		return "", fmt.Errorf("failed to attach image: %w", err)
	}
	s.invalidate(ctx, productID)
	return url, nil
}

func (s *productService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cacheSvc == nil {
		return
	}
	if err := s.cacheSvc.DeleteProduct(ctx, id); err != nil {
		log.Printf("WARN: failed to invalidate product cache %s: %v", id, err)
	}
}
