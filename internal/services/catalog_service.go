package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"retailops/internal/caching"
	"retailops/internal/models"
	"retailops/internal/repositories"

	"go.uber.org/zap"
)

const (
	productImageBucket = "product-images"
	catalogCacheTTL    = 15 * time.Minute
)

// CatalogService is the read and write surface over products,
// categories, and manufacturers. Product and category reads go through
// the cache; writes invalidate the affected entries.
type CatalogService interface {
	// Products
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProduct(ctx context.Context, prodNo int64) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, prodNo int64) error
	ListProducts(ctx context.Context, limit, offset int) ([]*models.Product, error)
	SearchProducts(ctx context.Context, filter *models.ProductSearchFilter) ([]*models.Product, error)
	PatchQuantities(ctx context.Context, patches []models.ProductQuantityPatch) error

	// Product images
	UploadProductImage(ctx context.Context, prodNo int64, filename string, reader io.Reader, size int64) error
	GetProductImageURL(ctx context.Context, prodNo int64, expiry time.Duration) (string, error)

	// Categories
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategory(ctx context.Context, cateNo string) (*models.Category, error)
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, cateNo string) error
	ListCategories(ctx context.Context, limit, offset int) ([]*models.Category, error)
	ListChildCategories(ctx context.Context, parentNo string) ([]*models.Category, error)

	// Manufacturers
	CreateManufacturer(ctx context.Context, mfr *models.Manufacturer) error
	GetManufacturer(ctx context.Context, id int64) (*models.Manufacturer, error)
	GetManufacturerByFullID(ctx context.Context, fullID string) (*models.Manufacturer, error)
	UpdateManufacturer(ctx context.Context, mfr *models.Manufacturer) error
	DeleteManufacturer(ctx context.Context, id int64) error
	ListManufacturers(ctx context.Context, limit, offset int) ([]*models.Manufacturer, error)
}

type catalogService struct {
	productRepo  repositories.ProductRepository
	categoryRepo repositories.CategoryRepository
	mfrRepo      repositories.ManufacturerRepository
	storage      StorageService
	cache        caching.CacheService
	logger       *zap.Logger
}

func NewCatalogService(productRepo repositories.ProductRepository, categoryRepo repositories.CategoryRepository,
	mfrRepo repositories.ManufacturerRepository, storage StorageService, cache caching.CacheService,
	logger *zap.Logger) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		mfrRepo:      mfrRepo,
		storage:      storage,
		cache:        cache,
		logger:       logger,
	}
}

func (s *catalogService) CreateProduct(ctx context.Context, product *models.Product) error {
	if product.ProdNo <= 0 {
		return errors.New("product number must be positive")
	}
	if product.Name == "" {
		return errors.New("product name is required")
	}
	if product.CostPrice < 0 {
		return errors.New("cost price cannot be negative")
	}
	if product.OuterQuantity < 0 || product.InnerQuantity < 0 {
		return errors.New("case quantities cannot be negative")
	}

	if err := models.ValidateCategoryCode(product.CategoryNo); err != nil {
		return err
	}
	category, err := s.categoryRepo.GetByNo(ctx, product.CategoryNo)
	if err != nil {
		return err
	}
	if category == nil {
		return fmt.Errorf("category %s not found", product.CategoryNo)
	}

	mfr, err := s.mfrRepo.GetByID(ctx, product.ManufacturerID)
	if err != nil {
		return err
	}
	if mfr == nil {
		return fmt.Errorf("manufacturer %d not found", product.ManufacturerID)
	}

	return s.productRepo.Create(ctx, product)
}

// GetProduct returns (nil, nil) when no product carries the number.
func (s *catalogService) GetProduct(ctx context.Context, prodNo int64) (*models.Product, error) {
	if cached, err := s.cache.GetProduct(ctx, prodNo); cached != nil {
		return cached, nil
	} else if err != nil {
		// Cache errors never fail the lookup.
		s.logger.Warn("product cache read failed", zap.Int64("prod_no", prodNo), zap.Error(err))
	}

	product, err := s.productRepo.GetByNo(ctx, prodNo)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}

	if cacheErr := s.cache.SetProduct(ctx, product, catalogCacheTTL); cacheErr != nil {
		s.logger.Warn("product cache write failed", zap.Int64("prod_no", prodNo), zap.Error(cacheErr))
	}
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, product *models.Product) error {
	existing, err := s.productRepo.GetByNo(ctx, product.ProdNo)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("product %d not found", product.ProdNo)
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return err
	}

	if cacheErr := s.cache.DeleteProduct(ctx, product.ProdNo); cacheErr != nil {
		s.logger.Warn("product cache invalidation failed", zap.Int64("prod_no", product.ProdNo), zap.Error(cacheErr))
	}
	return nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, prodNo int64) error {
	if err := s.productRepo.Delete(ctx, prodNo); err != nil {
		return err
	}
	if cacheErr := s.cache.DeleteProduct(ctx, prodNo); cacheErr != nil {
		s.logger.Warn("product cache invalidation failed", zap.Int64("prod_no", prodNo), zap.Error(cacheErr))
	}
	return nil
}

func (s *catalogService) ListProducts(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	return s.productRepo.List(ctx, limit, offset)
}

func (s *catalogService) SearchProducts(ctx context.Context, filter *models.ProductSearchFilter) ([]*models.Product, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.productRepo.Search(ctx, filter)
}

// PatchQuantities applies a batch of quantity updates atomically and
// drops every touched product from the cache.
func (s *catalogService) PatchQuantities(ctx context.Context, patches []models.ProductQuantityPatch) error {
	for _, patch := range patches {
		if patch.Quantity < 0 {
			return fmt.Errorf("quantity for product %d cannot be negative", patch.ProdNo)
		}
	}
	if err := s.productRepo.UpdateQuantities(ctx, patches); err != nil {
		return err
	}
	for _, patch := range patches {
		if cacheErr := s.cache.DeleteProduct(ctx, patch.ProdNo); cacheErr != nil {
			s.logger.Warn("product cache invalidation failed", zap.Int64("prod_no", patch.ProdNo), zap.Error(cacheErr))
		}
	}
	return nil
}

func (s *catalogService) UploadProductImage(ctx context.Context, prodNo int64, filename string, reader io.Reader, size int64) error {
	product, err := s.productRepo.GetByNo(ctx, prodNo)
	if err != nil {
		return err
	}
	if product == nil {
		return fmt.Errorf("product %d not found", prodNo)
	}

	fileExt := filepath.Ext(filename)
	baseName := strings.TrimSuffix(filepath.Base(filename), fileExt)
	objectKey := fmt.Sprintf("%d/%s%s", prodNo, baseName, fileExt)

	if err := s.storage.EnsureBucketExists(ctx, productImageBucket); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	if err := s.storage.Upload(ctx, productImageBucket, objectKey, "image/jpeg", reader, size); err != nil {
		return fmt.Errorf("upload image: %w", err)
	}

	product.ImageKey = &objectKey
	if err := s.productRepo.Update(ctx, product); err != nil {
		return err
	}
	if cacheErr := s.cache.DeleteProduct(ctx, prodNo); cacheErr != nil {
		s.logger.Warn("product cache invalidation failed", zap.Int64("prod_no", prodNo), zap.Error(cacheErr))
	}
	return nil
}

func (s *catalogService) GetProductImageURL(ctx context.Context, prodNo int64, expiry time.Duration) (string, error) {
	product, err := s.GetProduct(ctx, prodNo)
	if err != nil {
		return "", err
	}
	if product == nil {
		return "", fmt.Errorf("product %d not found", prodNo)
	}
	if product.ImageKey == nil {
		return "", fmt.Errorf("product %d has no image", prodNo)
	}
	url, err := s.storage.GetPresignedURL(productImageBucket, *product.ImageKey, expiry)
	if err != nil {
		return "", fmt.Errorf("generate image URL: %w", err)
	}
	return url, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, category *models.Category) error {
	if err := models.ValidateCategoryCode(category.CateNo); err != nil {
		return err
	}
	if category.Name == "" {
		return errors.New("category name is required")
	}

	// A non-top category requires its code-derived parent to exist.
	if parent := category.ParentCode(); parent != "" {
		found, err := s.categoryRepo.GetByNo(ctx, parent)
		if err != nil {
			return err
		}
		if found == nil {
			return fmt.Errorf("parent category %s not found", parent)
		}
	}
	return s.categoryRepo.Create(ctx, category)
}

func (s *catalogService) GetCategory(ctx context.Context, cateNo string) (*models.Category, error) {
	if cached, err := s.cache.GetCategory(ctx, cateNo); cached != nil {
		return cached, nil
	} else if err != nil {
		s.logger.Warn("category cache read failed", zap.String("cate_no", cateNo), zap.Error(err))
	}

	category, err := s.categoryRepo.GetByNo(ctx, cateNo)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, nil
	}

	if cacheErr := s.cache.SetCategory(ctx, category, catalogCacheTTL); cacheErr != nil {
		s.logger.Warn("category cache write failed", zap.String("cate_no", cateNo), zap.Error(cacheErr))
	}
	return category, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, category *models.Category) error {
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return err
	}
	if cacheErr := s.cache.DeleteCategory(ctx, category.CateNo); cacheErr != nil {
		s.logger.Warn("category cache invalidation failed", zap.String("cate_no", category.CateNo), zap.Error(cacheErr))
	}
	return nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, cateNo string) error {
	children, err := s.categoryRepo.ListByParent(ctx, cateNo)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return fmt.Errorf("category %s has %d child categories", cateNo, len(children))
	}
	if err := s.categoryRepo.Delete(ctx, cateNo); err != nil {
		return err
	}
	if cacheErr := s.cache.DeleteCategory(ctx, cateNo); cacheErr != nil {
		s.logger.Warn("category cache invalidation failed", zap.String("cate_no", cateNo), zap.Error(cacheErr))
	}
	return nil
}

func (s *catalogService) ListCategories(ctx context.Context, limit, offset int) ([]*models.Category, error) {
	return s.categoryRepo.List(ctx, limit, offset)
}

func (s *catalogService) ListChildCategories(ctx context.Context, parentNo string) ([]*models.Category, error) {
	if err := models.ValidateCategoryCode(parentNo); err != nil {
		return nil, err
	}
	return s.categoryRepo.ListByParent(ctx, parentNo)
}

func (s *catalogService) CreateManufacturer(ctx context.Context, mfr *models.Manufacturer) error {
	if err := mfr.ValidateIDs(); err != nil {
		return err
	}
	if mfr.Name == "" {
		return errors.New("manufacturer name is required")
	}

	existing, err := s.mfrRepo.GetByFullID(ctx, mfr.FullID())
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("manufacturer %s already exists", mfr.FullID())
	}
	return s.mfrRepo.Create(ctx, mfr)
}

func (s *catalogService) GetManufacturer(ctx context.Context, id int64) (*models.Manufacturer, error) {
	if cached, err := s.cache.GetManufacturer(ctx, id); cached != nil {
		return cached, nil
	} else if err != nil {
		s.logger.Warn("manufacturer cache read failed", zap.Int64("mfr_id", id), zap.Error(err))
	}

	mfr, err := s.mfrRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mfr == nil {
		return nil, nil
	}

	if cacheErr := s.cache.SetManufacturer(ctx, mfr, catalogCacheTTL); cacheErr != nil {
		s.logger.Warn("manufacturer cache write failed", zap.Int64("mfr_id", id), zap.Error(cacheErr))
	}
	return mfr, nil
}

func (s *catalogService) GetManufacturerByFullID(ctx context.Context, fullID string) (*models.Manufacturer, error) {
	return s.mfrRepo.GetByFullID(ctx, fullID)
}

func (s *catalogService) UpdateManufacturer(ctx context.Context, mfr *models.Manufacturer) error {
	if err := mfr.ValidateIDs(); err != nil {
		return err
	}
	if err := s.mfrRepo.Update(ctx, mfr); err != nil {
		return err
	}
	if cacheErr := s.cache.DeleteManufacturer(ctx, mfr.ID); cacheErr != nil {
		s.logger.Warn("manufacturer cache invalidation failed", zap.Int64("mfr_id", mfr.ID), zap.Error(cacheErr))
	}
	return nil
}

func (s *catalogService) DeleteManufacturer(ctx context.Context, id int64) error {
	if err := s.mfrRepo.Delete(ctx, id); err != nil {
		return err
	}
	if cacheErr := s.cache.DeleteManufacturer(ctx, id); cacheErr != nil {
		s.logger.Warn("manufacturer cache invalidation failed", zap.Int64("mfr_id", id), zap.Error(cacheErr))
	}
	return nil
}

func (s *catalogService) ListManufacturers(ctx context.Context, limit, offset int) ([]*models.Manufacturer, error) {
	return s.mfrRepo.List(ctx, limit, offset)
}
