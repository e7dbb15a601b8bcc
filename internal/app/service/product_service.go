package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/ikkim/storefront-backend/pkg/util"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("product not found")

// FieldErrors maps form field names to messages.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ProductInput is the admin form for a new catalog product.
type ProductInput struct {
	Name          string
	Price         *decimal.Decimal
	Description   string
	ImageURL      string
	StockQuantity *int
	Location      string
}

type ProductService interface {
	ListProducts() ([]model.Product, error)
	GetProduct(id string) (*model.Product, error)
	AddProduct(input ProductInput) (*model.Product, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
}

func NewProductService(productRepo repository.ProductRepository, locationRepo repository.LocationRepository) ProductService {
	return &productService{
		productRepo:  productRepo,
		locationRepo: locationRepo,
	}
}

func (s *productService) ListProducts() ([]model.Product, error) {
	products, err := s.productRepo.FindAll()
	if err != nil {
		logger.Error("Failed to list products", err)
		return nil, err
	}

	logger.Debug("Products listed", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

func (s *productService) GetProduct(id string) (*model.Product, error) {
	product, err := s.productRepo.FindByID(strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found", map[string]interface{}{
				"product_id": id,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	return product, nil
}

// AddProduct validates the form and appends a product to the catalog.
// Validation failures are returned as FieldErrors.
func (s *productService) AddProduct(input ProductInput) (*model.Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	input.ImageURL = strings.TrimSpace(input.ImageURL)
	input.Location = strings.TrimSpace(input.Location)

	logger.Info("Adding product", map[string]interface{}{
		"name":     input.Name,
		"location": input.Location,
	})

	fields, err := s.validateProduct(input)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		logger.Warn("Product rejected by validation", map[string]interface{}{
			"fields": fields,
		})
		return nil, fields
	}

	product := &model.Product{
		ID:            uuid.NewString(),
		Name:          input.Name,
		Description:   input.Description,
		Price:         *input.Price,
		ImageURL:      input.ImageURL,
		StockQuantity: *input.StockQuantity,
		Location:      input.Location,
	}
	if err := s.productRepo.Create(product); err != nil {
		logger.Error("Failed to create product", err, map[string]interface{}{
			"name": input.Name,
		})
		return nil, err
	}

	logger.Info("Product added successfully", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
		"price":      util.FormatAmount(product.Price),
	})
	return product, nil
}

func (s *productService) validateProduct(input ProductInput) (FieldErrors, error) {
	fields := FieldErrors{}

	if input.Name == "" {
		fields["name"] = "Product name is required"
	}
	if input.Price == nil || !input.Price.IsPositive() {
		fields["price"] = "Please enter a valid price greater than 0"
	}
	if input.Description == "" {
		fields["description"] = "Description is required"
	}
	if input.ImageURL == "" {
		fields["image_url"] = "Image URL is required"
	} else if !util.IsValidURL(input.ImageURL) {
		fields["image_url"] = "Please enter a valid URL"
	}
	if input.StockQuantity == nil || *input.StockQuantity < 0 {
		fields["stock_quantity"] = "Please enter a valid stock quantity"
	}

	if input.Location == "" {
		fields["location"] = "Please select a location"
	} else if s.locationRepo != nil {
		_, err := s.locationRepo.FindByName(input.Location)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fields["location"] = "Please select one of the available locations"
		} else if err != nil {
			logger.Error("Failed to look up product location", err, map[string]interface{}{
				"location": input.Location,
			})
			return nil, err
		}
	}

	return fields, nil
}
