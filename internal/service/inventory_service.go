package service

import (
	"errors"
	"fmt"
	"strings"

	"autoparts-inventory/internal/ledger"
	"autoparts-inventory/internal/model"
	"autoparts-inventory/internal/repository"
	"autoparts-inventory/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryService interface {
	GetProducts(filter repository.ProductFilter) ([]model.Product, error)
	GetProduct(id uuid.UUID) (*model.Product, error)
	GetCatalog() ([]ledger.Product, error)
	CreateProduct(req *ProductRequest, actor Actor) (*model.Product, error)
	UpdateProduct(id uuid.UUID, req *ProductRequest, actor Actor) (*model.Product, error)
	DeleteProduct(id uuid.UUID, actor Actor) error

	GetCategories() ([]model.Category, error)
	CreateCategory(req *CategoryRequest, actor Actor) (*model.Category, error)
	UpdateCategory(id uuid.UUID, req *CategoryRequest, actor Actor) (*model.Category, error)
	DeleteCategory(id uuid.UUID, actor Actor) error
}

type ProductRequest struct {
	SKU        string          `json:"sku" validate:"required,max=50"`
	Name       string          `json:"name" validate:"required,max=255"`
	Stock      int             `json:"stock" validate:"gte=0"`
	Unit       string          `json:"unit" validate:"max=20"`
	Price      decimal.Decimal `json:"price" validate:"gte=0"`
	CategoryID *uuid.UUID      `json:"category_id"`
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

type inventoryService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	db           *gorm.DB
	events       Publisher
	log          *zap.Logger
}

func NewInventoryService(pRepo repository.ProductRepository, cRepo repository.CategoryRepository, db *gorm.DB, events Publisher, log *zap.Logger) InventoryService {
	return &inventoryService{
		productRepo:  pRepo,
		categoryRepo: cRepo,
		db:           db,
		events:       events,
		log:          log,
	}
}

func (s *inventoryService) GetProducts(filter repository.ProductFilter) ([]model.Product, error) {
	return s.productRepo.FindAll(filter)
}

func (s *inventoryService) GetProduct(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	return product, nil
}

// GetCatalog is the snapshot a client passes to the ledger for line
// defaults and stock ceilings.
func (s *inventoryService) GetCatalog() ([]ledger.Product, error) {
	products, err := s.productRepo.FindAll(repository.ProductFilter{})
	if err != nil {
		return nil, err
	}
	return model.Catalog(products), nil
}

func (s *inventoryService) CreateProduct(req *ProductRequest, actor Actor) (*model.Product, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	req.SKU = strings.TrimSpace(req.SKU)

	if existing, _ := s.productRepo.FindBySKU(req.SKU); existing != nil {
		return nil, ErrSKUExists
	}
	if err := s.checkCategory(req.CategoryID); err != nil {
		return nil, err
	}

	product := &model.Product{
		SKU:             req.SKU,
		Name:            req.Name,
		Stock:           req.Stock,
		Unit:            req.Unit,
		Price:           req.Price,
		CategoryID:      req.CategoryID,
		CreatedByUserID: &actor.ID,
		UpdatedByUserID: &actor.ID,
	}
	product.CreatedBy = actor.ID
	product.UpdatedBy = actor.ID

	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}

	s.log.Info("product created", zap.String("sku", product.SKU), zap.String("by", actor.ID))
	s.events.Publish(map[string]interface{}{
		"type":    "stock_update",
		"action":  "product_created",
		"product": productEvent(product),
		"user":    actor.event(),
		"message": fmt.Sprintf("%s created product '%s'", actor.Name, product.Name),
	})
	return product, nil
}

func (s *inventoryService) UpdateProduct(id uuid.UUID, req *ProductRequest, actor Actor) (*model.Product, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	req.SKU = strings.TrimSpace(req.SKU)
	if err := s.checkCategory(req.CategoryID); err != nil {
		return nil, err
	}

	var product model.Product
	var oldStock int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "id = ?", id).Error; err != nil {
			return notFound(err, ErrProductNotFound)
		}
		if req.SKU != product.SKU {
			var taken int64
			if err := tx.Model(&model.Product{}).Where("sku = ? AND id <> ?", req.SKU, id).Count(&taken).Error; err != nil {
				return err
			}
			if taken > 0 {
				return ErrSKUExists
			}
		}

		oldStock = product.Stock
		product.SKU = req.SKU
		product.Name = req.Name
		product.Stock = req.Stock
		product.Unit = req.Unit
		product.Price = req.Price
		product.CategoryID = req.CategoryID
		product.UpdatedBy = actor.ID
		product.UpdatedByUserID = &actor.ID

		return tx.Omit(clause.Associations).Save(&product).Error
	})
	if err != nil {
		return nil, err
	}

	event := productEvent(&product)
	event["old_stock"] = oldStock
	s.events.Publish(map[string]interface{}{
		"type":    "stock_update",
		"action":  "product_updated",
		"product": event,
		"user":    actor.event(),
		"message": fmt.Sprintf("%s updated product '%s'", actor.Name, product.Name),
	})
	return &product, nil
}

func (s *inventoryService) DeleteProduct(id uuid.UUID, actor Actor) error {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return notFound(err, ErrProductNotFound)
	}
	if err := s.productRepo.Delete(id, actor.ID); err != nil {
		return notFound(err, ErrProductNotFound)
	}

	s.log.Info("product deleted", zap.String("sku", product.SKU), zap.String("by", actor.ID))
	s.events.Publish(map[string]interface{}{
		"type":    "stock_update",
		"action":  "product_deleted",
		"product": productEvent(product),
		"user":    actor.event(),
		"message": fmt.Sprintf("%s deleted product '%s'", actor.Name, product.Name),
	})
	return nil
}

func (s *inventoryService) GetCategories() ([]model.Category, error) {
	return s.categoryRepo.FindAll()
}

func (s *inventoryService) CreateCategory(req *CategoryRequest, actor Actor) (*model.Category, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	if existing, _ := s.categoryRepo.FindByName(req.Name); existing != nil {
		return nil, ErrCategoryExists
	}

	category := &model.Category{Name: req.Name, Description: req.Description}
	category.CreatedBy = actor.ID
	category.UpdatedBy = actor.ID
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	s.publishCategory("category_created", category, actor)
	return category, nil
}

func (s *inventoryService) UpdateCategory(id uuid.UUID, req *CategoryRequest, actor Actor) (*model.Category, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrCategoryNotFound)
	}
	if req.Name != category.Name {
		if existing, _ := s.categoryRepo.FindByName(req.Name); existing != nil {
			return nil, ErrCategoryExists
		}
	}

	category.Name = req.Name
	category.Description = req.Description
	category.UpdatedBy = actor.ID
	if err := s.categoryRepo.Update(category); err != nil {
		return nil, err
	}
	s.publishCategory("category_updated", category, actor)
	return category, nil
}

func (s *inventoryService) DeleteCategory(id uuid.UUID, actor Actor) error {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		return notFound(err, ErrCategoryNotFound)
	}
	count, err := s.productRepo.CountByCategory(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %d product(s) in '%s'", ErrCategoryInUse, count, category.Name)
	}
	if err := s.categoryRepo.Delete(id); err != nil {
		return notFound(err, ErrCategoryNotFound)
	}
	s.publishCategory("category_deleted", category, actor)
	return nil
}

func (s *inventoryService) checkCategory(id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := s.categoryRepo.FindByID(*id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}

func (s *inventoryService) publishCategory(action string, c *model.Category, actor Actor) {
	s.events.Publish(map[string]interface{}{
		"type":   "catalog_update",
		"action": action,
		"category": map[string]interface{}{
			"id":   c.ID,
			"name": c.Name,
		},
		"user": actor.event(),
	})
}

func productEvent(p *model.Product) map[string]interface{} {
	return map[string]interface{}{
		"id":          p.ID,
		"sku":         p.SKU,
		"name":        p.Name,
		"stock":       p.Stock,
		"price":       p.Price,
		"category_id": p.CategoryID,
	}
}
