package service

import (
	"errors"
	"strings"

	"github.com/kucun-next/internal/models"
	"github.com/kucun-next/internal/repository"

	"gorm.io/gorm"
)

var (
	// ErrClothingCodeRequired 货号不能为空
	ErrClothingCodeRequired = errors.New("clothing code required")
	// ErrClothingNameRequired 名称不能为空
	ErrClothingNameRequired = errors.New("clothing name required")
	// ErrClothingCodeExists 货号已被占用
	ErrClothingCodeExists = errors.New("clothing code already exists")
)

// ClothingService 服装档案服务
type ClothingService struct {
	clothingRepo  repository.ClothingRepository
	inventoryRepo repository.InventoryRepository
	tracker       SyncTracker
}

// NewClothingService 创建服装服务
func NewClothingService(clothingRepo repository.ClothingRepository, inventoryRepo repository.InventoryRepository, tracker SyncTracker) *ClothingService {
	return &ClothingService{
		clothingRepo:  clothingRepo,
		inventoryRepo: inventoryRepo,
		tracker:       tracker,
	}
}

// ClothingInput 服装创建/更新输入
type ClothingInput struct {
	Code          string
	Name          string
	Category      string
	Size          string
	Color         string
	PurchasePrice models.Money
	SellingPrice  models.Money
}

// List 服装列表
func (s *ClothingService) List(filter repository.ClothingListFilter) ([]models.Clothing, int64, error) {
	return s.clothingRepo.List(filter)
}

// Get 按主键查询
func (s *ClothingService) Get(id uint) (*models.Clothing, error) {
	clothing, err := s.clothingRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if clothing == nil {
		return nil, ErrClothingNotFound
	}
	return clothing, nil
}

// GetByCode 按货号查询；重号时取建档最早的一条
func (s *ClothingService) GetByCode(code string) (*models.Clothing, error) {
	clothing, err := s.clothingRepo.GetByCode(strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if clothing == nil {
		return nil, ErrClothingNotFound
	}
	return clothing, nil
}

// Create 新建服装档案，并同步建出数量为 0 的库存行
func (s *ClothingService) Create(input ClothingInput) (*models.Clothing, error) {
	if err := s.validateInput(&input, nil); err != nil {
		return nil, err
	}

	clothing := &models.Clothing{
		Code:          input.Code,
		Name:          input.Name,
		Category:      input.Category,
		Size:          input.Size,
		Color:         input.Color,
		PurchasePrice: input.PurchasePrice,
		SellingPrice:  input.SellingPrice,
	}

	err := s.clothingRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.clothingRepo.WithTx(tx).Create(clothing); err != nil {
			return err
		}
		return s.inventoryRepo.WithTx(tx).Create(&models.Inventory{
			ClothingID: clothing.ID,
			Quantity:   0,
		})
	})
	if err != nil {
		return nil, err
	}

	s.markChange()
	return clothing, nil
}

// Update 更新服装档案
func (s *ClothingService) Update(id uint, input ClothingInput) (*models.Clothing, error) {
	clothing, err := s.clothingRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if clothing == nil {
		return nil, ErrClothingNotFound
	}

	if err := s.validateInput(&input, &id); err != nil {
		return nil, err
	}

	clothing.Code = input.Code
	clothing.Name = input.Name
	clothing.Category = input.Category
	clothing.Size = input.Size
	clothing.Color = input.Color
	clothing.PurchasePrice = input.PurchasePrice
	clothing.SellingPrice = input.SellingPrice

	if err := s.clothingRepo.Update(clothing); err != nil {
		return nil, err
	}

	s.markChange()
	return clothing, nil
}

// Delete 删除服装档案并连带删除其库存行；
// 历史出入库流水保留，报表侧按孤儿流水展示
func (s *ClothingService) Delete(id uint) error {
	clothing, err := s.clothingRepo.GetByID(id)
	if err != nil {
		return err
	}
	if clothing == nil {
		return ErrClothingNotFound
	}

	err = s.clothingRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.inventoryRepo.WithTx(tx).DeleteByClothingID(id); err != nil {
			return err
		}
		return s.clothingRepo.WithTx(tx).Delete(id)
	})
	if err != nil {
		return err
	}

	s.markChange()
	return nil
}

// ListCategories 当前在用的分类列表（去重）
func (s *ClothingService) ListCategories() ([]string, error) {
	clothes, _, err := s.clothingRepo.List(repository.ClothingListFilter{})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	categories := make([]string, 0)
	for _, c := range clothes {
		if c.Category == "" {
			continue
		}
		if _, ok := seen[c.Category]; ok {
			continue
		}
		seen[c.Category] = struct{}{}
		categories = append(categories, c.Category)
	}
	return categories, nil
}

func (s *ClothingService) validateInput(input *ClothingInput, excludeID *uint) error {
	input.Code = strings.TrimSpace(input.Code)
	input.Name = strings.TrimSpace(input.Name)
	input.Category = strings.TrimSpace(input.Category)
	input.Size = strings.TrimSpace(input.Size)
	input.Color = strings.TrimSpace(input.Color)

	if input.Code == "" {
		return ErrClothingCodeRequired
	}
	if input.Name == "" {
		return ErrClothingNameRequired
	}
	if input.PurchasePrice.Decimal.IsNegative() || input.SellingPrice.Decimal.IsNegative() {
		return ErrInvalidPrice
	}

	count, err := s.clothingRepo.CountByCode(input.Code, excludeID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrClothingCodeExists
	}
	return nil
}

func (s *ClothingService) markChange() {
	if s.tracker != nil {
		s.tracker.MarkLocalChange()
	}
}
