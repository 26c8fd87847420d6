package main

import (
	"time"

	"github.com/kucun-next/internal/config"
	"github.com/kucun-next/internal/logger"
	"github.com/kucun-next/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 示例服装档案
	clothes := []models.Clothing{
		{
			Code:          "TS-001",
			Name:          "基础款纯棉T恤",
			Category:      "上衣",
			Size:          "M",
			Color:         "白色",
			PurchasePrice: models.NewMoneyFromFloat(25),
			SellingPrice:  models.NewMoneyFromFloat(59),
		},
		{
			Code:          "TS-002",
			Name:          "基础款纯棉T恤",
			Category:      "上衣",
			Size:          "L",
			Color:         "黑色",
			PurchasePrice: models.NewMoneyFromFloat(25),
			SellingPrice:  models.NewMoneyFromFloat(59),
		},
		{
			Code:          "JK-101",
			Name:          "牛仔夹克",
			Category:      "外套",
			Size:          "L",
			Color:         "深蓝",
			PurchasePrice: models.NewMoneyFromFloat(88),
			SellingPrice:  models.NewMoneyFromFloat(199),
		},
		{
			Code:          "PT-205",
			Name:          "直筒休闲裤",
			Category:      "裤装",
			Size:          "XL",
			Color:         "卡其",
			PurchasePrice: models.NewMoneyFromFloat(45),
			SellingPrice:  models.NewMoneyFromFloat(109),
		},
		{
			Code:          "DR-310",
			Name:          "碎花连衣裙",
			Category:      "裙装",
			Size:          "S",
			Color:         "粉色",
			PurchasePrice: models.NewMoneyFromFloat(65),
			SellingPrice:  models.NewMoneyFromFloat(159),
		},
	}

	today := time.Now().Format("2006-01-02")
	for _, clothing := range clothes {
		var existing models.Clothing
		if err := models.DB.Where("code = ?", clothing.Code).First(&existing).Error; err == nil {
			stdLog.Printf("Clothing already exists: %s", clothing.Code)
			continue
		}
		if err := models.DB.Create(&clothing).Error; err != nil {
			stdLog.Printf("Failed to create clothing %s: %v", clothing.Code, err)
			continue
		}
		stdLog.Printf("Created clothing: %s %s", clothing.Code, clothing.Name)

		// 每件建一条初始入库流水和对应库存行
		quantity := 20
		stockIn := models.StockIn{
			ClothingID:    clothing.ID,
			Quantity:      quantity,
			PurchasePrice: clothing.PurchasePrice,
			TotalAmount:   models.NewMoneyFromDecimal(clothing.PurchasePrice.Decimal.Mul(decimal.NewFromInt(int64(quantity)))),
			Date:          today,
			Operator:      "seed",
			Notes:         "初始铺货",
		}
		if err := models.DB.Create(&stockIn).Error; err != nil {
			stdLog.Printf("Failed to create stock-in for %s: %v", clothing.Code, err)
			continue
		}
		inventory := models.Inventory{
			ClothingID: clothing.ID,
			Quantity:   quantity,
		}
		if err := models.DB.Create(&inventory).Error; err != nil {
			stdLog.Printf("Failed to create inventory for %s: %v", clothing.Code, err)
		}
	}

	stdLog.Printf("Seed finished")
}
