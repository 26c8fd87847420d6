package models

import "time"

// Inventory 库存表（每个服装档案一行，惰性创建）
type Inventory struct {
	ID         uint      `gorm:"primarykey" json:"id"`           // 主键
	ClothingID uint      `gorm:"index;not null" json:"clothingId"` // 服装 ID
	Quantity   int       `gorm:"not null;default:0" json:"quantity"` // 当前在库数量
	UpdatedAt  time.Time `json:"updatedAt"`                      // 更新时间
}

// TableName 指定表名
func (Inventory) TableName() string {
	return "inventory"
}
