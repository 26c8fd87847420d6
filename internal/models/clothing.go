package models

import "time"

// Clothing 服装档案表
//
// json 标签与备份文件、远端镜像使用同一组 camelCase 字段名，不可随意变更。
type Clothing struct {
	ID            uint      `gorm:"primarykey" json:"id"`                       // 主键
	Code          string    `gorm:"index;not null" json:"code"`                 // 货号（约定唯一，不做数据库约束）
	Name          string    `gorm:"not null" json:"name"`                       // 名称
	Category      string    `gorm:"index" json:"category"`                      // 分类
	Size          string    `json:"size"`                                       // 尺码
	Color         string    `json:"color"`                                      // 颜色
	PurchasePrice Money     `gorm:"type:decimal(20,2)" json:"purchasePrice"`    // 进货价（始终取最近一次入库价）
	SellingPrice  Money     `gorm:"type:decimal(20,2)" json:"sellingPrice"`     // 销售价
	CreatedAt     time.Time `gorm:"index" json:"createdAt"`                     // 创建时间
	UpdatedAt     time.Time `json:"updatedAt"`                                  // 更新时间
}

// TableName 指定表名
func (Clothing) TableName() string {
	return "clothes"
}
