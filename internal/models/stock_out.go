package models

import "time"

// StockOut 出库（销售）流水表（只追加，历史金额为冻结快照）
type StockOut struct {
	ID           uint      `gorm:"primarykey" json:"id"`                   // 主键
	ClothingID   uint      `gorm:"index;not null" json:"clothingId"`       // 服装 ID
	Quantity     int       `gorm:"not null" json:"quantity"`               // 出库数量
	SellingPrice Money     `gorm:"type:decimal(20,2)" json:"sellingPrice"` // 本次销售价
	TotalAmount  Money     `gorm:"type:decimal(20,2)" json:"totalAmount"`  // 总金额 = 数量 × 销售价，保留 2 位小数
	Date         string    `gorm:"type:varchar(10);index" json:"date"`     // 业务日期（YYYY-MM-DD）
	Operator     string    `json:"operator"`                               // 操作员
	Customer     string    `json:"customer"`                               // 客户
	Notes        string    `json:"notes"`                                  // 备注
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`                 // 创建时间
	UpdatedAt    time.Time `json:"updatedAt"`                              // 更新时间
}

// TableName 指定表名
func (StockOut) TableName() string {
	return "stock_outs"
}
