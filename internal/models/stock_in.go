package models

import "time"

// StockIn 入库流水表（只追加，历史金额为冻结快照）
type StockIn struct {
	ID            uint      `gorm:"primarykey" json:"id"`                    // 主键
	ClothingID    uint      `gorm:"index;not null" json:"clothingId"`        // 服装 ID
	Quantity      int       `gorm:"not null" json:"quantity"`                // 入库数量
	PurchasePrice Money     `gorm:"type:decimal(20,2)" json:"purchasePrice"` // 本次进货价
	TotalAmount   Money     `gorm:"type:decimal(20,2)" json:"totalAmount"`   // 总金额 = 数量 × 进货价，写入时计算后不再变更
	Date          string    `gorm:"type:varchar(10);index" json:"date"`      // 业务日期（YYYY-MM-DD）
	Operator      string    `json:"operator"`                                // 操作员
	Notes         string    `json:"notes"`                                   // 备注
	CreatedAt     time.Time `gorm:"index" json:"createdAt"`                  // 创建时间
}

// TableName 指定表名
func (StockIn) TableName() string {
	return "stock_ins"
}
