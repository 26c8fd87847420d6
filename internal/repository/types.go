package repository

// ClothingListFilter 查询服装列表的过滤条件
type ClothingListFilter struct {
	Page     int
	PageSize int
	Category string
	Size     string
	Search   string // 匹配货号或名称
}

// StockInListFilter 查询入库流水的过滤条件
type StockInListFilter struct {
	Page       int
	PageSize   int
	ClothingID uint
	DateFrom   string // YYYY-MM-DD，含当天
	DateTo     string
	Operator   string
}

// StockOutListFilter 查询出库流水的过滤条件
type StockOutListFilter struct {
	Page       int
	PageSize   int
	ClothingID uint
	DateFrom   string
	DateTo     string
	Operator   string
	Customer   string
}
