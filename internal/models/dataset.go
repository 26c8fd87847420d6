package models

// Dataset 参与云同步与备份的四个集合的一次完整快照
//
// json 键与备份文件 data 段、远端镜像集合名保持一致。
type Dataset struct {
	Clothes   []Clothing  `json:"clothes"`
	Inventory []Inventory `json:"inventory"`
	StockIns  []StockIn   `json:"stockIn"`
	StockOuts []StockOut  `json:"stockOut"`
}
