package dto

// ContentSearchRequest 内容搜索的查询参数
type ContentSearchRequest struct {
	Query string `form:"q" binding:"required"`
	// Type 取 all、posts、comments，默认 all
	Type     string `form:"type"`
	DateFrom string `form:"date_from"` // 2006-01-02，含当天
	DateTo   string `form:"date_to"`   // 2006-01-02，含当天
	UserID   int64  `form:"user_id"`
	Limit    int    `form:"limit"`
}
