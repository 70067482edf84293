package dto

// SearchRequest 搜索请求
type SearchRequest struct {
	Query    string `form:"q" json:"query"`
	Limit    int    `form:"limit" json:"limit"`
	Semantic *bool  `form:"semantic" json:"semantic"`
}

// SemanticEnabled 语义检索默认开启，仅显式传 false 时关闭
func (r *SearchRequest) SemanticEnabled() bool {
	return r.Semantic == nil || *r.Semantic
}
