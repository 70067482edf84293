package dto

// VoteRequest 投票请求。1 赞成、-1 反对、0 撤销。
type VoteRequest struct {
	Vote int `json:"vote" binding:"min=-1,max=1"`
}

// VoteResponse 投票结果，返回词条最新的净得票
type VoteResponse struct {
	SlangID int64 `json:"slang_id"`
	Votes   int64 `json:"votes"`
}
