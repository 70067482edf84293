package dto

// UpdateProfileRequest 个人资料更新请求，未出现的字段不修改
type UpdateProfileRequest struct {
	Username          *string  `json:"username"`
	NativeLanguage    *string  `json:"native_language"`
	LearningLanguages []string `json:"learning_languages"`
}

// FavoriteResponse 收藏切换结果
type FavoriteResponse struct {
	SlangID   int64 `json:"slang_id"`
	Favorited bool  `json:"favorited"`
}
