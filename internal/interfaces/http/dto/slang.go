package dto

// CreateSlangRequest 词条提交请求
type CreateSlangRequest struct {
	Term                 string   `json:"term" binding:"required,max=100"`
	Meaning              string   `json:"meaning" binding:"required"`
	Origin               string   `json:"origin"`
	Context              string   `json:"context"`
	PartOfSpeech         string   `json:"part_of_speech"`
	Pronunciation        string   `json:"pronunciation"`
	AlternativeSpellings []string `json:"alternative_spellings"`
	Examples             []string `json:"examples"`
}

// UpdateSlangRequest 词条编辑请求，未出现的字段不修改
type UpdateSlangRequest struct {
	Meaning              *string  `json:"meaning"`
	Origin               *string  `json:"origin"`
	Context              *string  `json:"context"`
	PartOfSpeech         *string  `json:"part_of_speech"`
	Pronunciation        *string  `json:"pronunciation"`
	AlternativeSpellings []string `json:"alternative_spellings"`
	Examples             []string `json:"examples"`
}

// ExplainRequest 释义草稿生成请求
type ExplainRequest struct {
	Term    string `json:"term" binding:"required,max=100"`
	Context string `json:"context"`
}

// TranslateRequest 译文生成请求
type TranslateRequest struct {
	Language string `json:"language" binding:"required,max=10"`
}
