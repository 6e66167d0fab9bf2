package domain

// SearchEvent 表示一次搜尋，存於全域 bounded log
type SearchEvent struct {
	Query     string `json:"query"`
	UserID    string `json:"userId,omitempty"`
	Timestamp string `json:"timestamp"`
}
