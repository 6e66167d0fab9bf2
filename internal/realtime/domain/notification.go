package domain

// Notification 表示一則使用者通知，存於 per-user bounded log
type Notification struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"userId"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data"`
	Timestamp string                 `json:"timestamp"`
	Read      bool                   `json:"read"`
}

// NotificationSpec 建立通知的輸入; Type 未指定時為 "info"
type NotificationSpec struct {
	Title   string                 `json:"title"`
	Message string                 `json:"message"`
	Type    string                 `json:"type,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}
