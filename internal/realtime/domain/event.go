package domain

// EventType published event type
type EventType string

const (
	// EventNewMessage published on chat:{id} after a message is appended
	EventNewMessage EventType = "new_message"
	// EventUserPresence published on presence:updates on every transition
	EventUserPresence EventType = "user_presence"
	// EventNewNotification published on user:{id}
	EventNewNotification EventType = "new_notification"
	// EventViewUpdate published on listing:{id}; carries a timestamp, not the count
	EventViewUpdate EventType = "view_update"
)

// Event 發布到 channel 的事件封包 {type, data} / {type, userId, data}
type Event struct {
	Type   EventType   `json:"type"`
	UserID string      `json:"userId,omitempty"`
	Data   interface{} `json:"data"`
}

// Action websocket request action
type Action string

const (
	// SendMessage websocket action send_message
	SendMessage Action = "send_message"
	// GetMessages websocket action get_messages
	GetMessages Action = "get_messages"

	// EnterChat websocket action enter_chat
	EnterChat Action = "enter_chat"
	// LeaveChat websocket action leave_chat
	LeaveChat Action = "leave_chat"

	// Heartbeat websocket action heartbeat
	Heartbeat Action = "heartbeat"
	// GetPresence websocket action get_presence
	GetPresence Action = "get_presence"

	// GetNotifications websocket action get_notifications
	GetNotifications Action = "get_notifications"
	// MarkNotificationRead websocket action mark_notification_read
	MarkNotificationRead Action = "mark_notification_read"

	// ViewListing websocket action view_listing
	ViewListing Action = "view_listing"
	// GetViews websocket action get_views
	GetViews Action = "get_views"

	// TrackSearch websocket action track_search
	TrackSearch Action = "track_search"
	// GetPopularSearches websocket action get_popular_searches
	GetPopularSearches Action = "get_popular_searches"

	// NotifyEvent websocket push of a published event
	NotifyEvent Action = "notify_event"
)

// WSRequest websocket Request
type WSRequest struct {
	Action         string `json:"action"`
	ChatID         string `json:"chat_id"`
	Content        string `json:"content"`
	Type           string `json:"type"`
	Status         string `json:"status"`
	UserID         string `json:"user_id"`
	NotificationID string `json:"notification_id"`
	ListingID      string `json:"listing_id"`
	Query          string `json:"query"`
	Limit          int64  `json:"limit"`
}

// WSResponse websocket Response
type WSResponse struct {
	Action  string                 `json:"action"`
	Success bool                   `json:"success"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Error   string                 `json:"error,omitempty"`
}
