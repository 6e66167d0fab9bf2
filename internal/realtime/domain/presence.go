package domain

// PresenceStatus definition user presence status
type PresenceStatus string

const (
	// PresenceOnline user is online
	PresenceOnline PresenceStatus = "online"
	// PresenceOffline user is offline
	PresenceOffline PresenceStatus = "offline"
)

// PresenceRecord 每個 user 一筆，由 key TTL 控制新鮮度。
// Key 過期與從未上線無法區分，兩者都回報 offline / lastSeen null。
type PresenceRecord struct {
	Status    PresenceStatus `json:"status"`
	LastSeen  *string        `json:"lastSeen"`
	Timestamp string         `json:"timestamp,omitempty"`
}

// OfflinePresence the constant record returned for absent or unreadable keys
func OfflinePresence() PresenceRecord {
	return PresenceRecord{Status: PresenceOffline, LastSeen: nil}
}
