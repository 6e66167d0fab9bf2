package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/B25-sm/clicktosell-sub002/internal/realtime/domain"
	"github.com/B25-sm/clicktosell-sub002/internal/realtime/repository"
	"github.com/B25-sm/clicktosell-sub002/pkg/logger"
	"github.com/B25-sm/clicktosell-sub002/pkg/middlewares"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// pingInterval 定期對 client 發送 ping
const pingInterval = 10 * time.Minute

// heartbeatInterval presence 自動續期間隔，需小於 presenceTTL
const heartbeatInterval = presenceTTL / 3

// RealtimeWebsocketHandler 彙整 realtime 相關 UseCase 的 websocket 進入點
type RealtimeWebsocketHandler struct {
	messageUC      *MessageUseCase
	presenceUC     *PresenceUseCase
	notificationUC *NotificationUseCase
	activityUC     *ActivityUseCase
	searchUC       *SearchUseCase
	registry       *SubscriptionRegistry
}

// NewRealtimeWebsocketHandler create RealtimeWebsocketHandler
func NewRealtimeWebsocketHandler(
	messageUC *MessageUseCase,
	presenceUC *PresenceUseCase,
	notificationUC *NotificationUseCase,
	activityUC *ActivityUseCase,
	searchUC *SearchUseCase,
	registry *SubscriptionRegistry,
) *RealtimeWebsocketHandler {
	return &RealtimeWebsocketHandler{
		messageUC:      messageUC,
		presenceUC:     presenceUC,
		notificationUC: notificationUC,
		activityUC:     activityUC,
		searchUC:       searchUC,
		registry:       registry,
	}
}

// wsConn 序列化同一條連線上的寫入。
// 推播來自訂閱 goroutine，回應來自 read loop，兩邊會同時寫。
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// connKey 每條連線自己的 logical key。registry 對同一個 logical key 只留一個
// handle，所以 key 必須帶 connection id，同一個 channel 才能被多條連線
// （多個分頁、多個 chat 成員）同時訂閱。
func connKey(connID, channel string) string {
	return fmt.Sprintf("conn:%s:%s", connID, channel)
}

// HandleConnection 是 WebSocket 連線的進入點
func (h *RealtimeWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	tokenUser := conn.Locals(middlewares.TokenUserID)
	userID, ok := tokenUser.(string)
	if !ok || userID == "" {
		logger.Log.Warn("websocket connection without user id")
		conn.Close()
		return
	}
	connID := uuid.New().String()
	logger.Log.Info("websocket connected",
		zap.String("userId", userID),
		zap.String("connId", connID))

	wc := &wsConn{conn: conn}
	ticker := time.NewTicker(pingInterval)
	heartbeat := time.NewTicker(heartbeatInterval)
	ctxClose, cancel := context.WithCancel(context.Background())

	userChannel := repository.UserChannel(userID)
	userKey := connKey(connID, userChannel)
	// 此連線持有的 logical keys，斷線時逐一退訂
	subscribedKeys := map[string]struct{}{userKey: {}}

	defer func() {
		ticker.Stop()
		heartbeat.Stop()
		logger.Log.Info("websocket close", zap.String("userId", userID))
		for key := range subscribedKeys {
			if err := h.registry.Unsubscribe(key); err != nil {
				logger.Log.Warn("websocket cleanup unsubscribe failed",
					zap.String("logicalKey", key),
					zap.String("err", err.Error()))
			}
		}
		if _, err := h.presenceUC.SetPresence(ctx, userID, domain.PresenceOffline); err != nil {
			logger.Log.Warn("websocket cleanup presence failed", zap.String("userId", userID))
		}
		conn.Close()
		cancel()
	}()

	//client發出close
	//fiber會自動處理(在read msg 回傳err),故需要SetCloseHandler另外接出
	conn.SetCloseHandler(func(code int, text string) error {
		logger.Log.Infof("WebSocket closed:", conn.RemoteAddr())
		return nil
	})

	//server發出ping之後client連線正常會回pong
	conn.SetPongHandler(func(appData string) error {
		return nil
	})

	//client發出ping,手動回pong
	conn.SetPingHandler(func(appData string) error {
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(appData),
			time.Now().Add(time.Second),
		)
	})

	// 訂閱自己的 private channel，接收通知與私訊推播
	if err := h.registry.Subscribe(ctxClose, userKey, userChannel, func(event domain.Event) {
		h.pushEvent(wc, event)
	}); err != nil {
		logger.Log.Errorf("websocket user subscribe failed:", err)
		return
	}

	// 上線並開始 keepalive
	if _, err := h.presenceUC.SetPresence(ctx, userID, domain.PresenceOnline); err != nil {
		logger.Log.Errorf("websocket set presence failed:", err)
	}

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(time.Second)); err != nil {
					logger.Log.Errorf("Ping error:", err)
					return
				}
			case <-heartbeat.C:
				if _, err := h.presenceUC.SetPresence(ctxClose, userID, domain.PresenceOnline); err != nil {
					logger.Log.Errorf("presence keepalive failed:", err)
				}
			case <-ctxClose.Done():
				return
			}
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Infof("Connection closed:", err)
			} else {
				logger.Log.Errorf("websocket read error:", err)
			}
			return
		}
		h.execWebsocketAction(ctx, wc, connID, userID, subscribedKeys, message)
	}
}

// execWebsocketAction 解析 client 請求並分派到對應 UseCase
func (h *RealtimeWebsocketHandler) execWebsocketAction(
	ctx context.Context,
	wc *wsConn,
	connID string,
	userID string,
	subscribedKeys map[string]struct{},
	message []byte,
) {
	var req domain.WSRequest
	if err := json.Unmarshal(message, &req); err != nil {
		h.sendResponse(wc, domain.WSResponse{
			Action:  req.Action,
			Success: false,
			Error:   "invalid request",
		})
		return
	}

	switch domain.Action(req.Action) {
	case domain.SendMessage:
		content := domain.MessageContent{Content: req.Content, Type: req.Type}
		msg, err := h.messageUC.SendMessage(ctx, req.ChatID, content, userID)
		if err != nil {
			h.sendError(wc, req.Action, err)
			return
		}
		h.sendResponse(wc, domain.WSResponse{
			Action:  req.Action,
			Success: true,
			Payload: map[string]interface{}{"message": msg},
		})

	case domain.GetMessages:
		msgs, err := h.messageUC.GetMessages(ctx, req.ChatID, req.Limit)
		if err != nil {
			h.sendError(wc, req.Action, err)
			return
		}
		meta := h.messageUC.GetConversationMeta(ctx, req.ChatID)
		h.sendResponse(wc, domain.WSResponse{
			Action:  req.Action,
			Success: true,
			Payload: map[string]interface{}{"messages": msgs, "meta": meta},
		})

	case domain.EnterChat:
		chatChannel := repository.ChatChannel(req.ChatID)
		chatKey := connKey(connID, chatChannel)
		if err := h.registry.Subscribe(ctx, chatKey, chatChannel, func(event domain.Event) {
			h.pushEvent(wc, event)
		}); err != nil {
			h.sendError(wc, req.Action, err)
			return
		}
		subscribedKeys[chatKey] = struct{}{}
		h.sendResponse(wc, domain.WSResponse{Action: req.Action, Success: true})

	case domain.LeaveChat:
		chatKey := connKey(connID, repository.ChatChannel(req.ChatID))
		delete(subscribedKeys, chatKey)
		if err := h.registry.Unsubscribe(chatKey); err != nil {
			h.sendError(wc, req.Action, err)
			return
		}
		h.sendResponse(wc, domain.WSResponse{Action: req.Action, Success: true})

	case domain.Heartbeat:
		record, err := h.presenceUC.SetPresence(ctx, userID, domain.PresenceStatus(req.Status))
		if err != nil {
			h.sendError(wc, req.Action, err)
			return
		}
		h.sendResponse(wc, domain.WSResponse{
			Action:  req.Action,
			Success: true,
			Payload: map[string]interface{}{"presence": record},
		})

	case domain.GetPresence:
		record := h.presenceUC.GetPresence(ctx, req.UserID)
		h.sendResponse(wc, domain.WSResponse{
			Action:  req.Action,
			Success: true,
			Payload: map[string]interface{}{"presence": record},
		})

	case domain.GetNotifications:
		notifications := h.notificationUC.GetUserNotifications(ctx, userID, req.Limit)
		h.sendResponse(wc, domain.WSResponse{
			Action:  req.Action,
			Success: true,
			Payload: map[string]interface{}{"notifications": notifications},
		})

	case domain.MarkNotificationRead:
		h.notificationUC.MarkNotificationAsRead(ctx, userID, req.NotificationID)
		h.sendResponse(wc, domain.WSResponse{Action: req.Action, Success: true})

	case domain.ViewListing:
		h.activityUC.IncrementViews(ctx, req.ListingID)
		h.sendResponse(wc, domain.WSResponse{Action: req.Action, Success: true})

	case domain.GetViews:
		count := h.activityUC.GetViews(ctx, req.ListingID)
		h.sendResponse(wc, domain.WSResponse{
			Action:  req.Action,
			Success: true,
			Payload: map[string]interface{}{"views": count},
		})

	case domain.TrackSearch:
		h.searchUC.TrackSearch(ctx, req.Query, userID)
		h.sendResponse(wc, domain.WSResponse{Action: req.Action, Success: true})

	case domain.GetPopularSearches:
		searches := h.searchUC.GetPopularSearches(ctx, req.Limit)
		h.sendResponse(wc, domain.WSResponse{
			Action:  req.Action,
			Success: true,
			Payload: map[string]interface{}{"searches": searches},
		})

	default:
		h.sendResponse(wc, domain.WSResponse{
			Action:  req.Action,
			Success: false,
			Error:   "unknown action",
		})
	}
}

// pushEvent 將訂閱收到的事件轉發給 client
func (h *RealtimeWebsocketHandler) pushEvent(wc *wsConn, event domain.Event) {
	resp := domain.WSResponse{
		Action:  string(domain.NotifyEvent),
		Success: true,
		Payload: map[string]interface{}{
			"type":   event.Type,
			"userId": event.UserID,
			"data":   event.Data,
		},
	}
	h.sendResponse(wc, resp)
}

func (h *RealtimeWebsocketHandler) sendError(wc *wsConn, action string, err error) {
	h.sendResponse(wc, domain.WSResponse{
		Action:  action,
		Success: false,
		Error:   err.Error(),
	})
}

func (h *RealtimeWebsocketHandler) sendResponse(wc *wsConn, resp domain.WSResponse) {
	if err := wc.WriteJSON(resp); err != nil {
		logger.Log.Errorf("websocket write error:", err)
	}
}
