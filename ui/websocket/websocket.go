package websocket

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sorogrupos/jobcast/infrastructure/valkey"
	scheduleusecase "github.com/sorogrupos/jobcast/schedules/usecase"
	valkeylib "github.com/valkey-io/valkey-go"
)

type client struct {
	userID string
}

type registration struct {
	conn   *websocket.Conn
	userID string
}

// Event is one realtime message. UserID scopes delivery: empty goes to
// every connection, otherwise only that tenant's connections receive it.
type Event struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	UserID   string `json:"user_id,omitempty"`
	Result   any    `json:"result,omitempty"`
	SenderID string `json:"sender_id,omitempty"`
}

var (
	Clients    = make(map[*websocket.Conn]client)
	Register   = make(chan registration)
	Broadcast  = make(chan Event)
	Unregister = make(chan *websocket.Conn)

	vkClient *valkey.Client
	wsChan   = "jobcast:ws_events"
	localID  string
)

// SetValkeyClient enables cross-instance event propagation.
func SetValkeyClient(client *valkey.Client, serverID string) {
	vkClient = client
	localID = serverID
}

// Notifier adapts the hub to the usecases' change-notification hook.
type Notifier struct{}

func (Notifier) NotifyScheduleChange(userID string) {
	Broadcast <- Event{
		Code:    "SCHEDULES_CHANGED",
		Message: "Schedules updated",
		UserID:  userID,
	}
}

func handleRegister(reg registration) {
	Clients[reg.conn] = client{userID: reg.userID}
	logrus.Debugf("[WS] Connection registered for user %s", reg.userID)
}

func handleUnregister(conn *websocket.Conn) {
	delete(Clients, conn)
	logrus.Debug("[WS] Connection unregistered")
}

func broadcastToLocal(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logrus.Errorf("[WS] Marshal error: %v", err)
		return
	}

	for conn, cl := range Clients {
		if event.UserID != "" && cl.userID != event.UserID {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logrus.Errorf("[WS] Write error: %v", err)
			closeConnection(conn)
		}
	}
}

func publishToValkey(event Event) {
	if vkClient == nil {
		return
	}

	event.SenderID = localID
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	ctx := context.Background()
	cmd := vkClient.Inner().B().Publish().Channel(wsChan).Message(string(data)).Build()
	if err := vkClient.Inner().Do(ctx, cmd).Error(); err != nil {
		logrus.Errorf("[WS] Failed to publish to Valkey: %v", err)
	}
}

func startValkeySubscriber() {
	if vkClient == nil {
		return
	}

	logrus.Info("[WS] Starting Valkey Pub/Sub subscriber for distributed events")
	go func() {
		err := vkClient.Inner().Receive(context.Background(), vkClient.Inner().B().Subscribe().Channel(wsChan).Build(), func(msg valkeylib.PubSubMessage) {
			var event Event
			if err := json.Unmarshal([]byte(msg.Message), &event); err == nil {
				// Avoid loops: ignore messages sent by this same instance
				if event.SenderID == localID {
					return
				}
				broadcastToLocal(event)
			}
		})
		if err != nil {
			logrus.Errorf("[WS] Valkey subscriber failed: %v", err)
		}
	}()
}

func closeConnection(conn *websocket.Conn) {
	_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
	_ = conn.Close()
	delete(Clients, conn)
}

func RunHub() {
	if vkClient != nil {
		startValkeySubscriber()
	}

	for {
		select {
		case reg := <-Register:
			handleRegister(reg)

		case conn := <-Unregister:
			handleUnregister(conn)

		case event := <-Broadcast:
			broadcastToLocal(event)
			if vkClient != nil {
				publishToValkey(event)
			}
		}
	}
}

func RegisterRoutes(app fiber.Router, store *scheduleusecase.ScheduleStore) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})

	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		userID := conn.Query("user_id")

		defer func() {
			Unregister <- conn
			_ = conn.Close()
		}()

		Register <- registration{conn: conn, userID: userID}

		for {
			messageType, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					logrus.Println("read error:", err)
				}
				return
			}

			if messageType != websocket.TextMessage {
				logrus.Println("unsupported message type:", messageType)
				continue
			}

			var event Event
			if err := json.Unmarshal(message, &event); err != nil {
				logrus.Println("unmarshal error:", err)
				return
			}

			if event.Code == "FETCH_CALENDAR" {
				if _, err := store.Refresh(context.Background(), userID); err != nil {
					logrus.Errorf("[WS] Calendar refresh failed: %v", err)
					continue
				}
				Broadcast <- Event{
					Code:    "CALENDAR",
					Message: "Calendar snapshot",
					UserID:  userID,
					Result:  store.Calendar(userID),
				}
			}
		}
	}))
}
