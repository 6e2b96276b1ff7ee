package websocket

import (
	"bytes"
	"encoding/json"
	"sync"

	"dashboard/internal/metrics"
	"dashboard/internal/models"
	"dashboard/pkg/utils"
)

// Пул JSON буферов убирает аллокации на каждый Broadcast
var jsonBufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 512))
	},
}

// Hub управляет всеми активными WebSocket соединениями
//
// Назначение:
// Центральная точка рассылки real-time событий подключенным клиентам
// дашборда: итоги аварийных действий, сработавшие алерты, свежие
// сводки. Клиенты только слушают, входящие сообщения не
// обрабатываются.
//
// Использование:
// 1. Создать hub: hub := NewHub(logger)
// 2. Запустить в горутине: go hub.Run()
// 3. Отправлять события: hub.BroadcastAlert(alert) и т.д.
// 4. Остановить: hub.Stop()
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	logger *utils.Logger
	mu     sync.RWMutex
}

// NewHub создает новый Hub
func NewHub(logger *utils.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.WithComponent("websocket"),
	}
}

// Run запускает главный цикл Hub.
// Должен запускаться в отдельной горутине: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			metrics.WebsocketClients.Set(0)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			metrics.WebsocketClients.Set(float64(count))
			h.logger.Info("client connected", utils.Int("clients", count))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			metrics.WebsocketClients.Set(float64(count))
			h.logger.Info("client disconnected", utils.Int("clients", count))

		case message := <-h.broadcast:
			// Копируем список клиентов под коротким RLock, отправляем без
			// блокировки, чтобы не задерживать register/unregister
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			var toRemove []*Client
			for _, client := range clients {
				select {
				case client.send <- message:
				default:
					// Клиент не успевает читать, отключаем
					toRemove = append(toRemove, client)
				}
			}

			if len(toRemove) > 0 {
				h.mu.Lock()
				for _, client := range toRemove {
					if _, ok := h.clients[client]; ok {
						delete(h.clients, client)
						close(client.send)
					}
				}
				count := len(h.clients)
				h.mu.Unlock()
				metrics.WebsocketClients.Set(float64(count))
				h.logger.Warn("removed slow clients",
					utils.Int("removed", len(toRemove)),
					utils.Int("clients", count),
				)
			}
		}
	}
}

// Stop останавливает цикл Hub и закрывает все соединения
func (h *Hub) Stop() {
	close(h.done)
}

// Broadcast сериализует сообщение и рассылает всем клиентам
func (h *Hub) Broadcast(message interface{}) {
	buf := jsonBufferPool.Get().(*bytes.Buffer)
	buf.Reset()

	if err := json.NewEncoder(buf).Encode(message); err != nil {
		h.logger.Error("marshal broadcast message", utils.Err(err))
		jsonBufferPool.Put(buf)
		return
	}

	// Encode добавляет trailing newline
	data := buf.Bytes()
	if len(data) > 0 && data[len(data)-1] == '\n' {
		data = data[:len(data)-1]
	}

	msgCopy := make([]byte, len(data))
	copy(msgCopy, data)
	jsonBufferPool.Put(buf)

	select {
	case h.broadcast <- msgCopy:
	case <-h.done:
	}
}

// BroadcastEmergencyAction рассылает итог аварийного действия
func (h *Hub) BroadcastEmergencyAction(action *models.EmergencyAction) {
	h.Broadcast(NewEmergencyActionMessage(action))
}

// BroadcastAlert рассылает сработавший алерт
func (h *Hub) BroadcastAlert(alert *models.Alert) {
	h.Broadcast(NewAlertMessage(alert))
}

// BroadcastDashboardUpdate рассылает свежую сводку дашборда
func (h *Hub) BroadcastDashboardUpdate(summary *models.DashboardSummary) {
	h.Broadcast(NewDashboardUpdateMessage(summary))
}

// ClientCount возвращает количество подключенных клиентов
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
