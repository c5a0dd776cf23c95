package ws

import (
	"sync"

	"supportdesk_backend/internal/logger"
)

// Event - конверт live-канала: имя события + полезная нагрузка.
// Имена событий совпадают с фронтовым контрактом: newMessage,
// new_notification, messageRead.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub - реестр комнат. Комната - это identity (email), к которой
// привязаны живые соединения. Состояние только в памяти: после
// рестарта процесса клиенты переподключаются и вступают заново.
//
// Hub - внедряемый сервис с явным жизненным циклом (NewHub/Shutdown),
// а не синглтон уровня пакета: реализация заменяема на распределенный
// реестр, если понадобится multi-node fan-out.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Client]bool
	closed bool
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]bool),
	}
}

// Join регистрирует соединение в комнате identity.
// Одно соединение может состоять в нескольких комнатах
// (админ состоит и в своей, и в общей админской).
func (h *Hub) Join(client *Client, identity string) {
	if identity == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	// Запоздавший join от соединения, которое уже отключено
	// (readPump еще жив в момент Leave): Send закрыт, повторная
	// регистрация привела бы к панике в Push
	if client.isDead() {
		return
	}

	room, ok := h.rooms[identity]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[identity] = room
	}
	room[client] = true
	client.trackRoom(identity)

	logger.Debug("ws client joined room", "room", identity, "members", len(room))
}

// Leave убирает соединение из всех его комнат и закрывает Send.
// Безопасно вызывать повторно.
func (h *Hub) Leave(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	for _, identity := range client.roomList() {
		if room, ok := h.rooms[identity]; ok {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, identity)
			}
		}
	}
	client.closeSend()
}

// MembersOf возвращает живые соединения комнаты (возможно, пустой срез)
func (h *Hub) MembersOf(identity string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room := h.rooms[identity]
	members := make([]*Client, 0, len(room))
	for client := range room {
		members = append(members, client)
	}
	return members
}

// Push отправляет событие всем участникам комнаты.
// Клиент с переполненным буфером отключается: доставка best-effort,
// историю он дочитает через REST.
func (h *Hub) Push(identity string, event Event) {
	h.mu.RLock()
	var slow []*Client
	for client := range h.rooms[identity] {
		if !client.trySend(event) {
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		logger.Warn("ws client evicted: send buffer full", "room", identity)
		h.Leave(client)
		client.closeConn()
	}
}

// RoomCount возвращает число активных комнат
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// Shutdown закрывает все соединения и останавливает прием новых
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	seen := make(map[*Client]bool)
	for _, room := range h.rooms {
		for client := range room {
			seen[client] = true
		}
	}
	for client := range seen {
		h.removeLocked(client)
		client.closeConn()
	}
	h.rooms = make(map[string]map[*Client]bool)
}
