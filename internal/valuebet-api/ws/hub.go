package ws

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// ClientMsg é a mensagem de controle enviada pelo cliente.
type ClientMsg struct {
	Type string `json:"type"` // "ping"
}

// client embrulha a conexão com um mutex de escrita: o pong sai da goroutine
// de leitura e o broadcast sai do assinante Redis, e gorilla/websocket não
// permite escritores concorrentes.
type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *client) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(messageType, data)
}

func (c *client) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub gerencia as conexões WebSocket interessadas em refreshes do lote de
// value bets. Todo refresh é global: não há assinatura por partida.
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	conns    map[*websocket.Conn]*client
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS).
func NewHub(allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		conns:    make(map[*websocket.Conn]*client),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão: registra, responde a
// pings e remove ao desconectar.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	c := &client{conn: conn}
	h.mu.Lock()
	h.conns[conn] = c
	h.mu.Unlock()

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		if msg.Type == "ping" {
			_ = c.writeJSON(map[string]string{"type": "pong"})
		}
	}

	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
}

// Broadcast envia o payload bruto para todas as conexões registradas.
func (h *Hub) Broadcast(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.conns {
		_ = c.write(websocket.TextMessage, payload)
	}
}
