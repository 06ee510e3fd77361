package websocket

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans generation events out to clients watching a video. Each watched
// video has one Redis subscription ("video_updates:<id>") shared by all of
// its connections; events are refresh hints, so delivery is best-effort.
type Hub struct {
	mu          sync.RWMutex
	watchers    map[string][]*websocket.Conn // keyed by video id
	redisClient *redis.Client
	cancelFuncs map[string]context.CancelFunc
}

func NewHub(redisClient *redis.Client) *Hub {
	return &Hub{
		watchers:    make(map[string][]*websocket.Conn),
		redisClient: redisClient,
		cancelFuncs: make(map[string]context.CancelFunc),
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	videoID := r.URL.Query().Get("video_id")
	if videoID == "" {
		http.Error(w, "video_id is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.watch(videoID, conn)

	go func() {
		defer h.unwatch(videoID, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

func (h *Hub) watch(videoID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.watchers[videoID] = append(h.watchers[videoID], conn)

	// First watcher of this video opens the subscription.
	if len(h.watchers[videoID]) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[videoID] = cancel
		go h.subscribe(ctx, videoID)
	}
}

func (h *Hub) unwatch(videoID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()

	conns := h.watchers[videoID]
	for i, c := range conns {
		if c == conn {
			h.watchers[videoID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	if len(h.watchers[videoID]) == 0 {
		delete(h.watchers, videoID)
		if cancel, ok := h.cancelFuncs[videoID]; ok {
			cancel()
			delete(h.cancelFuncs, videoID)
		}
	}
}

func (h *Hub) subscribe(ctx context.Context, videoID string) {
	pubsub := h.redisClient.Subscribe(ctx, "video_updates:"+videoID)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(videoID, []byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(videoID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.watchers[videoID] {
		conn.WriteMessage(websocket.TextMessage, data)
	}
}
