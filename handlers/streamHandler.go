package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kvit-dev/caleoban/models"
	"github.com/kvit-dev/caleoban/utilities"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = streamPongWait * 9 / 10
)

type snapshotMessage struct {
	Type  string        `json:"type"`
	Tasks []models.Task `json:"tasks"`
}

func (h *TaskHandler) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range h.AllowedOrigins {
				if allowed == "*" || allowed == origin {
					return true
				}
			}
			return false
		},
	}
}

// StreamTasksHandler upgrades to a websocket and pushes the caller's full
// task snapshot after every change. A slow client only ever receives the
// latest snapshot; older undelivered ones are dropped. The connection is
// closed with 1011 when the store feed fails.
func (h *TaskHandler) StreamTasksHandler(w http.ResponseWriter, r *http.Request) {
	uid := UserUID(r.Context())

	conn, err := h.upgrader().Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the request
		utilities.LogError(err, "Websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	latest := make(chan []models.Task, 1)
	var mu sync.Mutex
	push := func(tasks []models.Task) {
		mu.Lock()
		defer mu.Unlock()
		select {
		case <-latest:
		default:
		}
		latest <- tasks
	}

	failed := make(chan error, 1)
	fail := func(err error) {
		select {
		case failed <- err:
		default:
		}
	}

	unsubscribe, err := h.Store.Subscribe(ctx, uid, push, fail)
	if err != nil {
		utilities.LogError(err, fmt.Sprintf("Error subscribing to tasks of user %s", uid))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscription failed"),
			time.Now().Add(streamWriteWait))
		return
	}
	defer unsubscribe()
	utilities.LogDebug("Task stream opened for user %s", uid)

	// the read loop only watches for the client going away
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			utilities.LogDebug("Task stream closed for user %s", uid)
			return
		case tasks := <-latest:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteJSON(snapshotMessage{Type: "snapshot", Tasks: tasks}); err != nil {
				utilities.LogDebug("Task stream write failed for user %s: %v", uid, err)
				return
			}
		case err := <-failed:
			utilities.LogError(err, fmt.Sprintf("Task stream for user %s lost its feed", uid))
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "task feed failed"),
				time.Now().Add(streamWriteWait))
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return
			}
		}
	}
}
