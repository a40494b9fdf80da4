package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/domain"
	"taskboard/internal/logger"

	"github.com/gorilla/websocket"
)

// ws_smoke checks a running server end to end: it subscribes to the event
// feed, creates a task over REST, waits for the task.created event and then
// deletes the task again.
func main() {
	userID := flag.String("user", "dev-user", "user id to act as (must exist for the postgres store)")
	flag.Parse()

	cfg := config.Load()
	logger.Init(logger.Options{Level: cfg.LogLevel})

	token, err := auth.NewJWTManager(auth.JWTConfig{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer, TTL: time.Hour}).Issue(*userID)
	if err != nil {
		logger.Fatal("issue token", "error", err)
	}

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	base := fmt.Sprintf("127.0.0.1:%s", cfg.AppPort)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+base+"/api/v1/events?token="+token, nil)
	if err != nil {
		logger.Fatal("dial events", "error", err)
	}
	defer conn.Close()

	created := call[domain.Task](token, http.MethodPost, "http://"+base+"/api/v1/tasks",
		map[string]any{"title": "smoke " + time.Now().Format("150405"), "priority": "low"}, http.StatusCreated)
	logger.Info("task created", "task_id", created.ID)

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		logger.Fatal("read event", "error", err)
	}
	var ev domain.TaskEvent
	if err := json.Unmarshal(msg, &ev); err != nil || ev.Type != domain.EventTaskCreated || ev.TaskID != created.ID {
		logger.Fatal("unexpected event", "payload", string(msg), "error", err)
	}
	logger.Info("event received", "type", ev.Type)

	call[map[string]string](token, http.MethodDelete, "http://"+base+"/api/v1/tasks/"+created.ID, nil, http.StatusOK)
	logger.Info("smoke test finished")
}

func call[T any](token, method, url string, body any, want int) T {
	var out T

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			logger.Fatal("encode body", "error", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		logger.Fatal("build request", "error", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		logger.Fatal("request failed", "method", method, "url", url, "error", err)
	}
	defer res.Body.Close()

	raw, _ := io.ReadAll(res.Body)
	if res.StatusCode != want {
		logger.Fatal("unexpected status", "method", method, "url", url, "status", res.StatusCode, "body", string(raw))
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		logger.Fatal("decode response", "error", err)
	}
	return out
}
