package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// jobEvent is one progress update for a background generation job. Terminal
// complete events may carry the produced document in Result.
type jobEvent struct {
	EventType string `json:"eventType"`
	Message   string `json:"message"`
	Op        string `json:"op,omitempty"`
	Result    any    `json:"result,omitempty"`
}

const (
	eventProgress = "progress"
	eventComplete = "complete"
	eventError    = "error"
)

// jobStore tracks event channels for in-flight generation jobs.
type jobStore struct {
	mu   sync.RWMutex
	jobs map[string]chan jobEvent
}

func newJobStore() *jobStore {
	return &jobStore{jobs: make(map[string]chan jobEvent)}
}

func (s *jobStore) start(jobID string) chan jobEvent {
	ch := make(chan jobEvent, 32)
	s.mu.Lock()
	s.jobs[jobID] = ch
	s.mu.Unlock()
	return ch
}

func (s *jobStore) get(jobID string) (chan jobEvent, bool) {
	s.mu.RLock()
	ch, ok := s.jobs[jobID]
	s.mu.RUnlock()
	return ch, ok
}

// publish is best-effort: a slow or absent watcher never blocks the job.
func (s *jobStore) publish(jobID string, ev jobEvent) {
	ch, ok := s.get(jobID)
	if !ok {
		return
	}
	select {
	case ch <- ev:
	default:
	}
}

// finish emits a terminal event and closes the channel.
func (s *jobStore) finish(jobID string, ev jobEvent) {
	s.mu.Lock()
	ch, ok := s.jobs[jobID]
	delete(s.jobs, jobID)
	s.mu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- ev:
	default:
	}
	close(ch)
}

// hookFor builds a completion hook that reports model activity for one job.
func (s *jobStore) hookFor(jobID string) *jobHook {
	return &jobHook{store: s, jobID: jobID}
}

type jobHook struct {
	store *jobStore
	jobID string
}

func (h *jobHook) Before(_ context.Context, op, _ string) {
	h.store.publish(h.jobID, jobEvent{EventType: eventProgress, Message: "calling model", Op: op})
}

func (h *jobHook) After(_ context.Context, op, _ string, err error) {
	if err != nil {
		h.store.publish(h.jobID, jobEvent{EventType: eventProgress, Message: "model call failed: " + err.Error(), Op: op})
		return
	}
	h.store.publish(h.jobID, jobEvent{EventType: eventProgress, Message: "model call finished", Op: op})
}

// handleWatchSSE streams job events as Server-Sent Events.
// Path: /api/watch/{job_id}
func (s *apiServer) handleWatchSSE(w http.ResponseWriter, r *http.Request) {
	jobID := strings.TrimPrefix(r.URL.Path, "/api/watch/")
	if jobID == "" {
		http.Error(w, "job_id required", http.StatusBadRequest)
		return
	}

	eventCh, ok := s.jobs.get(jobID)
	if !ok {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-eventCh:
			if !ok {
				fmt.Fprintf(w, "event: close\ndata: {}\n\n")
				flusher.Flush()
				return
			}

			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()

			if event.EventType == eventComplete || event.EventType == eventError {
				return
			}
		}
	}
}

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleWatchWS streams job events over a websocket.
// Path: /api/ws/{job_id}
func (s *apiServer) handleWatchWS(w http.ResponseWriter, r *http.Request) {
	jobID := strings.TrimPrefix(r.URL.Path, "/api/ws/")
	if jobID == "" {
		http.Error(w, "job_id required", http.StatusBadRequest)
		return
	}

	eventCh, ok := s.jobs.get(jobID)
	if !ok {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("watch: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-eventCh:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "job complete"))
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
			if event.EventType == eventComplete || event.EventType == eventError {
				return
			}
		}
	}
}
