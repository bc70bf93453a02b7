package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Eprince-hub/live-chat/internal/domain"
	"github.com/Eprince-hub/live-chat/internal/hub"
)

// fakeSessionService records the GetHistory call and returns a canned page.
type fakeSessionService struct {
	gotStreamID string
	gotBeforeID string
	gotLimit    int
	page        *domain.ChatHistoryPage
	err         error
}

func (f *fakeSessionService) HandleJoinStream(ctx context.Context, c *hub.Client, streamID string) error {
	return nil
}
func (f *fakeSessionService) HandleLeaveStream(ctx context.Context, c *hub.Client) error { return nil }
func (f *fakeSessionService) HandleChatMessage(ctx context.Context, c *hub.Client, content string) error {
	return nil
}
func (f *fakeSessionService) HandleTyping(ctx context.Context, c *hub.Client, streamID string, isTyping bool) error {
	return nil
}
func (f *fakeSessionService) HandleReaction(ctx context.Context, c *hub.Client, messageID, reaction string) error {
	return nil
}
func (f *fakeSessionService) HandleSignal(ctx context.Context, c *hub.Client, signal *domain.SignalMessage) error {
	return nil
}
func (f *fakeSessionService) HandleStreamEvent(ctx context.Context, c *hub.Client, event *domain.StreamEventMessage) error {
	return nil
}
func (f *fakeSessionService) HandleDisconnect(ctx context.Context, c *hub.Client) error { return nil }
func (f *fakeSessionService) Start(ctx context.Context) error                           { return nil }
func (f *fakeSessionService) Stop() error                                               { return nil }

func (f *fakeSessionService) GetHistory(ctx context.Context, streamID, beforeID string, limit int) (*domain.ChatHistoryPage, error) {
	f.gotStreamID = streamID
	f.gotBeforeID = beforeID
	f.gotLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func newTestRouter(svc *fakeSessionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHTTPHandler(svc).RegisterRoutes(r)
	return r
}

func TestGetMessagesDefaults(t *testing.T) {
	svc := &fakeSessionService{page: &domain.ChatHistoryPage{
		Messages: []domain.ChatMessage{{ID: "m1", StreamID: "s1", Content: "hi"}},
		HasMore:  false,
	}}
	r := newTestRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/streams/s1/messages", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
	}
	if svc.gotStreamID != "s1" || svc.gotBeforeID != "" || svc.gotLimit != defaultLimit {
		t.Errorf("GetHistory called with (%q, %q, %d), want (s1, \"\", %d)",
			svc.gotStreamID, svc.gotBeforeID, svc.gotLimit, defaultLimit)
	}

	var resp domain.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Errorf("Success = false, want true")
	}
}

func TestGetMessagesPassesCursor(t *testing.T) {
	svc := &fakeSessionService{page: &domain.ChatHistoryPage{}}
	r := newTestRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/streams/s1/messages?before_id=m42&limit=10", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if svc.gotBeforeID != "m42" || svc.gotLimit != 10 {
		t.Errorf("GetHistory called with (before_id=%q, limit=%d), want (m42, 10)", svc.gotBeforeID, svc.gotLimit)
	}
}

func TestGetMessagesLimitValidation(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantLimit int
	}{
		{"non-numeric limit", "?limit=abc", http.StatusBadRequest, 0},
		{"zero limit", "?limit=0", http.StatusBadRequest, 0},
		{"negative limit", "?limit=-5", http.StatusBadRequest, 0},
		{"oversized limit is capped", "?limit=500", http.StatusOK, maxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeSessionService{page: &domain.ChatHistoryPage{}}
			r := newTestRouter(svc)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/streams/s1/messages"+tt.query, nil)
			r.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusOK && svc.gotLimit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", svc.gotLimit, tt.wantLimit)
			}
		})
	}
}

func TestGetMessagesServiceError(t *testing.T) {
	svc := &fakeSessionService{err: errors.New("store down")}
	r := newTestRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/streams/s1/messages", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}

	var resp domain.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Success {
		t.Error("Success = true, want false")
	}
}

func TestHealthCheck(t *testing.T) {
	r := newTestRouter(&fakeSessionService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
}
