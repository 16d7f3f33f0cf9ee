package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	handlers "medrag/handler/http"
	"medrag/src/core/assistant"
)

type fakeAssistant struct {
	answer   *assistant.Answer
	passages []assistant.Passage
	history  []assistant.ChatMessage
	err      error
}

func (f *fakeAssistant) Answer(ctx context.Context, sessionID, question string) (*assistant.Answer, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.answer, nil
}

func (f *fakeAssistant) Search(ctx context.Context, query string, mode assistant.SearchMode, limit int) ([]assistant.Passage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.passages, nil
}

func (f *fakeAssistant) History(ctx context.Context, sessionID string) ([]assistant.ChatMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.history, nil
}

func newTestRouter(svc assistant.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := handlers.NewHandler(svc, nil, nil, nil, nil, nil)
	handler.RegisterRoutes(r)
	return r
}

func TestGenerateCompletion(t *testing.T) {
	want := &assistant.Answer{
		SessionID: "session-1",
		MessageID: "message-1",
		Text:      "Iron deficiency is the most common cause.",
		Sources: []assistant.Passage{
			{Content: "Iron deficiency...", Source: "anemia.txt"},
		},
	}
	r := newTestRouter(&fakeAssistant{answer: want})

	body, _ := json.Marshal(map[string]string{
		"sessionId": "session-1",
		"question":  "What causes anemia?",
	})
	req := httptest.NewRequest(nethttp.MethodPost, "/api/v1/chat/completions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != nethttp.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}

	var got assistant.Answer
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.SessionID != want.SessionID || got.Text != want.Text {
		t.Errorf("response = %+v, want %+v", got, want)
	}
	if len(got.Sources) != 1 || got.Sources[0].Source != "anemia.txt" {
		t.Errorf("sources = %+v", got.Sources)
	}
}

func TestGenerateCompletionMissingQuestion(t *testing.T) {
	r := newTestRouter(&fakeAssistant{})

	req := httptest.NewRequest(nethttp.MethodPost, "/api/v1/chat/completions", bytes.NewReader([]byte(`{"sessionId":"s"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != nethttp.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGenerateCompletionEmptyQuestionError(t *testing.T) {
	r := newTestRouter(&fakeAssistant{err: assistant.ErrEmptyQuestion})

	req := httptest.NewRequest(nethttp.MethodPost, "/api/v1/chat/completions", bytes.NewReader([]byte(`{"question":"  "}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != nethttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var resp handlers.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Code != "EMPTY_QUESTION" {
		t.Errorf("error code = %q, want EMPTY_QUESTION", resp.Code)
	}
}

func TestGetChatHistoryRequiresSession(t *testing.T) {
	r := newTestRouter(&fakeAssistant{})

	req := httptest.NewRequest(nethttp.MethodGet, "/api/v1/chat/history", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != nethttp.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetChatHistory(t *testing.T) {
	history := []assistant.ChatMessage{
		{SessionID: "s", Role: "user", Content: "question"},
		{SessionID: "s", Role: "assistant", Content: "answer"},
	}
	r := newTestRouter(&fakeAssistant{history: history})

	req := httptest.NewRequest(nethttp.MethodGet, "/api/v1/chat/history?sessionId=s", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != nethttp.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var got []assistant.ChatMessage
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got) != 2 || got[0].Role != "user" || got[1].Role != "assistant" {
		t.Errorf("history = %+v", got)
	}
}

func TestSearchInvalidMode(t *testing.T) {
	r := newTestRouter(&fakeAssistant{})

	req := httptest.NewRequest(nethttp.MethodPost, "/api/v1/search", bytes.NewReader([]byte(`{"query":"anemia","mode":"semantic"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != nethttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var resp handlers.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Code != "INVALID_SEARCH_MODE" {
		t.Errorf("error code = %q, want INVALID_SEARCH_MODE", resp.Code)
	}
}

func TestSearch(t *testing.T) {
	passages := []assistant.Passage{
		{Content: "Iron deficiency...", Source: "anemia.txt", Score: 0.9},
	}
	r := newTestRouter(&fakeAssistant{passages: passages})

	req := httptest.NewRequest(nethttp.MethodPost, "/api/v1/search", bytes.NewReader([]byte(`{"query":"anemia","mode":"hybrid","limit":5}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != nethttp.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var got []assistant.Passage
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got) != 1 || got[0].Source != "anemia.txt" {
		t.Errorf("results = %+v", got)
	}
}
