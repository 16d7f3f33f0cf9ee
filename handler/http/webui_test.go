package http_test

import (
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestChatPage(t *testing.T) {
	r := newTestRouter(&fakeAssistant{})

	req := httptest.NewRequest(nethttp.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != nethttp.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q, want text/html", ct)
	}

	body := w.Body.String()
	if !strings.Contains(body, "educational purposes only") {
		t.Error("chat page missing the medical disclaimer")
	}
	for _, example := range []string{
		"What are the symptoms of diabetes?",
		"How to prevent heart disease?",
		"What causes high blood pressure?",
		"Treatment options for migraine",
	} {
		if !strings.Contains(body, example) {
			t.Errorf("chat page missing example question %q", example)
		}
	}
}
