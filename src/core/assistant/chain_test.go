package assistant_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"medrag/src/core/assistant"
)

type fakeRetriever struct {
	passages  []assistant.Passage
	err       error
	gotQuery  string
	gotMode   assistant.SearchMode
	gotLimit  int
	callCount int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query string, mode assistant.SearchMode, limit int) ([]assistant.Passage, error) {
	f.gotQuery = query
	f.gotMode = mode
	f.gotLimit = limit
	f.callCount++
	return f.passages, f.err
}

type fakeGenerator struct {
	completion string
	err        error
	gotModel   string
	gotSystem  string
	gotPrompt  string
}

func (f *fakeGenerator) Generate(ctx context.Context, model, system, prompt string, options map[string]interface{}) (string, error) {
	f.gotModel = model
	f.gotSystem = system
	f.gotPrompt = prompt
	return f.completion, f.err
}

type fakeHistory struct {
	saved []assistant.ChatMessage
	err   error
}

func (f *fakeHistory) SaveMessage(ctx context.Context, msg *assistant.ChatMessage) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, *msg)
	return nil
}

func (f *fakeHistory) ListMessages(ctx context.Context, sessionID string) ([]assistant.ChatMessage, error) {
	var out []assistant.ChatMessage
	for _, msg := range f.saved {
		if msg.SessionID == sessionID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func TestChainAnswer(t *testing.T) {
	retriever := &fakeRetriever{
		passages: []assistant.Passage{
			{Content: "Iron deficiency is the most common cause.", Source: "anemia.txt"},
		},
	}
	llm := &fakeGenerator{completion: "  Iron deficiency is the usual cause.  "}
	history := &fakeHistory{}

	chain := assistant.NewChain(retriever, llm, history, "test-model")

	answer, err := chain.Answer(context.Background(), "", "What causes anemia?")
	if err != nil {
		t.Fatalf("Answer returned error: %v", err)
	}

	if answer.SessionID == "" {
		t.Error("expected a generated session id")
	}
	if answer.Text != "Iron deficiency is the usual cause." {
		t.Errorf("answer text = %q, want trimmed completion", answer.Text)
	}
	if len(answer.Sources) != 1 || answer.Sources[0].Source != "anemia.txt" {
		t.Errorf("answer sources = %+v", answer.Sources)
	}

	if llm.gotModel != "test-model" {
		t.Errorf("model = %q, want test-model", llm.gotModel)
	}
	if !strings.Contains(llm.gotPrompt, "Iron deficiency is the most common cause.") {
		t.Errorf("prompt missing retrieved passage: %q", llm.gotPrompt)
	}

	if len(history.saved) != 2 {
		t.Fatalf("saved %d messages, want 2", len(history.saved))
	}
	if history.saved[0].Role != "user" || history.saved[0].Content != "What causes anemia?" {
		t.Errorf("first saved message = %+v", history.saved[0])
	}
	if history.saved[1].Role != "assistant" || history.saved[1].Content != answer.Text {
		t.Errorf("second saved message = %+v", history.saved[1])
	}
	if history.saved[0].SessionID != answer.SessionID || history.saved[1].SessionID != answer.SessionID {
		t.Error("saved messages must share the answer session id")
	}
}

func TestChainAnswerEmptyQuestion(t *testing.T) {
	chain := assistant.NewChain(&fakeRetriever{}, &fakeGenerator{}, &fakeHistory{}, "test-model")

	for _, question := range []string{"", "   ", "\n\t"} {
		_, err := chain.Answer(context.Background(), "session", question)
		if !errors.Is(err, assistant.ErrEmptyQuestion) {
			t.Errorf("Answer(%q) error = %v, want ErrEmptyQuestion", question, err)
		}
	}
}

func TestChainAnswerKeepsSessionID(t *testing.T) {
	retriever := &fakeRetriever{}
	llm := &fakeGenerator{completion: "answer"}
	history := &fakeHistory{}
	chain := assistant.NewChain(retriever, llm, history, "test-model")

	answer, err := chain.Answer(context.Background(), "session-42", "question?")
	if err != nil {
		t.Fatalf("Answer returned error: %v", err)
	}
	if answer.SessionID != "session-42" {
		t.Errorf("session id = %q, want session-42", answer.SessionID)
	}
}

func TestChainAnswerNoPassages(t *testing.T) {
	retriever := &fakeRetriever{} // retrieves nothing
	llm := &fakeGenerator{completion: "I don't have information on that."}
	chain := assistant.NewChain(retriever, llm, &fakeHistory{}, "test-model")

	answer, err := chain.Answer(context.Background(), "", "What about rare diseases?")
	if err != nil {
		t.Fatalf("Answer returned error: %v", err)
	}

	if !strings.Contains(llm.gotPrompt, assistant.NoContextNote) {
		t.Errorf("prompt must carry the no-context note when retrieval is empty: %q", llm.gotPrompt)
	}
	if len(answer.Sources) != 0 {
		t.Errorf("expected no sources, got %+v", answer.Sources)
	}
}

func TestChainAnswerRetrieverError(t *testing.T) {
	retriever := &fakeRetriever{err: errors.New("index unavailable")}
	chain := assistant.NewChain(retriever, &fakeGenerator{}, &fakeHistory{}, "test-model")

	_, err := chain.Answer(context.Background(), "", "question?")
	if err == nil || !strings.Contains(err.Error(), "index unavailable") {
		t.Errorf("error = %v, want wrapped retriever error", err)
	}
}

func TestChainSearchDefaults(t *testing.T) {
	retriever := &fakeRetriever{}
	chain := assistant.NewChain(
		retriever,
		&fakeGenerator{},
		&fakeHistory{},
		"test-model",
		assistant.WithTopK(7),
		assistant.WithSearchMode(assistant.ModeHybrid),
	)

	if _, err := chain.Search(context.Background(), "query", "", 0); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}

	if retriever.gotLimit != 7 {
		t.Errorf("limit = %d, want configured top-k 7", retriever.gotLimit)
	}
	if retriever.gotMode != assistant.ModeHybrid {
		t.Errorf("mode = %q, want configured hybrid", retriever.gotMode)
	}

	if _, err := chain.Search(context.Background(), "query", assistant.ModeKeyword, 3); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if retriever.gotLimit != 3 || retriever.gotMode != assistant.ModeKeyword {
		t.Errorf("explicit arguments not honored: mode=%q limit=%d", retriever.gotMode, retriever.gotLimit)
	}
}

func TestParseSearchMode(t *testing.T) {
	tests := []struct {
		input   string
		want    assistant.SearchMode
		wantErr bool
	}{
		{input: "", want: assistant.ModeVector},
		{input: "vector", want: assistant.ModeVector},
		{input: "keyword", want: assistant.ModeKeyword},
		{input: "hybrid", want: assistant.ModeHybrid},
		{input: "semantic", wantErr: true},
	}

	for _, tt := range tests {
		got, err := assistant.ParseSearchMode(tt.input)
		if tt.wantErr {
			if !errors.Is(err, assistant.ErrInvalidMode) {
				t.Errorf("ParseSearchMode(%q) error = %v, want ErrInvalidMode", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSearchMode(%q) returned error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSearchMode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
