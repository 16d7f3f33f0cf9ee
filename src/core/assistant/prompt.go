package assistant

import (
	"bytes"
	"fmt"
	"text/template"
)

const (
	SystemMessageTmpl = `
You are a medical information assistant. You answer questions using only the
reference passages provided with each question. Your answers are educational
information, never a diagnosis or a substitute for professional medical
advice, and you remind the user of this when the topic calls for it. If the
passages do not contain the answer, say that you don't know instead of
guessing.
`

	AnswerPromptTmpl = `
Use the reference passages below, delimited by <PASSAGE> tags, to answer the
question. Cite the source filename when it helps the reader find more detail.

{{range .Passages}}<PASSAGE source="{{.Source}}">
{{.Content}}
</PASSAGE>

{{end}}Question: {{.Question}}

Answer:
`

	// NoContextNote is injected as the sole passage when retrieval found nothing,
	// so the model states the gap instead of inventing support.
	NoContextNote = "No passages in the document collection matched this question. Tell the user the collection has no information on this topic."
)

// PromptData holds the fields available to the prompt templates
type PromptData struct {
	Question string
	Passages []Passage
}

// BuildPrompt renders the system message and the answer prompt for a question
// and its retrieved passages.
func BuildPrompt(question string, passages []Passage) (system string, prompt string, err error) {
	if len(passages) == 0 {
		passages = []Passage{{Content: NoContextNote}}
	}

	data := PromptData{
		Question: question,
		Passages: passages,
	}

	return executeTemplates(SystemMessageTmpl, AnswerPromptTmpl, data)
}

func executeTemplates(systemTmpl, promptTmpl string, data PromptData) (string, string, error) {
	var systemBuf, promptBuf bytes.Buffer

	sysT, err := template.New("system").Parse(systemTmpl)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse system template: %w", err)
	}
	if err := sysT.Execute(&systemBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute system template: %w", err)
	}

	prmptT, err := template.New("prompt").Parse(promptTmpl)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse prompt template: %w", err)
	}
	if err := prmptT.Execute(&promptBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	return systemBuf.String(), promptBuf.String(), nil
}

// ExecuteTemplatesForTest exposes template rendering to tests
func ExecuteTemplatesForTest(systemTmpl, promptTmpl string, data PromptData) (string, string, error) {
	return executeTemplates(systemTmpl, promptTmpl, data)
}
