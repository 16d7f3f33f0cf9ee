package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ChatPage serves the built-in single page chat client.
func (h *Handler) ChatPage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(chatPageHTML))
}

const chatPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Health Assistant</title>
<style>
  body { font-family: system-ui, sans-serif; margin: 0; background: #f5f6f8; }
  .wrap { max-width: 720px; margin: 0 auto; padding: 1rem; display: flex; flex-direction: column; height: 100vh; box-sizing: border-box; }
  h1 { font-size: 1.25rem; margin: 0.25rem 0; }
  .disclaimer { background: #fff4e5; border: 1px solid #f0c36d; border-radius: 6px; padding: 0.5rem 0.75rem; font-size: 0.85rem; }
  .examples { display: flex; flex-wrap: wrap; gap: 0.4rem; margin-top: 0.5rem; }
  .examples button { padding: 0.35rem 0.7rem; border: 1px solid #c4d3ea; border-radius: 999px; background: #eef3fb; color: #1f3a5f; font-size: 0.8rem; cursor: pointer; }
  .examples button:hover { background: #dbe7f7; }
  #messages { flex: 1; overflow-y: auto; margin: 1rem 0; display: flex; flex-direction: column; gap: 0.5rem; }
  .msg { max-width: 85%; padding: 0.5rem 0.75rem; border-radius: 10px; white-space: pre-wrap; }
  .user { align-self: flex-end; background: #d0e2ff; }
  .assistant { align-self: flex-start; background: #ffffff; border: 1px solid #e0e0e0; }
  .sources { font-size: 0.75rem; color: #666; margin-top: 0.35rem; }
  form { display: flex; gap: 0.5rem; }
  input { flex: 1; padding: 0.6rem; border: 1px solid #ccc; border-radius: 6px; }
  button { padding: 0.6rem 1.2rem; border: 0; border-radius: 6px; background: #1f6feb; color: #fff; cursor: pointer; }
  button:disabled { background: #9bb8e8; }
</style>
</head>
<body>
<div class="wrap">
  <h1>Health Assistant</h1>
  <div class="disclaimer">This assistant provides general health information for educational purposes only. It is not a substitute for professional medical advice, diagnosis, or treatment.</div>
  <div class="examples">
    <button type="button">What are the symptoms of diabetes?</button>
    <button type="button">How to prevent heart disease?</button>
    <button type="button">What causes high blood pressure?</button>
    <button type="button">Treatment options for migraine</button>
  </div>
  <div id="messages"></div>
  <form id="chat-form">
    <input id="question" type="text" placeholder="Ask a health question..." autocomplete="off" required>
    <button id="send" type="submit">Send</button>
  </form>
</div>
<script>
  const messages = document.getElementById('messages');
  const form = document.getElementById('chat-form');
  const input = document.getElementById('question');
  const send = document.getElementById('send');
  let sessionId = '';

  function addMessage(role, text, sources) {
    const div = document.createElement('div');
    div.className = 'msg ' + role;
    div.textContent = text;
    if (sources && sources.length > 0) {
      const src = document.createElement('div');
      src.className = 'sources';
      const names = [...new Set(sources.map(s => s.source))];
      src.textContent = 'Sources: ' + names.join(', ');
      div.appendChild(src);
    }
    messages.appendChild(div);
    messages.scrollTop = messages.scrollHeight;
  }

  document.querySelectorAll('.examples button').forEach((btn) => {
    btn.addEventListener('click', () => {
      input.value = btn.textContent;
      form.requestSubmit();
    });
  });

  form.addEventListener('submit', async (e) => {
    e.preventDefault();
    const question = input.value.trim();
    if (!question) return;
    addMessage('user', question);
    input.value = '';
    send.disabled = true;
    try {
      const resp = await fetch('/api/v1/chat/completions', {
        method: 'POST',
        headers: { 'Content-Type': 'application/json' },
        body: JSON.stringify({ sessionId, question })
      });
      const data = await resp.json();
      if (!resp.ok) {
        addMessage('assistant', 'Error: ' + (data.message || resp.statusText));
      } else {
        sessionId = data.sessionId;
        addMessage('assistant', data.text, data.sources);
      }
    } catch (err) {
      addMessage('assistant', 'Request failed: ' + err);
    } finally {
      send.disabled = false;
      input.focus();
    }
  });
</script>
</body>
</html>
`
