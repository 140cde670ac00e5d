package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const chatPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Assistant · AuditLens</title>
    <link rel="icon" href="data:image/svg+xml,<svg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 100 100'><text y='.9em' font-size='90'>◎</text></svg>">
    <link rel="preconnect" href="https://fonts.googleapis.com">
    <link rel="preconnect" href="https://fonts.gstatic.com" crossorigin>
    <link href="https://fonts.googleapis.com/css2?family=Inter:wght@400;500;600&family=JetBrains+Mono:wght@400;500&display=swap" rel="stylesheet">
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        :root {
            --bg: #09090b; --bg-subtle: #18181b; --border: #27272a;
            --text: #fafafa; --text-secondary: #a1a1aa; --text-tertiary: #52525b;
            --accent: #22c55e; --critical: #ef4444; --medium: #3b82f6;
        }
        body { font-family: 'Inter', -apple-system, sans-serif; background: var(--bg); color: var(--text); min-height: 100vh; font-size: 14px; -webkit-font-smoothing: antialiased; }
        .mono { font-family: 'JetBrains Mono', monospace; }
        .container { max-width: 820px; margin: 0 auto; padding: 0 24px; }
        header { border-bottom: 1px solid var(--border); padding: 16px 0; position: sticky; top: 0; background: var(--bg); z-index: 100; }
        .header-inner { display: flex; justify-content: space-between; align-items: center; max-width: 1200px; margin: 0 auto; padding: 0 24px; }
        .logo { display: flex; align-items: center; gap: 10px; text-decoration: none; color: var(--text); }
        .logo-mark { width: 24px; height: 24px; background: var(--critical); border-radius: 6px; }
        .logo-text { font-weight: 600; font-size: 15px; }
        nav { display: flex; gap: 24px; }
        nav a { color: var(--text-secondary); text-decoration: none; font-size: 13px; }
        nav a:hover, nav a.active { color: var(--text); }
        .page-header { padding: 32px 0 16px; display: flex; justify-content: space-between; align-items: flex-end; }
        .page-title { font-size: 24px; font-weight: 600; margin-bottom: 4px; }
        .page-desc { color: var(--text-secondary); }
        .clear-btn { background: none; border: 1px solid var(--border); color: var(--text-tertiary); border-radius: 6px; padding: 6px 14px; font-size: 12px; cursor: pointer; font-family: inherit; }
        .clear-btn:hover { color: var(--text-secondary); }
        .transcript { padding: 16px 0; min-height: 320px; }
        .msg { margin: 12px 0; display: flex; }
        .msg.user { justify-content: flex-end; }
        .bubble { max-width: 75%; padding: 12px 16px; border-radius: 12px; line-height: 1.5; white-space: pre-wrap; }
        .msg.user .bubble { background: var(--medium); color: #fff; border-bottom-right-radius: 4px; }
        .msg.assistant .bubble { background: var(--bg-subtle); border: 1px solid var(--border); border-bottom-left-radius: 4px; }
        .msg.error .bubble { background: rgba(239,68,68,0.1); border: 1px solid var(--critical); color: var(--critical); }
        .sources { margin-top: 8px; font-size: 11px; color: var(--text-tertiary); }
        .composer { position: sticky; bottom: 0; background: var(--bg); padding: 16px 0 24px; display: flex; gap: 10px; border-top: 1px solid var(--border); }
        .composer textarea {
            flex: 1; background: var(--bg-subtle); color: var(--text); border: 1px solid var(--border);
            border-radius: 8px; padding: 12px 14px; font-size: 14px; font-family: inherit; resize: none; height: 48px;
        }
        .composer textarea:focus { outline: none; border-color: var(--text-tertiary); }
        .send { background: var(--accent); color: #09090b; border: none; border-radius: 8px; padding: 0 24px; font-weight: 600; cursor: pointer; font-family: inherit; }
        .send:disabled { opacity: 0.4; cursor: default; }
        .empty { text-align: center; padding: 64px 24px; color: var(--text-tertiary); }
        .signin-note { text-align: center; padding: 10px; font-size: 12px; color: var(--text-tertiary); }
        .signin-note a { color: var(--text-secondary); }
    </style>
</head>
<body>
    <header><div class="header-inner">
        <a href="/" class="logo"><div class="logo-mark"></div><span class="logo-text">AuditLens</span></a>
        <nav>
            <a href="/">Dashboard</a>
            <a href="/alerts">Alerts</a>
            <a href="/entities">Entities</a>
            <a href="/departments">Departments</a>
            <a href="/network">Network</a>
            <a href="/benford">Benford</a>
            <a href="/heatmap">Heatmap</a>
            <a href="/upload">Upload</a>
            <a href="/chat" class="active">Assistant</a>
            <a href="/settings">Settings</a>
            <a href="/login">Sign in</a>
        </nav>
    </div></header>
    <main class="container">
        <div class="page-header">
            <div>
                <h1 class="page-title">Audit Assistant</h1>
                <p class="page-desc">Ask questions about the flagged transactions</p>
            </div>
            <button class="clear-btn" id="clear">Clear conversation</button>
        </div>
        <div id="signin-note" class="signin-note" style="display:none">The assistant needs a session. <a href="/login">Sign in</a></div>
        <div class="transcript" id="transcript"><div class="empty">Ask about vendors, departments, or specific alerts.</div></div>
        <div class="composer">
            <textarea id="input" placeholder="e.g. Which vendor has the most critical alerts this month?" maxlength="2000"></textarea>
            <button class="send" id="send" disabled>Send</button>
        </div>
    </main>
    <script>
        const escapeHtml = s => String(s ?? '').replace(/[&<>"']/g, c => ({'&':'&amp;','<':'&lt;','>':'&gt;','"':'&quot;',"'":'&#39;'}[c]));
        let signedIn = false;
        let busy = false;

        const transcript = document.getElementById('transcript');
        const input = document.getElementById('input');
        const send = document.getElementById('send');

        function renderMessage(m) {
            const sources = m.sources?.length
                ? '<div class="sources">Sources: '+m.sources.map(escapeHtml).join(', ')+'</div>'
                : '';
            return '<div class="msg '+escapeHtml(m.role)+'"><div class="bubble">'+escapeHtml(m.text)+sources+'</div></div>';
        }

        function renderTranscript(messages) {
            transcript.innerHTML = messages?.length
                ? messages.map(renderMessage).join('')
                : '<div class="empty">Ask about vendors, departments, or specific alerts.</div>';
            transcript.scrollTop = transcript.scrollHeight;
            window.scrollTo(0, document.body.scrollHeight);
        }

        function refresh() {
            fetch('/v1/chat').then(r => r.ok ? r.json() : null).then(data => {
                if (data) renderTranscript(data.messages);
            }).catch(() => {});
        }

        function ask() {
            const text = input.value.trim();
            if (!text || busy || !signedIn) return;
            busy = true;
            send.disabled = true;
            input.value = '';
            transcript.insertAdjacentHTML('beforeend', renderMessage({role: 'user', text}));
            window.scrollTo(0, document.body.scrollHeight);
            fetch('/v1/chat', {
                method: 'POST',
                headers: {'Content-Type': 'application/json'},
                body: JSON.stringify({message: text}),
            }).then(() => refresh()).catch(() => refresh())
              .finally(() => { busy = false; send.disabled = !signedIn; });
        }

        send.addEventListener('click', ask);
        input.addEventListener('keydown', e => { if (e.key === 'Enter' && !e.shiftKey) { e.preventDefault(); ask(); } });
        document.getElementById('clear').addEventListener('click', () => {
            if (!signedIn) return;
            fetch('/v1/chat', {method: 'DELETE'}).then(() => refresh());
        });

        fetch('/v1/auth/session').then(r => r.json()).then(s => {
            signedIn = !!s?.signed_in;
            send.disabled = !signedIn;
            document.getElementById('signin-note').style.display = signedIn ? 'none' : 'block';
            if (signedIn) refresh();
        }).catch(() => {});
    </script>
</body>
</html>`

func chatPageHandler(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, chatPageHTML)
}
