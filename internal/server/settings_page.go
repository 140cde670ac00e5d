package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const settingsPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Settings · AuditLens</title>
    <link rel="icon" href="data:image/svg+xml,<svg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 100 100'><text y='.9em' font-size='90'>◎</text></svg>">
    <link rel="preconnect" href="https://fonts.googleapis.com">
    <link rel="preconnect" href="https://fonts.gstatic.com" crossorigin>
    <link href="https://fonts.googleapis.com/css2?family=Inter:wght@400;500;600&family=JetBrains+Mono:wght@400;500&display=swap" rel="stylesheet">
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        :root {
            --bg: #09090b; --bg-subtle: #18181b; --border: #27272a;
            --text: #fafafa; --text-secondary: #a1a1aa; --text-tertiary: #52525b;
            --accent: #22c55e; --critical: #ef4444; --high: #f59e0b; --medium: #3b82f6;
        }
        body { font-family: 'Inter', -apple-system, sans-serif; background: var(--bg); color: var(--text); min-height: 100vh; font-size: 14px; -webkit-font-smoothing: antialiased; }
        .mono { font-family: 'JetBrains Mono', monospace; }
        .container { max-width: 640px; margin: 0 auto; padding: 0 24px; }
        header { border-bottom: 1px solid var(--border); padding: 16px 0; position: sticky; top: 0; background: var(--bg); z-index: 100; }
        .header-inner { display: flex; justify-content: space-between; align-items: center; max-width: 1200px; margin: 0 auto; padding: 0 24px; }
        .logo { display: flex; align-items: center; gap: 10px; text-decoration: none; color: var(--text); }
        .logo-mark { width: 24px; height: 24px; background: var(--critical); border-radius: 6px; }
        .logo-text { font-weight: 600; font-size: 15px; }
        nav { display: flex; gap: 24px; }
        nav a { color: var(--text-secondary); text-decoration: none; font-size: 13px; }
        nav a:hover, nav a.active { color: var(--text); }
        .page-header { padding: 40px 0 20px; }
        .page-title { font-size: 24px; font-weight: 600; margin-bottom: 4px; }
        .page-desc { color: var(--text-secondary); }
        .section { margin: 24px 0; padding: 20px; background: var(--bg-subtle); border: 1px solid var(--border); border-radius: 10px; }
        .section-title { font-size: 12px; text-transform: uppercase; letter-spacing: 0.05em; color: var(--text-tertiary); margin-bottom: 16px; }
        .field { display: grid; grid-template-columns: 1fr 120px; align-items: center; gap: 12px; margin: 12px 0; }
        .field label { color: var(--text-secondary); }
        .field .swatch { display: inline-block; width: 10px; height: 10px; border-radius: 2px; margin-right: 8px; vertical-align: middle; }
        .field input {
            background: var(--bg); color: var(--text); border: 1px solid var(--border);
            border-radius: 6px; padding: 8px 10px; font-size: 14px; font-family: 'JetBrains Mono', monospace;
            text-align: right; width: 100%;
        }
        .field input:focus { outline: none; border-color: var(--text-tertiary); }
        .actions { display: flex; gap: 10px; margin-top: 24px; }
        .save { background: var(--accent); color: #09090b; border: none; border-radius: 8px; padding: 11px 26px; font-weight: 600; cursor: pointer; font-family: inherit; }
        .reset { background: none; border: 1px solid var(--border); color: var(--text-secondary); border-radius: 8px; padding: 11px 20px; cursor: pointer; font-family: inherit; }
        .notice { margin-top: 16px; font-size: 13px; display: none; }
        .notice.ok { color: var(--accent); }
        .notice.error { color: var(--critical); }
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
            <a href="/chat">Assistant</a>
            <a href="/settings" class="active">Settings</a>
            <a href="/login">Sign in</a>
        </nav>
    </div></header>
    <main class="container">
        <div class="page-header">
            <h1 class="page-title">Console Settings</h1>
            <p class="page-desc">Risk tier thresholds and feed behaviour</p>
        </div>
        <div class="section">
            <div class="section-title">Risk tiers</div>
            <div class="field">
                <label><span class="swatch" style="background:var(--critical)"></span>Critical at score ≥</label>
                <input id="critical_min" type="number" step="0.05" min="0" max="1">
            </div>
            <div class="field">
                <label><span class="swatch" style="background:var(--high)"></span>High at score ≥</label>
                <input id="high_min" type="number" step="0.05" min="0" max="1">
            </div>
            <div class="field">
                <label><span class="swatch" style="background:var(--medium)"></span>Medium at score ≥</label>
                <input id="medium_min" type="number" step="0.05" min="0" max="1">
            </div>
        </div>
        <div class="section">
            <div class="section-title">Feed</div>
            <div class="field">
                <label>Poll interval (seconds)</label>
                <input id="poll_interval_secs" type="number" step="1" min="1">
            </div>
            <div class="field">
                <label>Alerts fetched per poll</label>
                <input id="feed_limit" type="number" step="50" min="1" max="10000">
            </div>
        </div>
        <div class="actions">
            <button class="save" id="save">Save settings</button>
            <button class="reset" id="reset">Reset to defaults</button>
        </div>
        <div class="notice" id="notice"></div>
    </main>
    <script>
        const fields = ['critical_min', 'high_min', 'medium_min', 'poll_interval_secs', 'feed_limit'];

        function fill(s) {
            fields.forEach(f => { document.getElementById(f).value = s[f]; });
        }

        function notify(text, ok) {
            const n = document.getElementById('notice');
            n.textContent = text;
            n.className = 'notice ' + (ok ? 'ok' : 'error');
            n.style.display = 'block';
            setTimeout(() => { n.style.display = 'none'; }, 4000);
        }

        function load() {
            fetch('/v1/settings').then(r => r.json()).then(fill).catch(() => notify('Could not load settings.', false));
        }

        document.getElementById('save').addEventListener('click', () => {
            const body = {};
            fields.forEach(f => { body[f] = parseFloat(document.getElementById(f).value); });
            fetch('/v1/settings', {
                method: 'PUT',
                headers: {'Content-Type': 'application/json'},
                body: JSON.stringify(body),
            }).then(r => r.json().then(data => ({ok: r.ok, data})))
              .then(({ok, data}) => {
                if (!ok) { notify(data.message || 'Settings rejected.', false); return; }
                fill(data);
                notify('Settings saved.', true);
            }).catch(() => notify('Console unreachable.', false));
        });

        document.getElementById('reset').addEventListener('click', () => {
            fetch('/v1/settings/reset', {method: 'POST'}).then(r => r.json()).then(s => {
                fill(s);
                notify('Defaults restored.', true);
            }).catch(() => notify('Console unreachable.', false));
        });

        load();
    </script>
</body>
</html>`

func settingsPageHandler(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, settingsPageHTML)
}
