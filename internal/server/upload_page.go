package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const uploadPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Upload · AuditLens</title>
    <link rel="icon" href="data:image/svg+xml,<svg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 100 100'><text y='.9em' font-size='90'>◎</text></svg>">
    <link rel="preconnect" href="https://fonts.googleapis.com">
    <link rel="preconnect" href="https://fonts.gstatic.com" crossorigin>
    <link href="https://fonts.googleapis.com/css2?family=Inter:wght@400;500;600&family=JetBrains+Mono:wght@400;500&display=swap" rel="stylesheet">
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        :root {
            --bg: #09090b; --bg-subtle: #18181b; --border: #27272a;
            --text: #fafafa; --text-secondary: #a1a1aa; --text-tertiary: #52525b;
            --accent: #22c55e; --critical: #ef4444;
        }
        body { font-family: 'Inter', -apple-system, sans-serif; background: var(--bg); color: var(--text); min-height: 100vh; font-size: 14px; -webkit-font-smoothing: antialiased; }
        .mono { font-family: 'JetBrains Mono', monospace; }
        .container { max-width: 720px; margin: 0 auto; padding: 0 24px; }
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
        .dropzone {
            border: 2px dashed var(--border); border-radius: 12px; padding: 56px 24px;
            text-align: center; color: var(--text-secondary); cursor: pointer; margin: 24px 0;
            transition: border-color 0.15s;
        }
        .dropzone:hover, .dropzone.over { border-color: var(--text-tertiary); }
        .dropzone input { display: none; }
        .hint { font-size: 12px; color: var(--text-tertiary); margin-top: 8px; }
        .submit {
            background: var(--accent); color: #09090b; border: none; border-radius: 8px;
            padding: 12px 28px; font-size: 14px; font-weight: 600; cursor: pointer; font-family: inherit;
        }
        .submit:disabled { opacity: 0.4; cursor: default; }
        .result { margin-top: 24px; padding: 16px 20px; border-radius: 10px; border: 1px solid var(--border); background: var(--bg-subtle); display: none; }
        .result.error { border-color: var(--critical); }
        .result-line { margin: 4px 0; color: var(--text-secondary); }
        .result-line strong { color: var(--text); }
        .signin-note { padding: 14px 0; font-size: 13px; color: var(--text-tertiary); }
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
            <a href="/upload" class="active">Upload</a>
            <a href="/chat">Assistant</a>
            <a href="/settings">Settings</a>
            <a href="/login">Sign in</a>
        </nav>
    </div></header>
    <main class="container">
        <div class="page-header">
            <h1 class="page-title">Batch Scoring</h1>
            <p class="page-desc">Upload a CSV of procurement transactions for fraud scoring</p>
        </div>
        <div id="signin-note" class="signin-note" style="display:none">Uploads need a session. <a href="/login">Sign in</a></div>
        <label class="dropzone" id="dropzone">
            <input type="file" id="file" accept=".csv">
            <div id="drop-label">Drop a CSV here or click to browse</div>
            <div class="hint">Columns: transaction_id, amount, department_id, vendor_id · max 10 MB</div>
        </label>
        <button class="submit" id="submit" disabled>Score transactions</button>
        <div class="result" id="result"></div>
    </main>
    <script>
        const escapeHtml = s => String(s ?? '').replace(/[&<>"']/g, c => ({'&':'&amp;','<':'&lt;','>':'&gt;','"':'&quot;',"'":'&#39;'}[c]));
        let file = null;
        let signedIn = false;

        const zone = document.getElementById('dropzone');
        const input = document.getElementById('file');
        const submit = document.getElementById('submit');
        const result = document.getElementById('result');

        function pick(f) {
            if (!f) return;
            file = f;
            document.getElementById('drop-label').textContent = f.name + ' (' + (f.size/1024).toFixed(1) + ' KB)';
            submit.disabled = !signedIn;
        }

        input.addEventListener('change', () => pick(input.files[0]));
        zone.addEventListener('dragover', e => { e.preventDefault(); zone.classList.add('over'); });
        zone.addEventListener('dragleave', () => zone.classList.remove('over'));
        zone.addEventListener('drop', e => { e.preventDefault(); zone.classList.remove('over'); pick(e.dataTransfer.files[0]); });

        function show(html, isError) {
            result.innerHTML = html;
            result.classList.toggle('error', !!isError);
            result.style.display = 'block';
        }

        submit.addEventListener('click', () => {
            if (!file) return;
            if (file.size > 10 * 1024 * 1024) { show('<div class="result-line">File exceeds the 10 MB limit.</div>', true); return; }
            submit.disabled = true;
            submit.textContent = 'Scoring…';
            const form = new FormData();
            form.append('file', file);
            fetch('/v1/upload', {method: 'POST', body: form})
                .then(r => r.json().then(body => ({ok: r.ok, body})))
                .then(({ok, body}) => {
                    if (!ok) { show('<div class="result-line">'+escapeHtml(body.message || 'Upload failed.')+'</div>', true); return; }
                    show(
                        '<div class="result-line"><strong>'+body.total_transactions+'</strong> transactions scored</div>'+
                        '<div class="result-line"><strong>'+body.fraudulent_transactions+'</strong> flagged as likely fraud ('+body.high_risk_count+' high risk)</div>'+
                        '<div class="result-line">The <a href="/alerts" style="color:var(--text)">alert queue</a> has been refreshed.</div>'
                    );
                })
                .catch(() => show('<div class="result-line">Console unreachable.</div>', true))
                .finally(() => { submit.disabled = false; submit.textContent = 'Score transactions'; });
        });

        fetch('/v1/auth/session').then(r => r.json()).then(s => {
            signedIn = !!s?.signed_in;
            document.getElementById('signin-note').style.display = signedIn ? 'none' : 'block';
            submit.disabled = !signedIn || !file;
        }).catch(() => {});
    </script>
</body>
</html>`

func uploadPageHandler(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, uploadPageHTML)
}
