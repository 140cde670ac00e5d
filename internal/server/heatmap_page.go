package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const heatmapPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Heatmap · AuditLens</title>
    <link rel="icon" href="data:image/svg+xml,<svg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 100 100'><text y='.9em' font-size='90'>◎</text></svg>">
    <link rel="preconnect" href="https://fonts.googleapis.com">
    <link rel="preconnect" href="https://fonts.gstatic.com" crossorigin>
    <link href="https://fonts.googleapis.com/css2?family=Inter:wght@400;500;600&family=JetBrains+Mono:wght@400;500&display=swap" rel="stylesheet">
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        :root {
            --bg: #09090b; --bg-subtle: #18181b; --border: #27272a;
            --text: #fafafa; --text-secondary: #a1a1aa; --text-tertiary: #52525b;
            --critical: #ef4444;
        }
        body { font-family: 'Inter', -apple-system, sans-serif; background: var(--bg); color: var(--text); min-height: 100vh; font-size: 14px; -webkit-font-smoothing: antialiased; }
        .mono { font-family: 'JetBrains Mono', monospace; }
        .container { max-width: 1200px; margin: 0 auto; padding: 0 24px; }
        header { border-bottom: 1px solid var(--border); padding: 16px 0; position: sticky; top: 0; background: var(--bg); z-index: 100; }
        .header-inner { display: flex; justify-content: space-between; align-items: center; }
        .logo { display: flex; align-items: center; gap: 10px; text-decoration: none; color: var(--text); }
        .logo-mark { width: 24px; height: 24px; background: var(--critical); border-radius: 6px; }
        .logo-text { font-weight: 600; font-size: 15px; }
        nav { display: flex; gap: 24px; }
        nav a { color: var(--text-secondary); text-decoration: none; font-size: 13px; }
        nav a:hover, nav a.active { color: var(--text); }
        .page-header { padding: 40px 0 20px; border-bottom: 1px solid var(--border); display: flex; justify-content: space-between; align-items: flex-end; }
        .page-title { font-size: 24px; font-weight: 600; margin-bottom: 4px; }
        .page-desc { color: var(--text-secondary); }
        .toggle { display: flex; border: 1px solid var(--border); border-radius: 8px; overflow: hidden; }
        .toggle button {
            background: var(--bg); color: var(--text-secondary); border: none;
            padding: 8px 18px; font-size: 13px; cursor: pointer; font-family: inherit;
        }
        .toggle button.active { background: var(--bg-subtle); color: var(--text); }
        .cells { display: grid; grid-template-columns: repeat(auto-fill, minmax(180px, 1fr)); gap: 10px; padding: 24px 0; }
        .cell { border-radius: 10px; padding: 16px; border: 1px solid var(--border); }
        .cell-name { font-weight: 600; font-size: 13px; margin-bottom: 8px; }
        .cell-meta { font-size: 12px; color: rgba(255,255,255,0.75); }
        .empty { text-align: center; padding: 80px 24px; color: var(--text-tertiary); grid-column: 1 / -1; }
    </style>
</head>
<body>
    <header><div class="container header-inner">
        <a href="/" class="logo"><div class="logo-mark"></div><span class="logo-text">AuditLens</span></a>
        <nav>
            <a href="/">Dashboard</a>
            <a href="/alerts">Alerts</a>
            <a href="/entities">Entities</a>
            <a href="/departments">Departments</a>
            <a href="/network">Network</a>
            <a href="/benford">Benford</a>
            <a href="/heatmap" class="active">Heatmap</a>
            <a href="/upload">Upload</a>
            <a href="/chat">Assistant</a>
            <a href="/settings">Settings</a>
            <a href="/login">Sign in</a>
        </nav>
    </div></header>
    <main class="container">
        <div class="page-header">
            <div>
                <h1 class="page-title">Risk Heatmap</h1>
                <p class="page-desc">Geographic and departmental concentration of flagged spending</p>
            </div>
            <div class="toggle">
                <button id="btn-districts" class="active">Districts</button>
                <button id="btn-departments">Departments</button>
            </div>
        </div>
        <div class="cells" id="cells"><div class="empty">Loading...</div></div>
    </main>
    <script>
        const escapeHtml = s => String(s ?? '').replace(/[&<>"']/g, c => ({'&':'&amp;','<':'&lt;','>':'&gt;','"':'&quot;',"'":'&#39;'}[c]));
        const safeFetch = (url) => fetch(url).then(r => r.ok ? r.json() : null).catch(() => null);
        const formatINR = n => { const x = parseFloat(n)||0; return x >= 1e7 ? '₹'+(x/1e7).toFixed(2)+'Cr' : '₹'+(x/1e5).toFixed(2)+'L'; };

        // Risk index 0..1 drives the cell background from near-transparent to solid red.
        const heat = r => 'rgba(239, 68, 68, '+(0.06 + Math.min(Math.max(r, 0), 1)*0.72).toFixed(2)+')';

        let mode = 'districts';

        function render(cells) {
            const el = document.getElementById('cells');
            if (!cells?.length) { el.innerHTML = '<div class="empty">No heatmap data.</div>'; return; }
            const sorted = [...cells].sort((a, b) => b.risk_index - a.risk_index);
            el.innerHTML = sorted.map(c =>
                '<div class="cell" style="background:'+heat(c.risk_index)+'">'+
                    '<div class="cell-name">'+escapeHtml(c.name || c.id)+'</div>'+
                    '<div class="cell-meta">'+c.flag_count+' flags · '+formatINR(c.total_value)+'</div>'+
                    '<div class="cell-meta mono">risk '+Math.round((c.risk_index||0)*100)+'%</div>'+
                '</div>'
            ).join('');
        }

        function load() {
            safeFetch('/v1/risk/' + mode).then(data => render(data?.cells));
        }

        function setMode(next) {
            mode = next;
            document.getElementById('btn-districts').classList.toggle('active', next === 'districts');
            document.getElementById('btn-departments').classList.toggle('active', next === 'departments');
            load();
        }

        document.getElementById('btn-districts').addEventListener('click', () => setMode('districts'));
        document.getElementById('btn-departments').addEventListener('click', () => setMode('departments'));
        load();
        setInterval(load, 15000);
    </script>
</body>
</html>`

func heatmapPageHandler(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, heatmapPageHTML)
}
