package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const entitiesPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Entities · AuditLens</title>
    <link rel="icon" href="data:image/svg+xml,<svg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 100 100'><text y='.9em' font-size='90'>◎</text></svg>">
    <link rel="preconnect" href="https://fonts.googleapis.com">
    <link rel="preconnect" href="https://fonts.gstatic.com" crossorigin>
    <link href="https://fonts.googleapis.com/css2?family=Inter:wght@400;500;600&family=JetBrains+Mono:wght@400;500&display=swap" rel="stylesheet">
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        :root {
            --bg: #09090b; --bg-subtle: #18181b; --border: #27272a;
            --text: #fafafa; --text-secondary: #a1a1aa; --text-tertiary: #52525b;
            --critical: #ef4444; --high: #f59e0b; --medium: #3b82f6; --low: #22c55e;
        }
        body { font-family: 'Inter', -apple-system, sans-serif; background: var(--bg); color: var(--text); min-height: 100vh; font-size: 14px; -webkit-font-smoothing: antialiased; }
        .mono { font-family: 'JetBrains Mono', monospace; }
        .container { max-width: 1100px; margin: 0 auto; padding: 0 24px; }
        header { border-bottom: 1px solid var(--border); padding: 16px 0; position: sticky; top: 0; background: var(--bg); z-index: 100; }
        .header-inner { display: flex; justify-content: space-between; align-items: center; }
        .logo { display: flex; align-items: center; gap: 10px; text-decoration: none; color: var(--text); }
        .logo-mark { width: 24px; height: 24px; background: var(--critical); border-radius: 6px; }
        .logo-text { font-weight: 600; font-size: 15px; }
        nav { display: flex; gap: 24px; }
        nav a { color: var(--text-secondary); text-decoration: none; font-size: 13px; }
        nav a:hover, nav a.active { color: var(--text); }
        .page-header { padding: 40px 0 20px; border-bottom: 1px solid var(--border); }
        .page-title { font-size: 24px; font-weight: 600; margin-bottom: 4px; }
        .page-desc { color: var(--text-secondary); }
        table { width: 100%; border-collapse: collapse; margin-top: 8px; }
        th { text-align: left; font-size: 11px; text-transform: uppercase; letter-spacing: 0.05em; color: var(--text-tertiary); padding: 14px 12px 10px; border-bottom: 1px solid var(--border); }
        th.num, td.num { text-align: right; }
        td { padding: 14px 12px; border-bottom: 1px solid var(--border); }
        tr:hover td { background: var(--bg-subtle); }
        .entity-name { font-weight: 500; }
        .entity-id { color: var(--text-tertiary); font-size: 12px; }
        .score-bar { display: inline-block; width: 72px; height: 5px; background: var(--bg-subtle); border-radius: 3px; vertical-align: middle; margin-right: 8px; overflow: hidden; }
        .score-fill { height: 100%; border-radius: 3px; }
        .empty { text-align: center; padding: 80px 24px; color: var(--text-tertiary); }
    </style>
</head>
<body>
    <header><div class="container header-inner">
        <a href="/" class="logo"><div class="logo-mark"></div><span class="logo-text">AuditLens</span></a>
        <nav>
            <a href="/">Dashboard</a>
            <a href="/alerts">Alerts</a>
            <a href="/entities" class="active">Entities</a>
            <a href="/departments">Departments</a>
            <a href="/network">Network</a>
            <a href="/benford">Benford</a>
            <a href="/heatmap">Heatmap</a>
            <a href="/upload">Upload</a>
            <a href="/chat">Assistant</a>
            <a href="/settings">Settings</a>
            <a href="/login">Sign in</a>
        </nav>
    </div></header>
    <main class="container">
        <div class="page-header">
            <h1 class="page-title">Flagged Vendors</h1>
            <p class="page-desc" id="desc">Vendors ranked by fraud-model risk</p>
        </div>
        <table>
            <thead><tr><th>Vendor</th><th class="num">Flags</th><th class="num">Flagged value</th><th class="num">Risk</th></tr></thead>
            <tbody id="rows"><tr><td colspan="4" class="empty">Loading...</td></tr></tbody>
        </table>
    </main>
    <script>
        const escapeHtml = s => String(s ?? '').replace(/[&<>"']/g, c => ({'&':'&amp;','<':'&lt;','>':'&gt;','"':'&quot;',"'":'&#39;'}[c]));
        const safeFetch = (url) => fetch(url).then(r => r.ok ? r.json() : null).catch(() => null);
        const formatINR = n => { const x = parseFloat(n)||0; return x >= 1e7 ? '₹'+(x/1e7).toFixed(2)+'Cr' : '₹'+(x/1e5).toFixed(2)+'L'; };
        const scoreColor = s => s >= 0.8 ? 'var(--critical)' : s >= 0.6 ? 'var(--high)' : s >= 0.4 ? 'var(--medium)' : 'var(--low)';

        function row(name, id, flags, amount, score) {
            return '<tr>'+
                '<td><div class="entity-name">'+escapeHtml(name)+'</div><div class="entity-id mono">'+escapeHtml(id)+'</div></td>'+
                '<td class="num mono">'+flags+'</td>'+
                '<td class="num mono">'+formatINR(amount)+'</td>'+
                '<td class="num"><span class="score-bar"><span class="score-fill" style="width:'+Math.round(score*100)+'%;background:'+scoreColor(score)+'"></span></span>'+
                '<span class="mono">'+Math.round(score*100)+'%</span></td>'+
            '</tr>';
        }

        function load() {
            safeFetch('/v1/entities').then(data => {
                const rows = document.getElementById('rows');
                if (!data) { rows.innerHTML = '<tr><td colspan="4" class="empty">Console unreachable.</td></tr>'; return; }
                if (data.entities?.length) {
                    rows.innerHTML = data.entities.map(e => row(e.name || e.id, e.id, e.flag_count, e.total_amount, e.risk_score)).join('');
                } else if (data.fallback?.length) {
                    document.getElementById('desc').textContent = 'Backend offline · rolled up from the cached alert feed';
                    rows.innerHTML = data.fallback.map(g => row(g.Vendor || g.VendorID, g.VendorID, g.AlertCount, g.TotalAmount, g.MaxScore)).join('');
                } else {
                    rows.innerHTML = '<tr><td colspan="4" class="empty">No flagged vendors.</td></tr>';
                }
            });
        }
        load();
        setInterval(load, 10000);
    </script>
</body>
</html>`

func entitiesPageHandler(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, entitiesPageHTML)
}
