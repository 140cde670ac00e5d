package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const benfordPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Benford · AuditLens</title>
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
        .container { max-width: 1000px; margin: 0 auto; padding: 0 24px; }
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
        .verdict { margin: 24px 0; padding: 16px 20px; border-radius: 10px; border: 1px solid var(--border); background: var(--bg-subtle); display: flex; justify-content: space-between; align-items: center; }
        .verdict-label { font-weight: 600; }
        .verdict.anomalous .verdict-label { color: var(--critical); }
        .verdict.conforming .verdict-label { color: var(--low); }
        .verdict-stats { color: var(--text-secondary); font-size: 13px; }
        .chart { display: flex; align-items: flex-end; gap: 14px; height: 280px; padding: 24px 0 8px; }
        .digit-col { flex: 1; display: flex; flex-direction: column; justify-content: flex-end; gap: 4px; height: 100%; }
        .bars { display: flex; gap: 4px; align-items: flex-end; flex: 1; }
        .bar { flex: 1; border-radius: 3px 3px 0 0; min-height: 2px; }
        .bar.actual { background: var(--medium); }
        .bar.expected { background: var(--text-tertiary); opacity: 0.5; }
        .bar.deviant { background: var(--critical); }
        .digit-label { text-align: center; color: var(--text-tertiary); font-size: 12px; }
        .legend { display: flex; gap: 20px; font-size: 12px; color: var(--text-secondary); padding-bottom: 24px; }
        .chip { display: inline-block; width: 10px; height: 10px; border-radius: 2px; margin-right: 6px; vertical-align: middle; }
        .empty { text-align: center; padding: 80px 24px; color: var(--text-tertiary); }
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
            <a href="/benford" class="active">Benford</a>
            <a href="/heatmap">Heatmap</a>
            <a href="/upload">Upload</a>
            <a href="/chat">Assistant</a>
            <a href="/settings">Settings</a>
            <a href="/login">Sign in</a>
        </nav>
    </div></header>
    <main class="container">
        <div class="page-header">
            <h1 class="page-title">Benford's Law</h1>
            <p class="page-desc">First-digit distribution of transaction amounts against the expected curve</p>
        </div>
        <div id="content"><div class="empty">Loading analysis...</div></div>
    </main>
    <script>
        const escapeHtml = s => String(s ?? '').replace(/[&<>"']/g, c => ({'&':'&amp;','<':'&lt;','>':'&gt;','"':'&quot;',"'":'&#39;'}[c]));
        const safeFetch = (url) => fetch(url).then(r => r.ok ? r.json() : null).catch(() => null);

        function render(data) {
            const content = document.getElementById('content');
            if (!data) { content.innerHTML = '<div class="empty">Console unreachable.</div>'; return; }
            if (!data.valid) {
                content.innerHTML = '<div class="empty">'+escapeHtml(data.error || 'Not enough transactions for the analysis.')+'</div>';
                return;
            }
            const anomalous = data.stats?.is_anomalous;
            const maxPct = Math.max(...data.distribution.map(d => Math.max(d.actual, d.expected)));
            const cols = data.distribution.map(d => {
                const deviant = Math.abs(d.actual - d.expected) > 5;
                return '<div class="digit-col"><div class="bars">'+
                    '<div class="bar '+(deviant ? 'deviant' : 'actual')+'" style="height:'+(d.actual/maxPct*100)+'%" title="actual '+d.actual.toFixed(1)+'%"></div>'+
                    '<div class="bar expected" style="height:'+(d.expected/maxPct*100)+'%" title="expected '+d.expected.toFixed(1)+'%"></div>'+
                    '</div><div class="digit-label mono">'+d.digit+'</div></div>';
            }).join('');
            content.innerHTML =
                '<div class="verdict '+(anomalous ? 'anomalous' : 'conforming')+'">'+
                    '<span class="verdict-label">'+escapeHtml(data.stats?.conclusion || (anomalous ? 'Distribution is anomalous' : 'Distribution conforms'))+'</span>'+
                    '<span class="verdict-stats mono">χ² = '+(data.stats?.chi_square ?? 0).toFixed(2)+' · p = '+(data.stats?.p_value ?? 0).toFixed(3)+' · n = '+data.total_transactions+'</span>'+
                '</div>'+
                '<div class="chart">'+cols+'</div>'+
                '<div class="legend">'+
                    '<span><span class="chip" style="background:var(--medium)"></span>Actual</span>'+
                    '<span><span class="chip" style="background:var(--text-tertiary)"></span>Expected (Benford)</span>'+
                    '<span><span class="chip" style="background:var(--critical)"></span>Deviation &gt; 5pp</span>'+
                '</div>';
        }

        safeFetch('/v1/benford').then(render);
    </script>
</body>
</html>`

func benfordPageHandler(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, benfordPageHTML)
}
