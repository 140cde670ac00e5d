package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const departmentsPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Departments · AuditLens</title>
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
        .cards { display: grid; grid-template-columns: repeat(auto-fill, minmax(320px, 1fr)); gap: 16px; padding: 24px 0; }
        .card { background: var(--bg-subtle); border: 1px solid var(--border); border-radius: 10px; padding: 20px; }
        .card-head { display: flex; justify-content: space-between; align-items: flex-start; margin-bottom: 16px; }
        .card-name { font-weight: 600; }
        .card-id { color: var(--text-tertiary); font-size: 12px; }
        .tier-badge { padding: 3px 10px; border-radius: 4px; font-size: 11px; font-weight: 600; text-transform: uppercase; }
        .tier-CRITICAL { background: rgba(239,68,68,0.12); color: var(--critical); }
        .tier-HIGH { background: rgba(245,158,11,0.12); color: var(--high); }
        .tier-MEDIUM { background: rgba(59,130,246,0.12); color: var(--medium); }
        .tier-LOW { background: rgba(34,197,94,0.12); color: var(--low); }
        .card-stats { display: grid; grid-template-columns: 1fr 1fr 1fr; gap: 12px; }
        .stat-label { font-size: 11px; text-transform: uppercase; letter-spacing: 0.04em; color: var(--text-tertiary); }
        .stat-value { font-weight: 600; margin-top: 2px; }
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
            <a href="/departments" class="active">Departments</a>
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
            <h1 class="page-title">Departments</h1>
            <p class="page-desc" id="desc">Spending departments ranked by audit exposure</p>
        </div>
        <div class="cards" id="cards"><div class="empty">Loading...</div></div>
    </main>
    <script>
        const escapeHtml = s => String(s ?? '').replace(/[&<>"']/g, c => ({'&':'&amp;','<':'&lt;','>':'&gt;','"':'&quot;',"'":'&#39;'}[c]));
        const safeFetch = (url) => fetch(url).then(r => r.ok ? r.json() : null).catch(() => null);
        const formatINR = n => { const x = parseFloat(n)||0; return x >= 1e7 ? '₹'+(x/1e7).toFixed(2)+'Cr' : '₹'+(x/1e5).toFixed(2)+'L'; };
        const tierOf = s => s >= 0.8 ? 'CRITICAL' : s >= 0.6 ? 'HIGH' : s >= 0.4 ? 'MEDIUM' : 'LOW';

        function card(name, id, tier, flags, amount, vendors) {
            return '<div class="card">'+
                '<div class="card-head">'+
                    '<div><div class="card-name">'+escapeHtml(name)+'</div><div class="card-id mono">'+escapeHtml(id)+'</div></div>'+
                    '<span class="tier-badge tier-'+escapeHtml(tier)+'">'+escapeHtml(tier)+'</span>'+
                '</div>'+
                '<div class="card-stats">'+
                    '<div><div class="stat-label">Flags</div><div class="stat-value mono">'+flags+'</div></div>'+
                    '<div><div class="stat-label">Value</div><div class="stat-value mono">'+formatINR(amount)+'</div></div>'+
                    '<div><div class="stat-label">Vendors</div><div class="stat-value mono">'+vendors+'</div></div>'+
                '</div>'+
            '</div>';
        }

        function load() {
            safeFetch('/v1/departments').then(data => {
                const cards = document.getElementById('cards');
                if (!data) { cards.innerHTML = '<div class="empty">Console unreachable.</div>'; return; }
                if (data.departments?.length) {
                    cards.innerHTML = data.departments.map(d =>
                        card(d.name || d.id, d.id, tierOf(d.avg_score), d.flag_count, d.total_amount, d.vendor_count)).join('');
                } else if (data.fallback?.length) {
                    document.getElementById('desc').textContent = 'Backend offline · rolled up from the cached alert feed';
                    cards.innerHTML = data.fallback.map(g =>
                        card(g.Department || g.DepartmentID, g.DepartmentID, g.Tier, g.AlertCount, g.TotalAmount, g.VendorCount)).join('');
                } else {
                    cards.innerHTML = '<div class="empty">No departments flagged.</div>';
                }
            });
        }
        load();
        setInterval(load, 10000);
    </script>
</body>
</html>`

func departmentsPageHandler(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, departmentsPageHTML)
}
