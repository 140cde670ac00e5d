package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>AuditLens</title>
    <meta name="description" content="Procurement fraud monitoring console">
    <link rel="icon" href="data:image/svg+xml,<svg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 100 100'><text y='.9em' font-size='90'>◎</text></svg>">
    <link rel="preconnect" href="https://fonts.googleapis.com">
    <link rel="preconnect" href="https://fonts.gstatic.com" crossorigin>
    <link href="https://fonts.googleapis.com/css2?family=Inter:wght@400;500;600&family=JetBrains+Mono:wght@400;500&display=swap" rel="stylesheet">
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        :root {
            --bg: #09090b; --bg-subtle: #18181b; --border: #27272a;
            --text: #fafafa; --text-secondary: #a1a1aa; --text-tertiary: #52525b;
            --accent: #22c55e;
            --critical: #ef4444; --high: #f59e0b; --medium: #3b82f6; --low: #22c55e;
        }
        body {
            font-family: 'Inter', -apple-system, sans-serif;
            background: var(--bg); color: var(--text);
            min-height: 100vh; font-size: 14px; line-height: 1.5;
            -webkit-font-smoothing: antialiased;
        }
        .mono { font-family: 'JetBrains Mono', monospace; }
        .container { max-width: 1400px; margin: 0 auto; padding: 0 24px; }
        header {
            border-bottom: 1px solid var(--border); padding: 16px 0;
            position: sticky; top: 0; background: var(--bg); z-index: 100;
        }
        .header-inner { display: flex; justify-content: space-between; align-items: center; }
        .logo { display: flex; align-items: center; gap: 10px; text-decoration: none; color: var(--text); }
        .logo-mark { width: 24px; height: 24px; background: var(--critical); border-radius: 6px; }
        .logo-text { font-weight: 600; font-size: 15px; }
        nav { display: flex; gap: 24px; }
        nav a { color: var(--text-secondary); text-decoration: none; font-size: 13px; transition: color 0.15s; }
        nav a:hover, nav a.active { color: var(--text); }

        .hero { padding: 48px 0; border-bottom: 1px solid var(--border); display: flex; justify-content: space-between; align-items: flex-end; }
        .hero-label { font-size: 12px; text-transform: uppercase; letter-spacing: 0.05em; color: var(--text-tertiary); margin-bottom: 8px; }
        .hero-value { font-size: 56px; font-weight: 600; letter-spacing: -0.02em; line-height: 1; }
        .conn-badge {
            display: flex; align-items: center; gap: 8px;
            background: var(--bg-subtle); border: 1px solid var(--border);
            padding: 8px 14px; border-radius: 20px; font-size: 13px; color: var(--text-secondary);
        }
        .conn-dot { width: 8px; height: 8px; background: var(--accent); border-radius: 50%; animation: pulse 2s ease-in-out infinite; }
        .conn-dot.offline { background: var(--critical); animation: none; }
        @keyframes pulse { 0%, 100% { opacity: 1; } 50% { opacity: 0.4; } }

        .kpi-grid { display: grid; grid-template-columns: repeat(4, 1fr); gap: 1px; background: var(--border); margin: 0 -24px; border-bottom: 1px solid var(--border); }
        .kpi { background: var(--bg); padding: 24px; }
        .kpi-label { font-size: 12px; text-transform: uppercase; letter-spacing: 0.05em; color: var(--text-tertiary); margin-bottom: 8px; }
        .kpi-value { font-size: 28px; font-weight: 600; }
        .kpi-value.critical { color: var(--critical); }
        .kpi-value.high { color: var(--high); }

        .grid { display: grid; grid-template-columns: 1fr 380px; gap: 1px; background: var(--border); margin: 0 -24px; }
        .grid > * { background: var(--bg); padding: 24px; }
        .section-title { font-size: 12px; text-transform: uppercase; letter-spacing: 0.05em; color: var(--text-tertiary); margin-bottom: 20px; }

        .alert-row {
            display: grid; grid-template-columns: auto 1fr auto auto;
            gap: 14px; padding: 14px 0; border-bottom: 1px solid var(--border); align-items: center;
        }
        .alert-row:last-child { border-bottom: none; }
        .tier-badge {
            padding: 3px 10px; border-radius: 4px; font-size: 11px; font-weight: 600;
            text-transform: uppercase; letter-spacing: 0.04em;
        }
        .tier-CRITICAL { background: rgba(239,68,68,0.12); color: var(--critical); }
        .tier-HIGH { background: rgba(245,158,11,0.12); color: var(--high); }
        .tier-MEDIUM { background: rgba(59,130,246,0.12); color: var(--medium); }
        .tier-LOW { background: rgba(34,197,94,0.12); color: var(--low); }
        .alert-vendor { font-weight: 500; }
        .alert-dept { color: var(--text-tertiary); font-size: 12px; }
        .alert-amount { font-weight: 600; text-align: right; }
        .alert-score { color: var(--text-secondary); font-size: 13px; text-align: right; }

        .chart { display: flex; align-items: flex-end; gap: 6px; height: 140px; margin-bottom: 8px; }
        .bar { flex: 1; background: var(--medium); border-radius: 3px 3px 0 0; min-height: 2px; opacity: 0.85; transition: height 0.3s; }
        .chart-labels { display: flex; gap: 6px; }
        .chart-labels span { flex: 1; text-align: center; font-size: 10px; color: var(--text-tertiary); }

        .empty { text-align: center; padding: 48px 24px; color: var(--text-tertiary); }
        footer { border-top: 1px solid var(--border); padding: 24px 0; margin-top: 48px; text-align: center; color: var(--text-tertiary); font-size: 13px; }
        footer a { color: var(--text-secondary); text-decoration: none; margin: 0 12px; }
    </style>
</head>
<body>
    <header><div class="container header-inner">
        <a href="/" class="logo"><div class="logo-mark"></div><span class="logo-text">AuditLens</span></a>
        <nav>
            <a href="/" class="active">Dashboard</a>
            <a href="/alerts">Alerts</a>
            <a href="/entities">Entities</a>
            <a href="/departments">Departments</a>
            <a href="/network">Network</a>
            <a href="/benford">Benford</a>
            <a href="/heatmap">Heatmap</a>
            <a href="/upload">Upload</a>
            <a href="/chat">Assistant</a>
            <a href="/settings">Settings</a>
            <a href="/login" id="session-link">Sign in</a>
        </nav>
    </div></header>
    <main class="container">
        <div class="hero">
            <div>
                <div class="hero-label">Flagged procurement value</div>
                <div class="hero-value mono" id="total-amount">—</div>
            </div>
            <div class="conn-badge"><span class="conn-dot" id="conn-dot"></span><span id="conn-label">Connecting</span></div>
        </div>
        <div class="kpi-grid">
            <div class="kpi"><div class="kpi-label">Total alerts</div><div class="kpi-value" id="kpi-total">—</div></div>
            <div class="kpi"><div class="kpi-label">Critical</div><div class="kpi-value critical" id="kpi-critical">—</div></div>
            <div class="kpi"><div class="kpi-label">High risk</div><div class="kpi-value high" id="kpi-high">—</div></div>
            <div class="kpi"><div class="kpi-label">Mean risk score</div><div class="kpi-value" id="kpi-score">—</div></div>
        </div>
        <div class="grid">
            <div>
                <div class="section-title">Highest-risk alerts</div>
                <div id="top-alerts"><div class="empty">Loading alerts...</div></div>
            </div>
            <div>
                <div class="section-title">Alerts by month</div>
                <div class="chart" id="chart"></div>
                <div class="chart-labels">
                    <span>J</span><span>F</span><span>M</span><span>A</span><span>M</span><span>J</span>
                    <span>J</span><span>A</span><span>S</span><span>O</span><span>N</span><span>D</span>
                </div>
            </div>
        </div>
    </main>
    <footer><div class="container"><a href="/v1/dashboard">API</a><a href="/health">Health</a></div></footer>
    <script>
        const escapeHtml = s => String(s ?? '').replace(/[&<>"']/g, c => ({'&':'&amp;','<':'&lt;','>':'&gt;','"':'&quot;',"'":'&#39;'}[c]));
        const safeFetch = (url) => fetch(url).then(r => r.ok ? r.json() : null).catch(() => null);

        function setConnectivity(online) {
            const dot = document.getElementById('conn-dot');
            const label = document.getElementById('conn-label');
            dot.classList.toggle('offline', !online);
            label.textContent = online ? 'Live' : 'Backend offline · showing cached data';
        }

        function renderAlerts(alerts) {
            if (!alerts?.length) return '<div class="empty">No alerts in the feed.</div>';
            return alerts.map(a =>
                '<div class="alert-row">'+
                    '<span class="tier-badge tier-'+escapeHtml(a.tier)+'">'+escapeHtml(a.tier)+'</span>'+
                    '<div><div class="alert-vendor">'+escapeHtml(a.vendor || a.vendor_id)+'</div>'+
                    '<div class="alert-dept">'+escapeHtml(a.department || a.department_id)+' · '+escapeHtml(a.transaction_id)+'</div></div>'+
                    '<div class="alert-amount mono">'+escapeHtml(a.amount_display)+'</div>'+
                    '<div class="alert-score mono">'+escapeHtml(a.score_display)+'</div>'+
                '</div>'
            ).join('');
        }

        function renderChart(heights) {
            document.getElementById('chart').innerHTML =
                (heights || []).map(h => '<div class="bar" style="height:'+Math.max(h, 2)+'%"></div>').join('');
        }

        function apply(data) {
            if (!data) { setConnectivity(false); return; }
            setConnectivity(data.online !== false);
            document.getElementById('total-amount').textContent = data.kpis.amount_display || '₹0.00L';
            document.getElementById('kpi-total').textContent = data.kpis.total_alerts;
            document.getElementById('kpi-critical').textContent = data.kpis.critical_count;
            document.getElementById('kpi-high').textContent = data.kpis.high_count;
            document.getElementById('kpi-score').textContent = data.kpis.score_display || '0%';
            document.getElementById('top-alerts').innerHTML = renderAlerts(data.top_alerts);
            renderChart(data.bar_heights);
        }

        function load() { safeFetch('/v1/dashboard').then(apply); }

        safeFetch('/v1/auth/session').then(s => {
            if (s?.signed_in) {
                const link = document.getElementById('session-link');
                link.textContent = s.user?.full_name || s.user?.email || 'Account';
            }
        });

        // Live updates over the event socket, with polling as fallback.
        try {
            const proto = location.protocol === 'https:' ? 'wss' : 'ws';
            const ws = new WebSocket(proto + '://' + location.host + '/ws');
            ws.onmessage = ev => {
                const msg = JSON.parse(ev.data);
                if (msg.type === 'connectivity') setConnectivity(msg.data.online);
                if (msg.type === 'alerts') load();
            };
        } catch (e) { /* polling covers it */ }

        load();
        setInterval(load, 5000);
    </script>
</body>
</html>`

func dashboardPageHandler(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, dashboardHTML)
}
