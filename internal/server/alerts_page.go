package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const alertsPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Alerts · AuditLens</title>
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
            min-height: 100vh; font-size: 14px; -webkit-font-smoothing: antialiased;
        }
        .mono { font-family: 'JetBrains Mono', monospace; }
        .container { max-width: 1200px; margin: 0 auto; padding: 0 24px; }
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

        .page-header { padding: 40px 0 20px; display: flex; justify-content: space-between; align-items: flex-end; border-bottom: 1px solid var(--border); }
        .page-title { font-size: 24px; font-weight: 600; margin-bottom: 4px; }
        .page-desc { color: var(--text-secondary); }
        .filters { display: flex; gap: 10px; align-items: center; }
        .filters select {
            background: var(--bg-subtle); color: var(--text); border: 1px solid var(--border);
            border-radius: 6px; padding: 7px 10px; font-size: 13px; font-family: inherit;
        }

        .alert {
            display: grid; grid-template-columns: auto 1fr auto auto auto;
            gap: 16px; padding: 18px 0; border-bottom: 1px solid var(--border); align-items: center;
        }
        .tier-badge {
            padding: 3px 10px; border-radius: 4px; font-size: 11px; font-weight: 600;
            text-transform: uppercase; letter-spacing: 0.04em; justify-self: start;
        }
        .tier-CRITICAL { background: rgba(239,68,68,0.12); color: var(--critical); }
        .tier-HIGH { background: rgba(245,158,11,0.12); color: var(--high); }
        .tier-MEDIUM { background: rgba(59,130,246,0.12); color: var(--medium); }
        .tier-LOW { background: rgba(34,197,94,0.12); color: var(--low); }
        .alert-vendor { font-weight: 500; }
        .alert-meta { color: var(--text-tertiary); font-size: 12px; margin-top: 2px; }
        .alert-amount { font-weight: 600; text-align: right; }
        .alert-score { color: var(--text-secondary); font-size: 13px; text-align: right; }
        .alert-actions { display: flex; gap: 6px; }
        .status-btn {
            background: var(--bg-subtle); color: var(--text-secondary); border: 1px solid var(--border);
            border-radius: 6px; padding: 6px 12px; font-size: 12px; cursor: pointer; font-family: inherit;
        }
        .status-btn:hover { color: var(--text); border-color: var(--text-tertiary); }
        .status-btn:disabled { opacity: 0.4; cursor: default; }
        .status-pill {
            padding: 3px 10px; border-radius: 10px; font-size: 11px;
            background: var(--bg-subtle); border: 1px solid var(--border); color: var(--text-secondary);
        }
        .status-pill.cleared { color: var(--low); }
        .status-pill.escalate { color: var(--critical); }
        .sync-pending { color: var(--text-tertiary); font-size: 11px; }
        .sync-failed { color: var(--critical); font-size: 11px; cursor: pointer; }

        .load-more {
            display: block; margin: 24px auto; background: var(--bg-subtle); color: var(--text-secondary);
            border: 1px solid var(--border); border-radius: 6px; padding: 10px 28px; font-size: 13px;
            cursor: pointer; font-family: inherit;
        }
        .load-more:hover { color: var(--text); }
        .empty { text-align: center; padding: 80px 24px; color: var(--text-tertiary); }
        .signin-note { text-align: center; padding: 10px; font-size: 12px; color: var(--text-tertiary); }
        .signin-note a { color: var(--text-secondary); }
    </style>
</head>
<body>
    <header><div class="container header-inner">
        <a href="/" class="logo"><div class="logo-mark"></div><span class="logo-text">AuditLens</span></a>
        <nav>
            <a href="/">Dashboard</a>
            <a href="/alerts" class="active">Alerts</a>
            <a href="/entities">Entities</a>
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
            <div>
                <h1 class="page-title">Alert Queue</h1>
                <p class="page-desc" id="queue-summary">Loading...</p>
            </div>
            <div class="filters">
                <select id="tier-filter">
                    <option value="">All tiers</option>
                    <option value="CRITICAL">Critical</option>
                    <option value="HIGH">High</option>
                    <option value="MEDIUM">Medium</option>
                    <option value="LOW">Low</option>
                </select>
                <select id="score-filter">
                    <option value="">Any score</option>
                    <option value="0.8">≥ 80%</option>
                    <option value="0.6">≥ 60%</option>
                    <option value="0.4">≥ 40%</option>
                </select>
            </div>
        </div>
        <div id="signin-note" class="signin-note" style="display:none">Triage actions need a session. <a href="/login">Sign in</a></div>
        <div id="queue"><div class="empty">Loading alerts...</div></div>
        <button class="load-more" id="load-more" style="display:none">Load more</button>
    </main>
    <script>
        const escapeHtml = s => String(s ?? '').replace(/[&<>"']/g, c => ({'&':'&amp;','<':'&lt;','>':'&gt;','"':'&quot;',"'":'&#39;'}[c]));
        const safeFetch = (url, opts) => fetch(url, opts).then(r => r.ok || r.status < 500 ? r : null).catch(() => null);

        let nextCursor = '';
        let signedIn = false;

        function queryString(cursor) {
            const p = new URLSearchParams();
            const tier = document.getElementById('tier-filter').value;
            const score = document.getElementById('score-filter').value;
            if (tier) p.set('tier', tier);
            if (score) p.set('min_score', score);
            if (cursor) p.set('cursor', cursor);
            p.set('limit', '25');
            return p.toString();
        }

        function transitionsFor(status) {
            if (status === 'pending') return ['review', 'escalate'];
            if (status === 'review') return ['cleared', 'escalate'];
            if (status === 'escalate') return ['cleared'];
            if (status === 'cleared') return ['escalate'];
            return [];
        }

        function renderAlert(a) {
            const status = a.status || 'pending';
            let actions;
            if (a.sync_state === 'pending') {
                actions = '<span class="sync-pending">saving…</span>';
            } else {
                const marker = a.sync_state === 'failed'
                    ? '<span class="sync-failed" onclick="dismissFailure(\''+escapeHtml(a.transaction_id)+'\')" title="Click to dismiss">save failed ✕</span>'
                    : '';
                actions = '<span class="status-pill '+escapeHtml(status)+'">'+escapeHtml(status)+'</span>'+
                    transitionsFor(status).map(to =>
                        '<button class="status-btn" '+(signedIn ? '' : 'disabled ')+
                        'onclick="setStatus(\''+escapeHtml(a.transaction_id)+'\',\''+to+'\')">'+to+'</button>'
                    ).join('') + marker;
            }
            return '<div class="alert" id="alert-'+escapeHtml(a.transaction_id)+'">'+
                '<span class="tier-badge tier-'+escapeHtml(a.tier)+'">'+escapeHtml(a.tier)+'</span>'+
                '<div><div class="alert-vendor">'+escapeHtml(a.vendor || a.vendor_id)+'</div>'+
                '<div class="alert-meta">'+escapeHtml(a.department || a.department_id)+' · '+
                escapeHtml(a.transaction_id)+' · '+escapeHtml(a.time_ago)+'</div></div>'+
                '<div class="alert-amount mono">'+escapeHtml(a.amount_display)+'</div>'+
                '<div class="alert-score mono">'+escapeHtml(a.score_display)+'</div>'+
                '<div class="alert-actions">'+actions+'</div>'+
            '</div>';
        }

        function load(cursor) {
            safeFetch('/v1/alerts?' + queryString(cursor)).then(r => r ? r.json() : null).then(data => {
                const queue = document.getElementById('queue');
                if (!data) { queue.innerHTML = '<div class="empty">Console unreachable.</div>'; return; }
                const html = (data.alerts || []).map(renderAlert).join('');
                if (cursor) queue.insertAdjacentHTML('beforeend', html);
                else queue.innerHTML = html || '<div class="empty">No alerts match the filters.</div>';
                nextCursor = data.next_cursor || '';
                document.getElementById('load-more').style.display = nextCursor ? 'block' : 'none';
                document.getElementById('queue-summary').textContent =
                    data.total + ' alerts' + (data.online === false ? ' · backend offline, showing cached feed' : '');
            });
        }

        function setStatus(id, to) {
            if (!signedIn) return;
            safeFetch('/v1/alerts/' + encodeURIComponent(id) + '/status', {
                method: 'PATCH',
                headers: {'Content-Type': 'application/json'},
                body: JSON.stringify({status: to}),
            }).then(() => load());
        }

        function dismissFailure(id) {
            safeFetch('/v1/alerts/' + encodeURIComponent(id) + '/dismiss', {method: 'POST'}).then(() => load());
        }

        safeFetch('/v1/auth/session').then(r => r ? r.json() : null).then(s => {
            signedIn = !!s?.signed_in;
            document.getElementById('signin-note').style.display = signedIn ? 'none' : 'block';
            load();
        });

        document.getElementById('tier-filter').addEventListener('change', () => load());
        document.getElementById('score-filter').addEventListener('change', () => load());
        document.getElementById('load-more').addEventListener('click', () => load(nextCursor));
        setInterval(() => { if (!nextCursor) load(); }, 5000);
    </script>
</body>
</html>`

func alertsPageHandler(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, alertsPageHTML)
}
