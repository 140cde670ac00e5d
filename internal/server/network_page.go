package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const networkPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Network · AuditLens</title>
    <link rel="icon" href="data:image/svg+xml,<svg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 100 100'><text y='.9em' font-size='90'>◎</text></svg>">
    <link rel="preconnect" href="https://fonts.googleapis.com">
    <link rel="preconnect" href="https://fonts.gstatic.com" crossorigin>
    <link href="https://fonts.googleapis.com/css2?family=Inter:wght@400;500;600&family=JetBrains+Mono:wght@400;500&display=swap" rel="stylesheet">
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        :root {
            --bg: #09090b; --bg-subtle: #18181b; --border: #27272a;
            --text: #fafafa; --text-secondary: #a1a1aa; --text-tertiary: #52525b;
            --critical: #ef4444; --medium: #3b82f6; --low: #22c55e;
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
        .page-header { padding: 40px 0 20px; border-bottom: 1px solid var(--border); }
        .page-title { font-size: 24px; font-weight: 600; margin-bottom: 4px; }
        .page-desc { color: var(--text-secondary); }
        .legend { display: flex; gap: 20px; padding: 16px 0; font-size: 12px; color: var(--text-secondary); }
        .legend span::before { content: '●'; margin-right: 6px; }
        .legend .vendors::before { color: var(--critical); }
        .legend .departments::before { color: var(--medium); }
        .legend .projects::before { color: var(--low); }
        #graph { width: 100%; height: 640px; border: 1px solid var(--border); border-radius: 10px; background: var(--bg-subtle); }
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
            <a href="/network" class="active">Network</a>
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
            <h1 class="page-title">Relationship Network</h1>
            <p class="page-desc">Vendors, departments, and projects connected by flagged payments</p>
        </div>
        <div class="legend"><span class="vendors">Vendors</span><span class="departments">Departments</span><span class="projects">Projects</span></div>
        <canvas id="graph"></canvas>
        <div class="empty" id="empty" style="display:none">Network data unavailable.</div>
    </main>
    <script>
        const safeFetch = (url) => fetch(url).then(r => r.ok ? r.json() : null).catch(() => null);
        const groupColor = g => g === 1 ? '#ef4444' : g === 2 ? '#3b82f6' : '#22c55e';

        // Small force layout: repulsion between nodes, springs along links,
        // gravity toward the center. Runs a fixed number of iterations per frame.
        function layout(nodes, links, w, h) {
            nodes.forEach(n => {
                if (n.x === undefined) { n.x = w/2 + (Math.random()-0.5)*w*0.6; n.y = h/2 + (Math.random()-0.5)*h*0.6; }
                n.vx = 0; n.vy = 0;
            });
            const byId = Object.fromEntries(nodes.map(n => [n.id, n]));
            for (let i = 0; i < nodes.length; i++) {
                for (let j = i+1; j < nodes.length; j++) {
                    const a = nodes[i], b = nodes[j];
                    let dx = a.x-b.x, dy = a.y-b.y;
                    const d2 = Math.max(dx*dx + dy*dy, 100);
                    const f = 1800 / d2;
                    const d = Math.sqrt(d2);
                    dx /= d; dy /= d;
                    a.vx += dx*f; a.vy += dy*f; b.vx -= dx*f; b.vy -= dy*f;
                }
            }
            links.forEach(l => {
                const a = byId[l.source], b = byId[l.target];
                if (!a || !b) return;
                const dx = b.x-a.x, dy = b.y-a.y;
                const d = Math.max(Math.sqrt(dx*dx + dy*dy), 1);
                const f = (d - 90) * 0.02;
                a.vx += dx/d*f; a.vy += dy/d*f; b.vx -= dx/d*f; b.vy -= dy/d*f;
            });
            nodes.forEach(n => {
                n.vx += (w/2 - n.x) * 0.004; n.vy += (h/2 - n.y) * 0.004;
                n.x = Math.min(Math.max(n.x + n.vx, 20), w-20);
                n.y = Math.min(Math.max(n.y + n.vy, 20), h-20);
            });
        }

        function draw(ctx, nodes, links, w, h) {
            const byId = Object.fromEntries(nodes.map(n => [n.id, n]));
            ctx.clearRect(0, 0, w, h);
            ctx.strokeStyle = 'rgba(161,161,170,0.25)';
            links.forEach(l => {
                const a = byId[l.source], b = byId[l.target];
                if (!a || !b) return;
                ctx.lineWidth = Math.min(1 + (l.value || 0) / 1e6, 4);
                ctx.beginPath(); ctx.moveTo(a.x, a.y); ctx.lineTo(b.x, b.y); ctx.stroke();
            });
            nodes.forEach(n => {
                const r = Math.min(4 + Math.sqrt(n.val || 1), 14);
                ctx.fillStyle = groupColor(n.group);
                ctx.beginPath(); ctx.arc(n.x, n.y, r, 0, Math.PI*2); ctx.fill();
                if (r > 7) {
                    ctx.fillStyle = '#a1a1aa'; ctx.font = '11px Inter';
                    ctx.fillText(n.id, n.x + r + 4, n.y + 3);
                }
            });
        }

        safeFetch('/v1/network').then(data => {
            const canvas = document.getElementById('graph');
            if (!data || !data.nodes?.length) {
                canvas.style.display = 'none';
                document.getElementById('empty').style.display = 'block';
                return;
            }
            const w = canvas.clientWidth, h = canvas.clientHeight;
            canvas.width = w; canvas.height = h;
            const ctx = canvas.getContext('2d');
            let frames = 0;
            (function tick() {
                layout(data.nodes, data.links || [], w, h);
                draw(ctx, data.nodes, data.links || [], w, h);
                if (++frames < 240) requestAnimationFrame(tick);
            })();
        });
    </script>
</body>
</html>`

func networkPageHandler(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, networkPageHTML)
}
