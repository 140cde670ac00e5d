package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const loginPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Sign in · AuditLens</title>
    <link rel="icon" href="data:image/svg+xml,<svg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 100 100'><text y='.9em' font-size='90'>◎</text></svg>">
    <link rel="preconnect" href="https://fonts.googleapis.com">
    <link rel="preconnect" href="https://fonts.gstatic.com" crossorigin>
    <link href="https://fonts.googleapis.com/css2?family=Inter:wght@400;500;600&display=swap" rel="stylesheet">
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        :root {
            --bg: #09090b; --bg-subtle: #18181b; --border: #27272a;
            --text: #fafafa; --text-secondary: #a1a1aa; --text-tertiary: #52525b;
            --accent: #22c55e; --critical: #ef4444;
        }
        body {
            font-family: 'Inter', -apple-system, sans-serif; background: var(--bg); color: var(--text);
            min-height: 100vh; font-size: 14px; display: flex; align-items: center; justify-content: center;
            -webkit-font-smoothing: antialiased;
        }
        .card { width: 380px; padding: 36px; background: var(--bg-subtle); border: 1px solid var(--border); border-radius: 14px; }
        .logo { display: flex; align-items: center; gap: 10px; margin-bottom: 28px; }
        .logo-mark { width: 28px; height: 28px; background: var(--critical); border-radius: 7px; }
        .logo-text { font-weight: 600; font-size: 17px; }
        .title { font-size: 20px; font-weight: 600; margin-bottom: 4px; }
        .subtitle { color: var(--text-secondary); margin-bottom: 24px; }
        label { display: block; font-size: 12px; color: var(--text-tertiary); text-transform: uppercase; letter-spacing: 0.04em; margin: 16px 0 6px; }
        input {
            width: 100%; background: var(--bg); color: var(--text); border: 1px solid var(--border);
            border-radius: 8px; padding: 11px 14px; font-size: 14px; font-family: inherit;
        }
        input:focus { outline: none; border-color: var(--text-tertiary); }
        .submit {
            width: 100%; margin-top: 24px; background: var(--accent); color: #09090b; border: none;
            border-radius: 8px; padding: 12px; font-size: 14px; font-weight: 600; cursor: pointer; font-family: inherit;
        }
        .submit:disabled { opacity: 0.5; cursor: default; }
        .error { color: var(--critical); font-size: 13px; margin-top: 14px; display: none; }
        .signed-in { display: none; }
        .signed-in p { color: var(--text-secondary); margin-bottom: 20px; }
        .signout { width: 100%; background: none; border: 1px solid var(--border); color: var(--text-secondary); border-radius: 8px; padding: 11px; cursor: pointer; font-family: inherit; }
        .back { display: block; text-align: center; margin-top: 20px; color: var(--text-tertiary); font-size: 13px; text-decoration: none; }
        .back:hover { color: var(--text-secondary); }
    </style>
</head>
<body>
    <div class="card">
        <div class="logo"><div class="logo-mark"></div><span class="logo-text">AuditLens</span></div>
        <form id="login-form">
            <div class="title">Sign in</div>
            <div class="subtitle">Auditor access to triage and scoring tools</div>
            <label for="email">Email</label>
            <input id="email" type="email" autocomplete="username" required>
            <label for="password">Password</label>
            <input id="password" type="password" autocomplete="current-password" required>
            <button class="submit" id="submit" type="submit">Sign in</button>
            <div class="error" id="error"></div>
        </form>
        <div class="signed-in" id="signed-in">
            <div class="title">Signed in</div>
            <p id="who"></p>
            <button class="signout" id="signout">Sign out</button>
        </div>
        <a class="back" href="/">← Back to dashboard</a>
    </div>
    <script>
        const form = document.getElementById('login-form');
        const signedInBox = document.getElementById('signed-in');
        const errorBox = document.getElementById('error');

        function showSession(user) {
            form.style.display = 'none';
            signedInBox.style.display = 'block';
            document.getElementById('who').textContent = user?.full_name || user?.email || 'Authenticated auditor';
        }

        form.addEventListener('submit', e => {
            e.preventDefault();
            const submit = document.getElementById('submit');
            submit.disabled = true;
            errorBox.style.display = 'none';
            fetch('/v1/auth/login', {
                method: 'POST',
                headers: {'Content-Type': 'application/json'},
                body: JSON.stringify({
                    email: document.getElementById('email').value.trim(),
                    password: document.getElementById('password').value,
                }),
            }).then(r => r.json().then(data => ({ok: r.ok, data})))
              .then(({ok, data}) => {
                if (!ok) {
                    errorBox.textContent = data.message || 'Sign-in failed.';
                    errorBox.style.display = 'block';
                    return;
                }
                window.location.href = '/alerts';
            }).catch(() => {
                errorBox.textContent = 'Console unreachable.';
                errorBox.style.display = 'block';
            }).finally(() => { submit.disabled = false; });
        });

        document.getElementById('signout').addEventListener('click', () => {
            fetch('/v1/auth/logout', {method: 'POST'}).then(() => window.location.reload());
        });

        fetch('/v1/auth/session').then(r => r.json()).then(s => {
            if (s?.signed_in) showSession(s.user);
        }).catch(() => {});
    </script>
</body>
</html>`

func loginPageHandler(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, loginPageHTML)
}
