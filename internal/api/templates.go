package api

import "html/template"

// ─── Page Templates ─────────────────────────────────────────────────────────
// Server-rendered dark-theme pages. Timers count down client-side from a
// data-seconds attribute; everything else is static markup.

const baseCSS = `
body { background:#121212; color:#e0e0e0; font-family:-apple-system,"Segoe UI",Roboto,Helvetica,Arial,sans-serif; max-width:600px; margin:0 auto; padding:20px; }
.box { background:rgba(30,30,30,0.8); border:1px solid rgba(255,255,255,0.08); padding:40px; border-radius:16px; }
h2 { color:#4CAF50; text-align:center; margin-top:0; text-transform:uppercase; letter-spacing:1px; }
label { font-size:0.75em; color:#888; text-transform:uppercase; letter-spacing:1px; display:block; margin:12px 0 5px; font-weight:700; }
input, select { width:100%; padding:14px; background:rgba(0,0,0,0.3); border:1px solid #444; color:white; border-radius:8px; box-sizing:border-box; font-size:1em; }
input:focus, select:focus { border-color:#4CAF50; outline:none; }
button { width:100%; padding:14px; background:#4CAF50; border:none; color:white; font-weight:bold; cursor:pointer; border-radius:8px; margin-top:16px; font-size:1em; text-transform:uppercase; letter-spacing:1px; }
.error { background:#3d1a1a; color:#ff9898; padding:12px; border-radius:8px; margin-bottom:16px; text-align:center; border:1px solid #5e2a2a; }
a { color:#888; text-decoration:none; font-size:0.9em; }
.combo { display:flex; gap:10px; align-items:baseline; }
.combo input { flex:1; text-align:center; }
.combo select { flex:2; }
.slash { font-size:1.5em; color:#444; }
`

var loginTmpl = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html><head><meta charset="UTF-8"><meta name="viewport" content="width=device-width, initial-scale=1">
<title>reCurrency Login</title><style>` + baseCSS + `
body { display:flex; justify-content:center; align-items:center; height:100vh; }
.box { width:320px; text-align:center; }
</style></head><body>
<div class="box">
  <h2>reCurrency</h2>
  {{if .Error}}<div class="error">{{.Error}}</div>{{end}}
  <form action="/login" method="POST">
    <input type="text" name="name" placeholder="Username" required autocomplete="off">
    <input type="password" name="password" placeholder="Password" required>
    <button type="submit">Access Account</button>
  </form>
  <div style="margin-top:25px"><a href="/signup">New here? <b style="color:#ccc">Sign Contract</b></a></div>
</div>
</body></html>`))

var signupTmpl = template.Must(template.New("signup").Parse(`<!DOCTYPE html>
<html><head><meta charset="UTF-8"><meta name="viewport" content="width=device-width, initial-scale=1">
<title>The Pledge</title><style>` + baseCSS + `
body { display:flex; justify-content:center; align-items:center; min-height:100vh; }
.box { width:420px; }
p.desc { font-size:0.95em; line-height:1.6; color:#bbb; }
</style></head><body>
<div class="box">
  <h2>Earn Your Vices</h2>
  <p class="desc">Define the negative habit you wish to moderate, the two
  positive habits that will pay for it, and sign the contract.</p>
  {{if .Error}}<div class="error">{{.Error}}</div>{{end}}
  <form action="/signup" method="POST">
    <label>Who are you?</label>
    <input type="text" name="name" placeholder="Name" required autocomplete="off">
    <label>Password</label>
    <input type="password" name="password" placeholder="Password" required>

    <label>Vice Name</label>
    <input type="text" name="vice" placeholder="e.g. Weed" required>
    <label>Schedule Limit</label>
    <div class="combo">
      <input type="number" name="vice_freq" value="1" min="1">
      <div class="slash">/</div>
      <select name="vice_per">
        <option value="1">Day</option>
        <option value="7" selected>Week</option>
        <option value="30">Month</option>
        <option value="365">Year</option>
      </select>
    </div>

    <label>Virtue #1</label>
    <input type="text" name="v1name" placeholder="e.g. Gym" required>
    <div class="combo" style="margin-top:5px">
      <input type="number" name="v1_freq" value="3" min="1">
      <div class="slash">/</div>
      <select name="v1_per"><option value="1">Day</option><option value="7" selected>Week</option></select>
    </div>

    <label>Virtue #2</label>
    <input type="text" name="v2name" placeholder="e.g. Study" required>
    <div class="combo" style="margin-top:5px">
      <input type="number" name="v2_freq" value="5" min="1">
      <div class="slash">/</div>
      <select name="v2_per"><option value="1">Day</option><option value="7" selected>Week</option></select>
    </div>

    <button type="submit">Sign Contract</button>
  </form>
  <div style="text-align:center; margin-top:20px"><a href="/login">Back to Login</a></div>
</div>
</body></html>`))

var editTmpl = template.Must(template.New("edit").Parse(`<!DOCTYPE html>
<html><head><meta charset="UTF-8"><meta name="viewport" content="width=device-width, initial-scale=1">
<title>Edit Contract</title><style>` + baseCSS + `
body { display:flex; justify-content:center; align-items:center; min-height:100vh; }
.box { width:400px; }
.del-btn { background:transparent; border:1px solid #ff5252; color:#ff5252; margin-top:20px; font-size:0.9em; }
</style></head><body>
<div class="box">
  <h2>Amend Contract</h2>
  <form action="/edit" method="POST">
    <label>Vice Name</label>
    <input type="text" name="vice" value="{{.Vice}}">
    <label>Schedule Limit</label>
    <div class="combo">
      <input type="number" name="vice_freq" value="1" min="1">
      <div class="slash">/</div>
      <select name="vice_per">
        <option value="1">Day</option>
        <option value="7" selected>Week</option>
        <option value="30">Month</option>
      </select>
    </div>
    <div style="font-size:0.7em; color:#666; margin-top:5px; text-align:center">Resetting to defaults. Please re-enter desired rate.</div>

    <label>Virtue #1</label>
    <input type="text" name="v1name" value="{{.Virtue1Name}}">
    <div class="combo" style="margin-top:5px">
      <input type="number" name="v1_freq" value="3" min="1">
      <div class="slash">/</div>
      <select name="v1_per"><option value="1">Day</option><option value="7" selected>Week</option></select>
    </div>

    <label>Virtue #2</label>
    <input type="text" name="v2name" value="{{.Virtue2Name}}">
    <div class="combo" style="margin-top:5px">
      <input type="number" name="v2_freq" value="5" min="1">
      <div class="slash">/</div>
      <select name="v2_per"><option value="1">Day</option><option value="7" selected>Week</option></select>
    </div>

    <label>New Password</label>
    <input type="password" name="new_password" placeholder="Leave blank to keep current">
    <button type="submit">Save Changes</button>
  </form>
  <form action="/delete_account" method="POST" onsubmit="return confirm('Are you sure? This cannot be undone.');">
    <button type="submit" class="del-btn">Delete Account</button>
  </form>
  <a href="/" style="display:block; text-align:center; margin-top:15px">Cancel</a>
</div>
</body></html>`))

// seq drives the calendar's repeated virtue dots.
var tmplFuncs = template.FuncMap{
	"seq": func(n int) []int {
		s := make([]int, n)
		for i := range s {
			s[i] = i
		}
		return s
	},
}

var dashboardTmpl = template.Must(template.New("dashboard").Funcs(tmplFuncs).Parse(`<!DOCTYPE html>
<html><head><meta charset="UTF-8"><meta name="viewport" content="width=device-width, initial-scale=1">
<title>reCurrency</title><style>` + baseCSS + `
.header { text-align:center; margin-bottom:25px; }
.hero-card { padding:30px; margin-bottom:25px; border-radius:20px; background:rgba(30,30,30,0.6); border:1px solid rgba(255,255,255,0.08); }
.hero-card.locked { background:#251010; border-color:#ff4444; }
.tag { font-size:0.9em; text-transform:uppercase; color:#888; letter-spacing:0.5px; font-weight:700; display:flex; justify-content:space-between; align-items:center; margin-bottom:15px; }
.moderating-badge { background:#2c2c2c; padding:6px 10px; border-radius:6px; color:#bbb; font-size:0.85em; text-transform:none; border:1px solid #333; }
.timer { font-size:2.8em; font-weight:800; margin:15px 0; color:#fff; text-align:center; font-variant-numeric:tabular-nums; }
.mini-timer { font-size:1.2em; font-weight:700; color:#ccc; margin:5px 0; font-variant-numeric:tabular-nums; }
.btn { width:100%; padding:14px; border:none; border-radius:10px; font-weight:700; cursor:pointer; color:white; margin-top:5px; font-size:0.95em; }
.btn-grid { display:grid; grid-template-columns:1fr 1fr; gap:10px; margin-bottom:5px; }
.smoke-btn { background:#ff5252; }
.virtue1-btn { background:#2196F3; }
.virtue2-btn { background:#9c27b0; }
.punishment-btn { background:#ff5252; font-size:0.8em; padding:8px; }
.progress-bg { height:8px; background:#333; border-radius:4px; margin:20px 0; overflow:hidden; }
.progress-fill { height:100%; }
.household-grid { display:grid; grid-template-columns:1fr 1fr; gap:12px; margin-top:45px; }
.mini-card { background:rgba(30,30,30,0.6); border:1px solid rgba(255,255,255,0.08); padding:15px; border-radius:12px; border-top:4px solid var(--accent); }
.mini-card.locked { border-color:#ff4444; background:#251010; }
.streak { color:#FFD700; font-size:1.1em; }
.feed-container h3 { color:#666; font-size:0.8em; letter-spacing:1px; margin-bottom:5px; }
.feed { background:#161616; border-radius:12px; height:160px; overflow-y:auto; padding:12px; border:1px solid #333; }
.log-item { padding:8px 10px; margin-bottom:8px; background:#222; border-radius:6px; border-left:2px solid; }
.log-head { display:flex; justify-content:space-between; font-size:0.75em; margin-bottom:2px; }
.log-user { font-weight:bold; color:#ccc; }
.log-time { color:#666; }
.log-msg { color:#aaa; font-size:0.9em; }
.calendar { display:flex; justify-content:space-between; margin-top:15px; background:rgba(0,0,0,0.2); padding:10px; border-radius:8px; }
.cal-day { text-align:center; flex:1; font-size:0.65em; color:#666; text-transform:uppercase; }
.dot { width:6px; height:6px; border-radius:50%; margin:2px auto; }
.logout { text-align:center; margin-top:40px; }
</style>
<script>
function formatTime(s) {
  if (s <= 0) return "<span style='color:#4CAF50'>CLEAN</span>";
  var d = Math.floor(s/86400), h = Math.floor((s%86400)/3600), m = Math.floor((s%3600)/60), sec = Math.floor(s%60);
  function p(n){return n<10?"0"+n:n;}
  return d + "d " + p(h) + ":" + p(m) + ":" + p(sec);
}
window.onload = function() {
  document.querySelectorAll('[data-seconds]').forEach(function(t) {
    var s = parseInt(t.getAttribute('data-seconds'));
    if (isNaN(s)) return;
    t.innerHTML = formatTime(s);
    setInterval(function() { if (s > 0) s--; t.innerHTML = formatTime(s); }, 1000);
  });
};
</script>
</head><body>
<div class="header"><h2>reCurrency</h2></div>

<div class="hero-card{{if .Locked}} locked{{end}}">
  <div class="tag">
    <span>{{.Name}}</span>
    <span><span class="moderating-badge">Moderating: {{.Vice}}</span> <a href="/edit" style="font-size:1.3em">&#9881;</a></span>
  </div>
  {{if .Locked}}
    <div class="timer" style="color:#ff5252">BANKRUPT</div>
    <div style="color:#ff9898; text-align:center; font-size:0.9em;">Account Frozen. Awaiting Bail Out.</div>
  {{else}}
    <div class="timer" data-seconds="{{.DebtSeconds}}">...</div>
    <div class="progress-bg"><div class="progress-fill" style="width:{{printf "%.0f" .ProgressPct}}%; background:{{.ProgressColor}}"></div></div>
    {{if .ShowLimit}}<div style="text-align:center; font-size:0.75em; color:#ff5252; margin-top:-12px; margin-bottom:15px;">&#9888; BANKRUPTCY LIMIT: {{.LimitDays}} DAYS</div>{{end}}
    <div class="btn-grid">
      <a href="/virtue/1?name={{.ID}}"><button class="btn virtue1-btn">{{.Virtue1}} (-1d)</button></a>
      <a href="/virtue/2?name={{.ID}}"><button class="btn virtue2-btn">{{.Virtue2}} (-1d)</button></a>
    </div>
    <a href="/vice?name={{.ID}}"><button class="btn smoke-btn">Indulge (+{{.CostDays}}d)</button></a>
    <div class="calendar">
      {{range .Calendar}}
      <div class="cal-day">{{.Label}}
        {{range $i := seq .Virtues}}<div class="dot" style="background:#4CAF50"></div>{{end}}
        {{if .HasVice}}<div class="dot" style="background:#ff5252"></div>{{end}}
      </div>
      {{end}}
    </div>
  {{end}}
</div>

<div class="feed-container"><h3>TRANSACTIONS</h3><div class="feed">
  {{range .Feed}}
  <div class="log-item" style="border-left-color:{{.Color}}">
    <div class="log-head"><span class="log-user">{{.User}}</span> <span class="log-time">{{.Age}}</span></div>
    <div class="log-msg">{{.Message}}</div>
  </div>
  {{end}}
</div></div>
{{if .CanUndo}}<div style="text-align:center; margin-top:5px;"><a href="/undo">&#9100; Undo Last Action</a></div>{{end}}

<div class="household-grid">
  {{range .Others}}
  <div class="mini-card{{if .Locked}} locked{{end}}" style="--accent:{{.Accent}}">
    <div class="tag"><span>{{.Name}}</span> <span class="streak">&#128293; {{.Streak}}</span></div>
    {{if .Locked}}
      <div class="mini-timer" style="color:#ff5252">BANKRUPT</div>
      <a href="/reset?name={{.ID}}"><button class="btn punishment-btn">Bail Out</button></a>
    {{else}}
      <div class="mini-timer" data-seconds="{{.DebtSeconds}}">...</div>
      <div style="font-size:0.7em; color:#666">Target: {{.Virtue1}} &amp; {{.Virtue2}}</div>
    {{end}}
  </div>
  {{end}}
</div>

<div class="logout"><a href="/logout">Log Out</a></div>
</body></html>`))
