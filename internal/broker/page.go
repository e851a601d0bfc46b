package broker

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// The popup shell is self-contained: it talks to the context and decision
// endpoints with the session cookie, renders the preview, and is the only
// place the postMessage back to the opener actually happens. The result stays
// on screen for the close delay before the window closes itself.
var popupPage = template.Must(template.New("popup").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Authorize {{.AppID}}</title>
<style>
  body { font-family: system-ui, sans-serif; margin: 0; background: #f6f7f9; }
  .card { max-width: 420px; margin: 24px auto; background: #fff; border-radius: 12px;
          padding: 24px; box-shadow: 0 1px 4px rgba(0,0,0,.12); }
  .muted { color: #667; font-size: 13px; }
  ul { padding-left: 20px; }
  button { padding: 10px 18px; border-radius: 8px; border: 0; cursor: pointer; font-size: 15px; }
  #approve { background: #1a73e8; color: #fff; }
  #decline { background: #eee; }
  #pin { width: 100%; padding: 8px; margin: 8px 0; box-sizing: border-box; }
  .error { color: #c5221f; }
  .hidden { display: none; }
</style>
</head>
<body>
<div class="card" id="card"><p class="muted">Loading…</p></div>
<script>
(function() {
  var params = new URLSearchParams(window.location.search);
  var openerOrigin = params.get("openerOrigin") || "";
  var testMode = params.get("test") === "true";
  var appId = {{.AppID}};
  var card = document.getElementById("card");
  var ctx = null;
  var live = null;
  var settled = false;

  function esc(s) {
    var d = document.createElement("div");
    d.textContent = s == null ? "" : String(s);
    return d.innerHTML;
  }

  function dispatchResult(decision) {
    settled = true;
    if (live) { live.close(); }
    var envelope = decision.envelope;
    var target = decision.targetOrigin || "*";
    if (window.opener) {
      try { window.opener.postMessage(envelope, target); } catch (e) { /* opener gone */ }
    }
    card.innerHTML = "<p>" + (envelope.status === "approved" ? "Approved." : "Declined.") +
      " You can close this window.</p>";
    setTimeout(function() { window.close(); }, decision.closeDelayMs || 1500);
  }

  function decide(action) {
    var pin = document.getElementById("pin");
    fetch("/fastpass/" + encodeURIComponent(appId) + "/" + action, {
      method: "POST",
      credentials: "include",
      headers: { "Content-Type": "application/json" },
      body: JSON.stringify({
        pin: pin ? pin.value : "",
        openerOrigin: openerOrigin,
        test: testMode
      })
    }).then(function(res) { return res.json().then(function(b) { return { ok: res.ok, body: b }; }); })
      .then(function(r) {
        if (!r.ok) {
          var el = document.getElementById("form-error");
          if (el) { el.textContent = r.body.error_description || r.body.error || "Request failed"; }
          return;
        }
        dispatchResult(r.body);
      });
  }

  function render() {
    var html = "";
    html += "<h2>" + esc(ctx.app.name) + (ctx.app.verified ? " ✓" : "") + "</h2>";
    if (ctx.app.description) { html += "<p class='muted'>" + esc(ctx.app.description) + "</p>"; }
    if (ctx.ineligible) {
      html += "<p class='error'>" + esc(ctx.ineligibilityReason || "This app cannot be authorized from your account.") + "</p>";
    } else {
      html += "<p>wants to access:</p><ul>";
      for (var i = 0; i < (ctx.preview.disclosed || []).length; i++) {
        html += "<li>" + esc(ctx.preview.disclosed[i]) + "</li>";
      }
      html += "</ul>";
      var withheld = ctx.preview.withheld || {};
      var withheldKeys = Object.keys(withheld);
      if (withheldKeys.length > 0) {
        html += "<p class='muted'>Will not be shared: " + withheldKeys.map(esc).join(", ") + "</p>";
      }
      if ((ctx.preview.missing || []).length > 0) {
        html += "<p class='error'>Not set: " + ctx.preview.missing.map(esc).join(", ") + "</p>";
      }
      if (ctx.preview.pinRequired) {
        html += "<input id='pin' type='password' inputmode='numeric' placeholder='Enter your PIN' maxlength='6'>";
      }
    }
    html += "<p id='form-error' class='error'></p>";
    var blocked = ctx.ineligible || !ctx.profile.ageGroupSet;
    html += "<button id='approve'" + (blocked ? " disabled" : "") + ">Approve</button> ";
    html += "<button id='decline'>Decline</button>";
    if (!ctx.ineligible && !ctx.profile.ageGroupSet) {
      html += "<p class='error'>Set your age group in FastPass before approving.</p>";
    }
    card.innerHTML = html;
    document.getElementById("approve").addEventListener("click", function() { decide("approve"); });
    document.getElementById("decline").addEventListener("click", function() { decide("decline"); });
  }

  function startLive() {
    if (!window.EventSource) return;
    live = new EventSource("/fastpass/" + encodeURIComponent(appId) + "/watch" + query);
    live.onmessage = function(e) {
      if (settled) return;
      try { ctx = JSON.parse(e.data); } catch (err) { return; }
      render();
    };
  }

  var query = "?openerOrigin=" + encodeURIComponent(openerOrigin) + (testMode ? "&test=true" : "");
  fetch("/fastpass/" + encodeURIComponent(appId) + query, { credentials: "include" })
    .then(function(res) { return res.json().then(function(b) { return { ok: res.ok, status: res.status, body: b }; }); })
    .then(function(r) {
      if (r.status === 401) {
        card.innerHTML = "<p>Please sign in to FastPass first, then reopen this window.</p>";
        return;
      }
      if (!r.ok) {
        card.innerHTML = "<p class='error'>" + esc(r.body.error_description || r.body.error || "Error") + "</p>";
        return;
      }
      ctx = r.body;
      render();
      startLive();
    })
    .catch(function() {
      card.innerHTML = "<p class='error'>Failed to load authorization.</p>";
    });
})();
</script>
</body>
</html>
`))

// handlePage serves the popup shell. It renders without a session; the
// context fetch inside reports the signed-out state.
func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := popupPage.Execute(w, map[string]string{"AppID": chi.URLParam(r, "appID")}); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render popup page", "error", err.Error())
	}
}
