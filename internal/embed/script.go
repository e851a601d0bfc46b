package embed

import (
	"text/template"
)

// The delivered script is plain ES5 string concatenation: it runs on whatever
// page embeds it, so no template literals and no modern syntax. Values are
// injected pre-escaped as JSON strings.
var buttonScript = template.Must(template.New("button").Parse(`(function() {
  var containerId = 'fastpass-button-container';
  var container = document.getElementById(containerId);
  if (!container) {
    console.error("FastPass Error: Container element #" + containerId + " not found.");
    return;
  }

  var hostUrl = {{.HostURL}};
  var clientId = {{.ClientID}};
  var popupUrl = hostUrl + '/fastpass/' + encodeURIComponent(clientId) + '/page?popup=true' +
    '&openerOrigin=' + encodeURIComponent(window.location.origin);
  var sessionCheckUrl = hostUrl + '/fastpass/session-check';

  var css = '' +
    '@keyframes fastpass-spin { to { transform: rotate(360deg); } }' +
    '.fastpass-container { display: flex; flex-direction: column; align-items: center; gap: 8px; width: 100%; max-width: 350px; }' +
    '.fastpass-button-base { position: relative; display: flex; flex-direction: column; align-items: center;' +
    ' justify-content: center; gap: 8px; width: 100%; min-height: 90px; padding: 16px; color: white; border: none;' +
    ' border-radius: 8px; font-family: -apple-system, BlinkMacSystemFont, sans-serif; overflow: hidden;' +
    ' transition: all 0.3s ease; text-align: center; }' +
    '.fastpass-button-base.state-default { background-color: #10B981; cursor: pointer; }' +
    '.fastpass-button-base.state-waiting { background-color: #374151; }' +
    '.fastpass-button-base.state-approved { background-color: #10B981; }' +
    '.fastpass-button-base.state-declined { background-color: #EF4444; cursor: pointer; }' +
    '.fastpass-button-base.state-canceled { background-color: #6B7280; cursor: pointer; }' +
    '.fastpass-content-state { display: none; }' +
    '.fastpass-button-base.state-default .state-content-default,' +
    '.fastpass-button-base.state-waiting .state-content-waiting,' +
    '.fastpass-button-base.state-approved .state-content-approved,' +
    '.fastpass-button-base.state-declined .state-content-declined,' +
    '.fastpass-button-base.state-canceled .state-content-canceled' +
    ' { display: flex; flex-direction: column; align-items: center; justify-content: center; gap: 8px; }' +
    '.fastpass-top-row { display: flex; align-items: center; gap: 8px; font-size: 16px; font-weight: 600; }' +
    '.fastpass-mid-row { font-size: 14px; opacity: 0.9; margin-top: 4px; }' +
    '.fastpass-bottom-row { display: flex; align-items: center; gap: 6px; font-size: 12px; opacity: 0.8; margin-top: 8px; }' +
    '.fastpass-powered-by { font-size: 12px; color: #9ca3af; text-align: center; }' +
    '.fastpass-powered-by a { color: inherit; text-decoration: none; }' +
    '.fastpass-spinner { width: 20px; height: 20px; border: 2px solid rgba(255,255,255,0.3); border-radius: 50%;' +
    ' border-top-color: #fff; animation: fastpass-spin 1s ease-in-out infinite; margin: 0 auto; }';

  var style = document.createElement('style');
  style.textContent = css;
  document.head.appendChild(style);

  var badge = '';
  if ({{.ShowBadge}}) {
    badge = ' ✓';
  }
  var midRow = '';
  if ({{.ButtonDescription}}) {
    midRow = '<div class="fastpass-mid-row">' + {{.ButtonDescription}} + '</div>';
  }
  var bottomRow = '';
  if (!{{.HideAppName}}) {
    bottomRow = '<div class="fastpass-bottom-row"><span>' + {{.AppName}} + badge + '</span></div>';
  }

  container.innerHTML = '' +
    '<div class="fastpass-container">' +
    '<button id="fastpass-btn-' + clientId + '" class="fastpass-button-base state-default">' +
    '<div class="fastpass-content-state state-content-default">' +
    '<div class="fastpass-top-row"><span id="fastpass-main-text">' + {{.MainText}} + '</span></div>' +
    midRow + bottomRow +
    '</div>' +
    '<div class="fastpass-content-state state-content-waiting">' +
    '<div class="fastpass-spinner"></div>' +
    '<div style="margin-top: 8px; font-weight: 600;">Waiting for response...</div>' +
    '</div>' +
    '<div class="fastpass-content-state state-content-approved">' +
    '<div id="fastpass-approved-text" style="font-weight: 600;">Approved!</div>' +
    '</div>' +
    '<div class="fastpass-content-state state-content-declined">' +
    '<div style="font-weight: 600;">Request Declined</div>' +
    '<div style="font-size: 12px; opacity: 0.8;">Click to try again</div>' +
    '</div>' +
    '<div class="fastpass-content-state state-content-canceled">' +
    '<div style="font-weight: 600;">Request Canceled</div>' +
    '<div style="font-size: 12px; opacity: 0.8;">Click to try again</div>' +
    '</div>' +
    '</button>' +
    '<div class="fastpass-powered-by">Powered by <a href="' + hostUrl + '" target="_blank">FastPass</a></div>' +
    '</div>';

  var sessionFrame = document.createElement('iframe');
  sessionFrame.src = sessionCheckUrl;
  sessionFrame.style.display = 'none';
  document.body.appendChild(sessionFrame);

  var popup, popupChecker;

  function openPopup() {
    var btn = document.getElementById('fastpass-btn-' + clientId);
    if (!btn || (btn.disabled && !btn.classList.contains('state-declined') && !btn.classList.contains('state-canceled'))) return;

    btn.className = 'fastpass-button-base state-waiting';
    btn.disabled = true;

    var width = 600, height = 700;
    var left = (screen.width / 2) - width / 2;
    var top = (screen.height / 2) - height / 2;
    popup = window.open(popupUrl, 'fastpass-popup',
      'width=' + width + ',height=' + height + ',top=' + top + ',left=' + left);

    popupChecker = setInterval(function() {
      if (popup && popup.closed && btn && btn.classList.contains('state-waiting')) {
        clearInterval(popupChecker);
        handleResponseMessage({ status: 'canceled' });
      }
    }, 500);
  }

  function handleResponseMessage(eventData) {
    var status = eventData.status;
    var data = eventData.data;
    var btn = document.getElementById('fastpass-btn-' + clientId);
    // Only one outcome settles a round: after the button leaves the waiting
    // state, late messages (e.g. the poller racing a postMessage) are ignored.
    if (!btn || !btn.classList.contains('state-waiting')) return;

    if (popupChecker) clearInterval(popupChecker);

    if (window.fastPassCallback && typeof window.fastPassCallback === 'function') {
      if (status === 'approved') {
        btn.className = 'fastpass-button-base state-approved';
        var approvedText = document.getElementById('fastpass-approved-text');
        if (approvedText && data && data.name) {
          approvedText.textContent = 'Welcome, ' + data.name.split(' ')[0] + '!';
        }
        btn.disabled = true;
        setTimeout(function() { window.fastPassCallback(null, data); }, 500);
      } else if (status === 'declined') {
        btn.className = 'fastpass-button-base state-declined';
        btn.disabled = false;
        setTimeout(function() { window.fastPassCallback(new Error('User declined.'), null); }, 500);
      } else if (status === 'canceled') {
        btn.className = 'fastpass-button-base state-canceled';
        btn.disabled = false;
        setTimeout(function() { window.fastPassCallback(new Error('User canceled.'), null); }, 500);
      }
      return;
    }

    if (status === 'approved') {
      btn.className = 'fastpass-button-base state-approved';
      var approvedText2 = document.getElementById('fastpass-approved-text');
      if (approvedText2 && data && data.name) {
        approvedText2.textContent = 'Welcome, ' + data.name.split(' ')[0] + '!';
      }
      btn.disabled = true;
      for (var key in data) {
        var el = document.getElementById(key);
        if (el) el.value = data[key];
      }
    } else if (status === 'declined') {
      btn.className = 'fastpass-button-base state-declined';
      btn.disabled = false;
    } else if (status === 'canceled') {
      btn.className = 'fastpass-button-base state-canceled';
      btn.disabled = false;
    }
  }

  var btn = document.getElementById('fastpass-btn-' + clientId);
  if (!btn) return;

  btn.addEventListener('click', openPopup);

  window.addEventListener('message', function(event) {
    if (event.origin !== hostUrl) return;

    if (event.data && event.data.type === 'FASTPASS_SESSION') {
      if (event.data.status === 'LOGGED_IN' && event.data.firstName) {
        var mainTextEl = document.getElementById('fastpass-main-text');
        if (mainTextEl) {
          mainTextEl.textContent = 'Continue as ' + event.data.firstName;
        }
      }
      if (sessionFrame.parentNode) {
        sessionFrame.parentNode.removeChild(sessionFrame);
      }
      return;
    }

    if (event.data && event.data.status) {
      handleResponseMessage(event.data);
    }
  });
})();
`))
