package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// PageData configures the upload page.
type PageData struct {
	Title         string
	MaxFiles      int
	MaxFileSizeMB int64
}

// Page is the single-page upload UI. Per-file options live in the browser;
// every change re-posts all files with their options to /process and
// replaces the results fragment.
func Page(data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(data.Title)
		h.raw(`</title><style>`)
		h.raw(pageCSS)
		h.raw(`</style></head><body><main>`)

		h.raw(`<h1>`)
		h.text(data.Title)
		h.raw(`</h1>`)
		h.raw(`<p class="lead">Transform your files between CSV and Excel formats with built-in data cleaning and visualization.</p>`)

		h.raw(`<form id="upload-form" onsubmit="return false">`)
		h.raw(`<label for="files">Upload your files (CSV or Excel):</label>`)
		h.raw(`<input id="files" name="files" type="file" multiple accept=".csv,.xlsx">`)
		h.raw(`<small>Up to `)
		h.text(itoa(data.MaxFiles))
		h.raw(` files, `)
		h.text(itoa(int(data.MaxFileSizeMB)))
		h.raw(` MB each.</small></form>`)

		h.raw(`<div id="results" aria-live="polite"></div>`)
		h.raw(`</main><script>`)
		h.raw(pageJS)
		h.raw(`</script></body></html>`)
		return h.err
	})
}

const pageCSS = `
body{font-family:system-ui,sans-serif;margin:0;background:#f8fafc;color:#0f172a}
main{max-width:960px;margin:0 auto;padding:2rem 1rem}
.lead{color:#475569}
form{display:flex;flex-direction:column;gap:.5rem;margin-bottom:1.5rem}
.file-card{background:#fff;border:1px solid #e2e8f0;border-left-width:4px;border-radius:6px;padding:1rem;margin-bottom:1rem}
.status-success{border-left-color:#16a34a}.status-warning{border-left-color:#d97706}.status-error{border-left-color:#dc2626}
.file-card header{display:flex;justify-content:space-between;align-items:baseline}
.file-card h2{font-size:1.1rem;margin:0}
.meta,.note,small{color:#64748b}
ul.messages,ul.summary,ul.legend{list-style:none;padding:0}
.msg{padding:.25rem .5rem;border-radius:4px;margin:.25rem 0}
.msg-success{background:#dcfce7}.msg-info{background:#e0f2fe}.msg-warning{background:#fef3c7}.msg-error{background:#fee2e2}
.preview{overflow-x:auto}
table{border-collapse:collapse;font-size:.85rem}
th,td{border:1px solid #e2e8f0;padding:.2rem .5rem;text-align:left}
td.null{color:#94a3b8;font-style:italic}
fieldset{border:1px solid #e2e8f0;margin:.75rem 0}
fieldset label{margin-right:.75rem}
.toggles,.convert{display:flex;flex-wrap:wrap;gap:.75rem;align-items:center;margin:.5rem 0}
button{cursor:pointer}
button.primary{background:#2563eb;color:#fff;border:0;border-radius:4px;padding:.35rem .75rem}
.chart svg{width:100%;height:auto}
.axis{stroke:#94a3b8}
.tick{font-size:10px;fill:#64748b}
.swatch{display:inline-block;width:.75rem;height:.75rem;margin-right:.35rem}
.alert{padding:.75rem;border-radius:6px}
.alert-error{background:#fee2e2;color:#991b1b}
`

const pageJS = `
(function () {
  var input = document.getElementById("files");
  var results = document.getElementById("results");
  var files = [];
  var options = [];

  function defaults() {
    return {columns: [], clean: false, actions: [], visualize: false, convert: false, target: "csv"};
  }

  function payload(list, opts) {
    var fd = new FormData();
    list.forEach(function (f) { fd.append("files", f, f.name); });
    fd.append("options", JSON.stringify(opts));
    return fd;
  }

  var keyName = "datasweeper.apiKey";

  function headers(extra) {
    var h = Object.assign({}, extra);
    var key = sessionStorage.getItem(keyName);
    if (key) { h["X-API-Key"] = key; }
    return h;
  }

  // post asks for a key once when the server requires one.
  function post(path, body, extra, retried) {
    return fetch(path, {method: "POST", body: body, headers: headers(extra)}).then(function (r) {
      if ((r.status === 401 || r.status === 403) && !retried) {
        var key = window.prompt("This server requires an API key:");
        if (key) {
          sessionStorage.setItem(keyName, key);
          return post(path, body, extra, true);
        }
      }
      return r;
    });
  }

  function run() {
    if (files.length === 0) { results.innerHTML = ""; return; }
    post("/process", payload(files, options), {"HX-Request": "true"})
      .then(function (r) { return r.text(); })
      .then(function (html) { results.innerHTML = html; })
      .catch(function (err) { results.textContent = err.message; });
  }

  function selectedColumns(i) {
    var out = [];
    results.querySelectorAll('input[data-control="column"][data-file="' + i + '"]').forEach(function (b) {
      if (b.checked) { out.push(b.value); }
    });
    return out;
  }

  function fileName(disposition, fallback) {
    var m = /filename="?([^";]+)"?/.exec(disposition || "");
    return m ? m[1] : fallback;
  }

  function download(i) {
    var opts = Object.assign({}, options[i], {convert: true});
    post("/download", payload([files[i]], [opts]), {})
      .then(function (r) {
        if (!r.ok) {
          return r.json().then(function (e) { throw new Error(e.message + " (" + e.code + ")"); });
        }
        return r.blob().then(function (blob) {
          var a = document.createElement("a");
          a.href = URL.createObjectURL(blob);
          a.download = fileName(r.headers.get("Content-Disposition"), files[i].name);
          document.body.appendChild(a);
          a.click();
          a.remove();
          URL.revokeObjectURL(a.href);
        });
      })
      .catch(function (err) { alert(err.message); });
  }

  input.addEventListener("change", function () {
    files = Array.prototype.slice.call(input.files);
    options = files.map(defaults);
    run();
  });

  results.addEventListener("change", function (e) {
    var el = e.target;
    var i = Number(el.dataset.file);
    if (isNaN(i) || !options[i]) { return; }
    switch (el.dataset.control) {
      case "column": options[i].columns = selectedColumns(i); break;
      case "clean": options[i].clean = el.checked; break;
      case "visualize": options[i].visualize = el.checked; break;
      case "target": options[i].target = el.value; break;
      default: return;
    }
    run();
  });

  results.addEventListener("click", function (e) {
    var el = e.target.closest("button[data-action]");
    if (!el) { return; }
    var i = Number(el.dataset.file);
    if (!options[i]) { return; }
    if (el.dataset.action === "convert") { download(i); return; }
    options[i].actions.push(el.dataset.action);
    run();
  });
})();
`
