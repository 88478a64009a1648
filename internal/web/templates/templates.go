// Package templates holds the HTML components served by the web package.
package templates

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/JonMunkholm/datasweeper/internal/tabular"
	"github.com/a-h/templ"
)

// IndexData configures the upload page.
type IndexData struct {
	MaxFileSize int64
	MaxFiles    int
	PreviewRows int
	Targets     []tabular.Format
}

// IndexPage renders the upload form and the client script that shows
// previews and triggers downloads.
func IndexPage(d IndexData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(pageHead)
		b.WriteString(`<main><h1>Data Sweeper</h1>`)
		fmt.Fprintf(&b, `<p class="hint">CSV or Excel files, up to %s each, %d at a time.</p>`,
			templ.EscapeString(FormatBytes(d.MaxFileSize)), d.MaxFiles)

		b.WriteString(`<form id="upload" enctype="multipart/form-data">`)
		b.WriteString(`<input type="file" name="files" accept=".csv,.xlsx" multiple required>`)
		b.WriteString(`<fieldset><legend>Cleaning</legend>`)
		b.WriteString(`<label><input type="checkbox" name="remove_duplicates"> Remove duplicate rows</label>`)
		b.WriteString(`<label><input type="checkbox" name="fill_missing"> Fill missing numbers with the column mean</label>`)
		b.WriteString(`</fieldset>`)
		b.WriteString(`<label>Columns to keep <input type="text" name="columns" placeholder="all columns"></label>`)
		fmt.Fprintf(&b, `<label>Preview rows <input type="number" name="preview_rows" min="1" max="1000" value="%d"></label>`, d.PreviewRows)

		b.WriteString(`<label>Convert to <select name="target">`)
		for _, f := range d.Targets {
			fmt.Fprintf(&b, `<option value="%s">%s</option>`,
				templ.EscapeString(string(f)), templ.EscapeString(targetLabel(f)))
		}
		b.WriteString(`</select></label>`)

		b.WriteString(`<button type="button" id="preview-btn">Preview</button>`)
		b.WriteString(`<button type="button" id="convert-btn">Convert first file</button>`)
		b.WriteString(`</form><div id="errors"></div><div id="results"></div></main>`)
		b.WriteString(pageScript)
		b.WriteString(`</body></html>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// ErrorAlert renders an error fragment for HTMX swaps.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div class="alert" role="alert">`)
		fmt.Fprintf(&b, `<strong>%s</strong>`, templ.EscapeString(message))
		if action != "" {
			fmt.Fprintf(&b, `<p>%s</p>`, templ.EscapeString(action))
		}
		if code != "" {
			fmt.Fprintf(&b, `<small>Code: %s</small>`, templ.EscapeString(code))
		}
		b.WriteString(`</div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func targetLabel(f tabular.Format) string {
	switch f {
	case tabular.CSV:
		return "CSV"
	case tabular.XLSX:
		return "Excel"
	default:
		return string(f)
	}
}

// FormatBytes renders a byte count with a binary unit, e.g. "50 MB".
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	value := strconv.FormatFloat(float64(n)/float64(div), 'f', -1, 64)
	if i := strings.IndexByte(value, '.'); i >= 0 && len(value) > i+2 {
		value = value[:i+2]
	}
	return value + " " + string("KMGTPE"[exp]) + "B"
}

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Data Sweeper</title>
<style>
body{font-family:system-ui,sans-serif;margin:0;background:#f6f7f9;color:#1f2933}
main{max-width:960px;margin:2rem auto;padding:0 1rem}
form{display:grid;gap:.75rem;background:#fff;padding:1rem;border-radius:6px}
fieldset{border:1px solid #d9dde3;border-radius:4px}
.hint{color:#52606d}
.alert{background:#fde8e8;border:1px solid #f5b5b5;padding:.75rem;border-radius:4px;margin:.5rem 0}
table{border-collapse:collapse;margin:.5rem 0;background:#fff}
td,th{border:1px solid #d9dde3;padding:.25rem .5rem;font-size:.9rem}
.bar{display:inline-block;height:.8rem;background:#3e7bfa;margin-right:2px}
</style>
</head>
<body>
`

// pageScript posts the form with fetch and renders the JSON results.
const pageScript = `<script>
(function(){
  var form = document.getElementById("upload");
  var results = document.getElementById("results");
  var errors = document.getElementById("errors");

  function esc(s){ var d=document.createElement("div"); d.textContent=s==null?"":String(s); return d.innerHTML; }
  function alertHTML(e){ return '<div class="alert" role="alert"><strong>'+esc(e.message)+'</strong>'+(e.action?'<p>'+esc(e.action)+'</p>':'')+'<small>Code: '+esc(e.code)+'</small></div>'; }

  function table(header, rows){
    var h = '<table><tr>'+header.map(function(c){return '<th>'+esc(c)+'</th>';}).join('')+'</tr>';
    rows.forEach(function(r){ h += '<tr>'+r.map(function(c){return '<td>'+esc(c)+'</td>';}).join('')+'</tr>'; });
    return h+'</table>';
  }

  function chart(c){
    if(!c){ return ''; }
    var h = '';
    c.series.forEach(function(s){
      var max = Math.max.apply(null, s.values.map(function(v){return Math.abs(v||0);}).concat([1]));
      h += '<p>'+esc(s.name)+'</p><div>'+s.values.map(function(v){
        return '<span class="bar" title="'+esc(v)+'" style="width:'+Math.round(Math.abs(v||0)/max*40+2)+'px"></span>';
      }).join('')+'</div>';
    });
    return h;
  }

  document.getElementById("preview-btn").addEventListener("click", function(){
    errors.innerHTML = ""; results.innerHTML = "";
    fetch("/api/preview", {method:"POST", body:new FormData(form), headers:{"Accept":"application/json"}})
      .then(function(r){ return r.json(); })
      .then(function(body){
        if(body.code){ errors.innerHTML = alertHTML(body); return; }
        body.files.forEach(function(f){
          var h = '<section><h2>'+esc(f.name)+'</h2>';
          if(f.error){ results.innerHTML += h+alertHTML(f.error)+'</section>'; return; }
          h += '<p>'+f.rows+' rows, '+f.columns.length+' columns ('+esc(f.format)+')</p>';
          h += table(["column","type"], f.columns.map(function(c){return [c.name, c.type];}));
          h += table(f.preview.header, f.preview.rows);
          h += chart(f.chart);
          results.innerHTML += h+'</section>';
        });
      })
      .catch(function(err){ errors.innerHTML = alertHTML({message:err.message, code:"ERR000"}); });
  });

  document.getElementById("convert-btn").addEventListener("click", function(){
    errors.innerHTML = "";
    var data = new FormData(form);
    var files = form.querySelector('input[type=file]').files;
    if(!files.length){ return; }
    data.delete("files");
    data.append("file", files[0]);
    fetch("/api/convert", {method:"POST", body:data}).then(function(r){
      if(!r.ok){ return r.json().then(function(e){ errors.innerHTML = alertHTML(e); }); }
      var name = "export";
      var m = /filename="?([^";]+)"?/.exec(r.headers.get("Content-Disposition")||"");
      if(m){ name = m[1]; }
      return r.blob().then(function(blob){
        var a = document.createElement("a");
        a.href = URL.createObjectURL(blob); a.download = name;
        document.body.appendChild(a); a.click(); a.remove();
      });
    });
  });
})();
</script>
`
