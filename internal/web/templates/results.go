package templates

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/DataSweeper/internal/core"
)

var actionLabels = map[core.CleanAction]string{
	core.ActionRemoveDuplicates: "Remove duplicates",
	core.ActionFillMissing:      "Fill missing values",
}

// Results is the fragment returned by POST /process: a summary line and one
// card per uploaded file.
func Results(batch *core.BatchResult) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		h.rawf(`<div class="results" data-run="%s">`, templ.EscapeString(batch.RunID))
		for i := range batch.Files {
			h.component(ctx, FileCard(&batch.Files[i]))
		}
		h.raw(`<ul class="summary">`)
		h.component(ctx, MessageLine(batch.Summary))
		h.raw(`</ul></div>`)
		return h.err
	})
}

// FileCard shows one file's messages, preview, controls and chart.
func FileCard(res *core.FileResult) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		idx := itoa(res.Index)

		h.rawf(`<section class="file-card status-%s" data-file="%s">`, templ.EscapeString(string(res.Status)), idx)
		h.raw(`<header><h2>`)
		h.text(res.FileName)
		h.raw(`</h2><span class="meta">`)
		h.text(fmt.Sprintf("%.2f KB", res.SizeKB))
		if res.Format != "" {
			h.text(" · " + res.Format.Label())
		}
		h.raw(`</span></header>`)

		h.raw(`<ul class="messages">`)
		for _, m := range res.Messages {
			h.component(ctx, MessageLine(m))
		}
		h.raw(`</ul>`)

		if res.Preview != nil {
			h.component(ctx, PreviewTable(res.Preview))
		}

		// Controls need a parsed table.
		if len(res.Columns) > 0 {
			h.component(ctx, fileControls(res))
		}

		if res.Chart != nil {
			h.component(ctx, BarChart(res.Chart))
		}

		h.raw(`</section>`)
		return h.err
	})
}

// MessageLine renders one status message.
func MessageLine(m core.Message) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		h.rawf(`<li class="msg msg-%s">`, templ.EscapeString(string(m.Severity)))
		h.text(m.Text)
		if m.Code != "" {
			h.raw(` <code>`)
			h.text(m.Code)
			h.raw(`</code>`)
		}
		h.raw(`</li>`)
		return h.err
	})
}

// PreviewTable shows the leading rows of a parsed file.
func PreviewTable(p *core.Preview) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		h.raw(`<div class="preview"><table><thead><tr>`)
		for _, c := range p.Columns {
			h.raw(`<th>`)
			h.text(c)
			h.raw(`</th>`)
		}
		h.raw(`</tr></thead><tbody>`)
		for _, row := range p.Rows {
			h.raw(`<tr>`)
			for _, v := range row {
				if v == "" {
					h.raw(`<td class="null">NaN</td>`)
					continue
				}
				h.raw(`<td>`)
				h.text(v)
				h.raw(`</td>`)
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table>`)
		h.rawf(`<p class="note">%d of %d rows</p></div>`, len(p.Rows), p.Total)
		return h.err
	})
}

func fileControls(res *core.FileResult) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		idx := itoa(res.Index)
		opts := res.Options

		h.raw(`<fieldset class="columns"><legend>Columns</legend>`)
		for _, c := range res.Columns {
			h.rawf(`<label><input type="checkbox" data-control="column" data-file="%s"`, idx)
			h.attr("value", c.Name)
			if slices.Contains(res.Selected, c.Name) {
				h.raw(` checked`)
			}
			h.raw(`> `)
			h.text(c.Name)
			h.rawf(` <small>%s</small></label>`, templ.EscapeString(string(c.Kind)))
		}
		h.raw(`</fieldset>`)

		h.raw(`<div class="toggles">`)
		toggle(h, idx, "clean", "Clean data", opts.Clean)
		if opts.Clean {
			h.raw(`<span class="actions">`)
			for _, a := range []core.CleanAction{core.ActionRemoveDuplicates, core.ActionFillMissing} {
				h.rawf(`<button type="button" data-file="%s"`, idx)
				h.attr("data-action", string(a))
				h.raw(`>`)
				h.text(actionLabels[a])
				h.raw(`</button>`)
			}
			if len(opts.Actions) > 0 {
				h.raw(`<small class="applied">Applied: `)
				for i, a := range opts.Actions {
					if i > 0 {
						h.raw(` → `)
					}
					label, ok := actionLabels[a]
					if !ok {
						label = string(a)
					}
					h.text(label)
				}
				h.raw(`</small>`)
			}
			h.raw(`</span>`)
		}
		toggle(h, idx, "visualize", "Show visualization", opts.Visualize)
		h.raw(`</div>`)

		target := opts.Target
		if target == "" {
			target = core.FormatCSV
		}
		h.raw(`<div class="convert"><span>Convert to:</span>`)
		for _, f := range []core.Format{core.FormatCSV, core.FormatXLSX} {
			h.rawf(`<label><input type="radio" data-control="target" data-file="%s" name="target-%s"`, idx, idx)
			h.attr("value", string(f))
			if f == target {
				h.raw(` checked`)
			}
			h.raw(`> `)
			h.text(f.Label())
			h.raw(`</label>`)
		}
		h.rawf(`<button type="button" class="primary" data-action="convert" data-file="%s">Convert &amp; download</button>`, idx)
		h.raw(`</div>`)
		return h.err
	})
}

func toggle(h *htmlWriter, idx, control, label string, on bool) {
	h.rawf(`<label class="toggle"><input type="checkbox" data-control="%s" data-file="%s"`, control, idx)
	if on {
		h.raw(` checked`)
	}
	h.raw(`> `)
	h.text(label)
	h.raw(`</label>`)
}
