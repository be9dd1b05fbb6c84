package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// ErrorAlert is the fragment shown in place of results when a whole request
// fails, such as an oversized upload or a busy server.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTMLWriter(w)
		h.raw(`<div class="alert alert-error" role="alert"><strong>`)
		h.text(message)
		h.raw(`</strong>`)
		if action != "" {
			h.raw(` <span class="alert-action">`)
			h.text(action)
			h.raw(`</span>`)
		}
		if code != "" {
			h.raw(` <code class="alert-code">`)
			h.text(code)
			h.raw(`</code>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}
