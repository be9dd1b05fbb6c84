package templates

import (
	"context"
	"io"
	"math"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/DataSweeper/internal/core"
)

const (
	chartWidth   = 640
	chartHeight  = 260
	chartPadLeft = 56
	chartPadTop  = 12
	chartPadBot  = 28
	chartPadR    = 12
)

var seriesColors = [2]string{"#2563eb", "#f59e0b"}

// BarChart draws the two series of c as grouped bars over the row index.
// Missing values leave a gap in their group.
func BarChart(c *core.BarChart) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if c == nil || len(c.Series) < 2 {
			return nil
		}
		h := newHTMLWriter(w)

		plotW := float64(chartWidth - chartPadLeft - chartPadR)
		plotH := float64(chartHeight - chartPadTop - chartPadBot)

		lo, hi := c.Bounds()
		if hi == lo {
			hi = lo + 1
		}
		y := func(v float64) float64 {
			return float64(chartPadTop) + (hi-v)/(hi-lo)*plotH
		}

		h.raw(`<figure class="chart">`)
		h.rawf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img"`, chartWidth, chartHeight)
		h.attr("aria-label", c.Series[0].Name+" and "+c.Series[1].Name+" by row")
		h.raw(`>`)

		// Axes and the zero line.
		zero := y(0)
		h.rawf(`<line x1="%d" y1="%d" x2="%d" y2="%d" class="axis"/>`,
			chartPadLeft, chartPadTop, chartPadLeft, chartHeight-chartPadBot)
		h.rawf(`<line x1="%d" y1="%.2f" x2="%d" y2="%.2f" class="axis"/>`,
			chartPadLeft, zero, chartWidth-chartPadR, zero)
		for _, tick := range []float64{lo, hi} {
			h.rawf(`<text x="%d" y="%.2f" class="tick" text-anchor="end">`, chartPadLeft-6, y(tick)+4)
			h.text(formatNumber(tick))
			h.raw(`</text>`)
		}

		n := len(c.Labels)
		if n > 0 {
			group := plotW / float64(n)
			bar := group * 0.4
			labelEvery := int(math.Ceil(float64(n) / 20))

			for i, label := range c.Labels {
				x0 := float64(chartPadLeft) + float64(i)*group + group*0.1
				for s, series := range c.Series[:2] {
					v := series.Values[i]
					if v == nil {
						continue
					}
					top, bottom := y(*v), zero
					if top > bottom {
						top, bottom = bottom, top
					}
					h.rawf(`<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s">`,
						x0+float64(s)*bar, top, bar, bottom-top, seriesColors[s])
					h.raw(`<title>`)
					h.text(series.Name + " [" + label + "]: " + formatNumber(*v))
					h.raw(`</title></rect>`)
				}
				if i%labelEvery == 0 {
					h.rawf(`<text x="%.2f" y="%d" class="tick" text-anchor="middle">`,
						x0+bar, chartHeight-chartPadBot+16)
					h.text(label)
					h.raw(`</text>`)
				}
			}
		}
		h.raw(`</svg>`)

		h.raw(`<figcaption><ul class="legend">`)
		for s, series := range c.Series[:2] {
			h.rawf(`<li><span class="swatch" style="background:%s"></span>`, seriesColors[s])
			h.text(series.Name)
			h.raw(` <small>mean `)
			h.text(formatNumber(series.Mean))
			h.raw(`, min `)
			h.text(formatNumber(series.Min))
			h.raw(`, max `)
			h.text(formatNumber(series.Max))
			h.raw(`</small></li>`)
		}
		h.raw(`</ul>`)
		if c.Truncated {
			h.raw(`<p class="note">Showing the first `)
			h.text(itoa(n))
			h.raw(` of `)
			h.text(itoa(c.TotalRows))
			h.raw(` rows.</p>`)
		}
		h.raw(`</figcaption></figure>`)
		return h.err
	})
}
