package cmdshared

import (
	"io"

	"github.com/vbauerster/mpb/v4"
	"github.com/vbauerster/mpb/v4/decor"

	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/core"
	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/installer"
)

// Progress draws one bar per download.
type Progress struct {
	p *mpb.Progress
}

func NewProgress(w io.Writer) *Progress {
	return &Progress{p: mpb.New(mpb.WithOutput(w), mpb.WithWidth(40))}
}

// Func wraps each download body in a bar. Downloads of unknown size get no bar.
func (pr *Progress) Func() installer.ProgressFunc {
	return func(mod *core.ModEntry, total int64, body io.ReadCloser) io.ReadCloser {
		if total <= 0 {
			return body
		}
		name := mod.DisplayName()
		bar := pr.p.AddBar(total,
			mpb.PrependDecorators(
				decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DidentRight}),
				decor.CountersKibiByte("% .1f / % .1f"),
			),
			mpb.AppendDecorators(decor.Percentage()),
		)
		return &barReader{ReadCloser: bar.ProxyReader(body), bar: bar}
	}
}

// Wait blocks until every bar has finished rendering.
func (pr *Progress) Wait() {
	pr.p.Wait()
}

// barReader drops its bar when the download stops early so Wait does not block on it.
type barReader struct {
	io.ReadCloser
	bar *mpb.Bar
}

func (r *barReader) Close() error {
	err := r.ReadCloser.Close()
	if !r.bar.Completed() {
		r.bar.Abort(true)
	}
	return err
}
