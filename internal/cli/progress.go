package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// checkProgress reports check progress with a progress bar.
type checkProgress struct {
	w         io.Writer
	quiet     bool
	fileBar   *progressbar.ProgressBar
	startTime time.Time
}

// newCheckProgress creates a progress reporter writing to w.
func newCheckProgress(w io.Writer, quiet bool) *checkProgress {
	return &checkProgress{
		w:         w,
		quiet:     quiet,
		startTime: time.Now(),
	}
}

func (c *checkProgress) Start(totalFiles int) {
	if c.quiet {
		return
	}
	c.fileBar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(c.w),
		progressbar.OptionSetDescription("Checking files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.w)
		}),
	)
}

func (c *checkProgress) FileChecked(path string) {
	if c.quiet || c.fileBar == nil {
		return
	}
	c.fileBar.Describe(path)
	c.fileBar.Add(1)
}

func (c *checkProgress) Finish(r *Report) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}
	fmt.Fprintf(c.w, "Checked %d files in %.1fs\n", len(r.Files), time.Since(c.startTime).Seconds())
}
