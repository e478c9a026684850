package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// Report is the result of a check run.
type Report struct {
	Files      []FileReport `json:"files" yaml:"files"`
	Checked    int          `json:"checked" yaml:"checked"`
	Verified   int          `json:"verified" yaml:"verified"`
	Unverified int          `json:"unverified" yaml:"unverified"`
}

// FileReport is the check result for one file.
type FileReport struct {
	Path         string    `json:"path" yaml:"path"`
	Language     string    `json:"language" yaml:"language"`
	SyntaxErrors bool      `json:"syntax_errors,omitempty" yaml:"syntax_errors,omitempty"`
	Checked      int       `json:"checked" yaml:"checked"`
	Verified     int       `json:"verified" yaml:"verified"`
	Findings     []Finding `json:"findings,omitempty" yaml:"findings,omitempty"`
}

// Finding is one span that failed verification.
type Finding struct {
	Kind    string `json:"kind" yaml:"kind"`
	Start   string `json:"start" yaml:"start"`
	End     string `json:"end" yaml:"end"`
	Cause   string `json:"cause" yaml:"cause"` // "syntax", "mismatch" or "error"
	Payload string `json:"payload" yaml:"payload"`
	Want    string `json:"want,omitempty" yaml:"want,omitempty"`
	Got     string `json:"got,omitempty" yaml:"got,omitempty"`
}

func (r *Report) add(fr FileReport) {
	r.Files = append(r.Files, fr)
	r.Checked += fr.Checked
	r.Verified += fr.Verified
	r.Unverified += len(fr.Findings)
}

func writeReport(w io.Writer, r *Report, format string, colored bool) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		writeText(w, r, colored)
		return nil
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// palette holds the text report styles.
type palette struct {
	path, ok, bad, dim, kind *color.Color
}

func newPalette(colored bool) palette {
	p := palette{
		path: color.New(color.Bold),
		ok:   color.New(color.FgGreen),
		bad:  color.New(color.FgRed, color.Bold),
		dim:  color.New(color.Faint),
		kind: color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.path, p.ok, p.bad, p.dim, p.kind} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func writeText(w io.Writer, r *Report, colored bool) {
	p := newPalette(colored)

	for _, fr := range r.Files {
		status := p.ok.Sprint("ok")
		if len(fr.Findings) > 0 {
			status = p.bad.Sprintf("%d unverified", len(fr.Findings))
		}
		fmt.Fprintf(w, "%s %s %s\n",
			p.path.Sprint(fr.Path),
			p.dim.Sprintf("(%s, %d/%d verified)", fr.Language, fr.Verified, fr.Checked),
			status)
		if fr.SyntaxErrors {
			fmt.Fprintf(w, "  %s\n", p.dim.Sprint("file contains syntax errors"))
		}
		for _, f := range fr.Findings {
			fmt.Fprintf(w, "  %s:%s-%s %s [%s]\n",
				fr.Path, f.Start, f.End, p.kind.Sprint(f.Kind), f.Cause)
			for _, line := range strings.Split(f.Payload, "\n") {
				fmt.Fprintf(w, "    %s %s\n", p.dim.Sprint("|"), line)
			}
		}
	}

	fmt.Fprintln(w)
	summary := fmt.Sprintf("%d spans checked, %d verified, %d unverified",
		r.Checked, r.Verified, r.Unverified)
	if r.Unverified > 0 {
		fmt.Fprintf(w, "%s %s\n", p.bad.Sprint("✗"), summary)
	} else {
		fmt.Fprintf(w, "%s %s\n", p.ok.Sprint("✓"), summary)
	}
}
