// Package ocr defines the per-page OCR record flowing into the pipeline.
// The OCR call itself (Google Vision in production) lives upstream; this
// package only models its output and loads pre-OCR'd sidecar files.
package ocr

import "strings"

// Page is one OCR'd page: raw text, heading candidates detected by the
// upstream font-size/center-alignment heuristic, and the source image name.
// Pages are immutable once produced.
type Page struct {
	Text     string   `json:"text"`
	Headings []string `json:"headings"`
	Image    string   `json:"image_name"`
}

// Stem returns the image filename without its extension.
func (p Page) Stem() string {
	name := p.Image
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return name
}

// IsSupplementary reports whether the page is an appendix/supplementary page,
// identified by the upstream naming convention of a non-digit trailing
// character in the filename stem (e.g. "0042a.png").
func (p Page) IsSupplementary() bool {
	stem := p.Stem()
	if stem == "" {
		return false
	}
	last := stem[len(stem)-1]
	return last < '0' || last > '9'
}
