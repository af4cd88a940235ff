package tui

import (
	"bytes"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/smileynet/contactform"
)

// BannerData is the input to the success banner template.
type BannerData struct {
	BusinessName string
}

// RenderBanner renders the success banner template from fsys.
func RenderBanner(fsys fs.FS, data BannerData) (string, error) {
	raw, err := fs.ReadFile(fsys, contactform.SuccessTemplate)
	if err != nil {
		return "", fmt.Errorf("banner: reading template: %w", err)
	}
	tmpl, err := template.New("success").Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return "", fmt.Errorf("banner: parsing template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("banner: rendering template: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
