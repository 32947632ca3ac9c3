package report

import (
	"context"
	"io"

	"gomiss/domain/report"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// HTMLSink renders the report as a standalone HTML page by converting the
// markdown rendering. Implements ports.ReportSinkPort.
type HTMLSink struct {
	w io.Writer
}

// NewHTMLSink creates an HTML renderer writing to w
func NewHTMLSink(w io.Writer) *HTMLSink {
	return &HTMLSink{w: w}
}

// Render writes the report as HTML
func (s *HTMLSink) Render(ctx context.Context, rep *report.AnalysisReport) error {
	md := RenderMarkdown(rep)

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{
		Title: "Missingness analysis report",
		Flags: html.CommonFlags | html.CompletePage,
	})

	_, err := s.w.Write(markdown.Render(doc, renderer))
	return err
}
