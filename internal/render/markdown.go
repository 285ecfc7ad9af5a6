package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Heading is one entry of a post's table of contents.
type Heading struct {
	Level int
	ID    string
	Text  string
}

// Article is a rendered post body.
type Article struct {
	HTML template.HTML
	TOC  []Heading
}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
}

// Markdown converts a post body to HTML and collects its level 2 and 3
// headings.
func (r *Renderer) Markdown(body string) (Article, error) {
	src := []byte(body)
	doc := r.md.Parser().Parse(text.NewReader(src))

	var toc []Heading
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		h, ok := n.(*ast.Heading)
		if !entering || !ok || h.Level < 2 || h.Level > 3 {
			return ast.WalkContinue, nil
		}
		id, _ := h.AttributeString("id")
		idBytes, _ := id.([]byte)
		toc = append(toc, Heading{Level: h.Level, ID: string(idBytes), Text: headingText(h, src)})
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return Article{}, fmt.Errorf("render: toc: %w", err)
	}

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, src, doc); err != nil {
		return Article{}, fmt.Errorf("render: markdown: %w", err)
	}
	return Article{HTML: template.HTML(buf.String()), TOC: toc}, nil
}

func headingText(n ast.Node, src []byte) string {
	var b bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
