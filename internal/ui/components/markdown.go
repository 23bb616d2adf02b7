package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/abhisek/prava/internal/ui/theme"
)

var mdParser parser.Parser = goldmark.New().Parser()

// Markdown renders a lesson body for the terminal. Headings, lists,
// emphasis and code are styled; links and raw HTML keep their text.
func Markdown(src string, width int) string {
	source := []byte(strings.ReplaceAll(src, "\r\n", "\n"))
	doc := mdParser.Parse(text.NewReader(source))

	r := mdRenderer{
		src:    source,
		width:  width,
		bold:   lipgloss.NewStyle().Bold(true),
		italic: lipgloss.NewStyle().Italic(true),
		code:   lipgloss.NewStyle().Foreground(theme.Secondary),
	}
	return strings.TrimRight(strings.Join(r.blocks(doc), "\n\n"), "\n")
}

type mdRenderer struct {
	src   []byte
	width int

	bold, italic, code lipgloss.Style
}

func (r *mdRenderer) wrap(indent int) lipgloss.Style {
	return lipgloss.NewStyle().Width(r.width).PaddingLeft(indent)
}

func (r *mdRenderer) blocks(parent ast.Node) []string {
	var out []string
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		switch n := c.(type) {
		case *ast.Heading:
			style := theme.Title
			if n.Level > 1 {
				style = theme.Body.Bold(true)
			}
			out = append(out, style.Render(r.inline(n)))
		case *ast.List:
			out = append(out, r.list(n, 0))
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			out = append(out, r.code.PaddingLeft(2).Render(r.lines(n)))
		case *ast.HTMLBlock:
			out = append(out, r.wrap(0).Render(r.lines(n)))
		case *ast.ThematicBreak:
			out = append(out, theme.Subtitle.Render(strings.Repeat("─", min(r.width, 40))))
		case *ast.Blockquote:
			out = append(out, r.wrap(2).Italic(true).Render(strings.Join(r.blocks(n), "\n")))
		default:
			out = append(out, r.wrap(0).Render(r.inline(n)))
		}
	}
	return out
}

// list renders one bullet or number per item; nested lists indent by two.
func (r *mdRenderer) list(l *ast.List, depth int) string {
	var out []string
	num := l.Start
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "• "
		if l.IsOrdered() {
			marker = fmt.Sprintf("%d. ", num)
			num++
		}
		var body []string
		var nested []string
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if sub, ok := c.(*ast.List); ok {
				nested = append(nested, r.list(sub, depth+1))
				continue
			}
			body = append(body, r.inline(c))
		}
		out = append(out, r.wrap(2+2*depth).Render(marker+strings.Join(body, " ")))
		out = append(out, nested...)
	}
	return strings.Join(out, "\n")
}

func (r *mdRenderer) inline(n ast.Node) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(r.src))
			switch {
			case v.HardLineBreak():
				b.WriteByte('\n')
			case v.SoftLineBreak():
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.CodeSpan:
			b.WriteString(r.code.Render(r.plain(v)))
		case *ast.Emphasis:
			if v.Level >= 2 {
				b.WriteString(r.bold.Render(r.inline(v)))
			} else {
				b.WriteString(r.italic.Render(r.inline(v)))
			}
		case *ast.AutoLink:
			b.Write(v.URL(r.src))
		case *ast.RawHTML:
			for i := 0; i < v.Segments.Len(); i++ {
				seg := v.Segments.At(i)
				b.Write(seg.Value(r.src))
			}
		default:
			b.WriteString(r.inline(c))
		}
	}
	return b.String()
}

// plain is the literal text under n, markup characters included.
func (r *mdRenderer) plain(n ast.Node) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(r.src))
			if v.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		default:
			b.WriteString(r.plain(c))
		}
	}
	return b.String()
}

func (r *mdRenderer) lines(n ast.Node) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(r.src))
	}
	return strings.TrimRight(b.String(), "\n")
}
