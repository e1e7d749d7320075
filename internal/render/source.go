package render

import (
	"html/template"
	"strings"

	"codecompass/internal/backend"
)

// Source is the model of the text view.
type Source struct {
	File      backend.FileInfo
	Content   string
	Selection *backend.Range
	// Blame, when set, adds a gutter column aligned with the lines.
	Blame []BlameLine
}

type sourceLine struct {
	No       int32
	Text     string
	Selected bool
	Blame    *BlameLine
}

type sourceView struct {
	File  backend.FileInfo
	Lines []sourceLine
	Blame bool
}

// SplitLines splits content on \n, dropping a trailing \r per line.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// SourceView renders line-numbered code with the selection highlighted.
func SourceView(s Source) (template.HTML, error) {
	raw := SplitLines(s.Content)
	v := sourceView{File: s.File, Lines: make([]sourceLine, len(raw)), Blame: len(s.Blame) > 0}
	for i, text := range raw {
		no := int32(i + 1)
		l := sourceLine{No: no, Text: text}
		if s.Selection != nil && s.Selection.Contains(no) {
			l.Selected = true
		}
		if i < len(s.Blame) {
			l.Blame = &s.Blame[i]
		}
		v.Lines[i] = l
	}
	return execute("source", v)
}

const sourceTemplates = `
{{define "source"}}<div class="cc-source" data-file-id="{{.File.ID}}" data-file-type="{{.File.Type}}"><table>{{range .Lines}}<tr class="cc-line{{if .Selected}} selected{{end}}" data-line="{{.No}}">{{if $.Blame}}{{template "blamecell" .Blame}}{{end}}<td class="cc-lineno">{{.No}}</td><td class="cc-code"><pre>{{.Text}}</pre></td></tr>{{end}}</table></div>{{end}}
`
