package render

import (
	"html/template"

	"codecompass/internal/backend"
	"codecompass/internal/eventbus"
)

// Search is the model of the search results panel.
type Search struct {
	Query    eventbus.RunSearch
	Result   backend.SearchResult
	PageSize int32
}

type searchLine struct {
	Line   int32
	Text   string
	Action Action
}

type searchFile struct {
	Name   string
	Path   string
	Action Action
	Lines  []searchLine
}

type searchView struct {
	Text  string
	Total int64
	Files []searchFile
	Page  int32
	Prev  Action
	Next  Action
}

// SearchResults groups matches per file. Each line opens the file at the match.
func SearchResults(s Search) (template.HTML, error) {
	v := searchView{Text: s.Query.Text, Total: s.Result.TotalFiles, Page: s.Query.Page + 1}
	for _, entry := range s.Result.Results {
		f := searchFile{
			Name:   entry.File.Name,
			Path:   entry.File.Path,
			Action: Publish(eventbus.OpenFile{FileID: entry.File.ID}),
		}
		for _, m := range entry.Lines {
			sel := m.Range
			f.Lines = append(f.Lines, searchLine{
				Line:   m.Range.StartPos.Line,
				Text:   m.Text,
				Action: Publish(eventbus.OpenFile{FileID: entry.File.ID, Selection: &sel}),
			})
		}
		v.Files = append(v.Files, f)
	}
	if s.Query.Page > 0 {
		prev := s.Query
		prev.Page--
		v.Prev = Publish(prev)
	}
	if s.PageSize > 0 && int64(s.Query.Page+1)*int64(s.PageSize) < s.Result.TotalFiles {
		next := s.Query
		next.Page++
		v.Next = Publish(next)
	}
	return execute("search", v)
}

// SearchBox is the model of the header search form.
type SearchBox struct {
	Query eventbus.RunSearch
	Types []backend.SearchType
}

// SearchForm renders the search box. The bridge publishes runSearch from the
// form fields on submit.
func SearchForm(b SearchBox) (template.HTML, error) {
	if b.Query.Type == "" && len(b.Types) > 0 {
		b.Query.Type = b.Types[0].ID
	}
	return execute("searchform", b)
}

// Suggestions lists completions of the typed text. Each one runs a search.
func Suggestions(query eventbus.RunSearch, words []string) (template.HTML, error) {
	items := make([]MenuItem, 0, len(words))
	for _, w := range words {
		q := query
		q.Text = w
		q.Page = 0
		items = append(items, MenuItem{Label: w, Action: Publish(q)})
	}
	return execute("suggestions", items)
}

const searchTemplates = `
{{define "searchform"}}<form class="cc-searchbox" data-cc-form="runSearch"><input type="search" name="text" value="{{.Query.Text}}" autocomplete="off" placeholder="Search"><select name="type">{{range .Types}}<option value="{{.ID}}"{{if eq .ID $.Query.Type}} selected{{end}}>{{.Name}}</option>{{end}}</select><input name="fileFilter" value="{{.Query.FileFilter}}" placeholder="File filter"><input name="dirFilter" value="{{.Query.DirFilter}}" placeholder="Directory filter"><div id="region-suggestions" class="cc-popup"></div></form>{{end}}
{{define "suggestions"}}{{if .}}<ul class="cc-suggest">{{range .}}<li {{action .Action}}>{{.Label}}</li>{{end}}</ul>{{end}}{{end}}
{{define "search"}}<div class="cc-search">{{if .Files}}<p class="cc-summary">{{.Total}} files match <q>{{.Text}}</q></p>{{range .Files}}<div class="cc-search-file"><a class="cc-file" title="{{.Path}}" {{action .Action}}>{{.Name}}</a><ul>{{range .Lines}}<li {{action .Action}}><span class="cc-lineno">{{.Line}}</span><code>{{.Text}}</code></li>{{end}}</ul></div>{{end}}<div class="cc-pager">{{if not .Prev.IsZero}}<button {{action .Prev}}>Previous</button>{{end}}<span>page {{.Page}}</span>{{if not .Next.IsZero}}<button {{action .Next}}>Next</button>{{end}}</div>{{else}}<p class="cc-empty">No result</p>{{end}}</div>{{end}}
`
