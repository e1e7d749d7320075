package render

import (
	"html/template"
	"time"

	"codecompass/internal/backend"
	"codecompass/internal/eventbus"
)

// BlameLine is the gutter cell of one source line. Only the first line of a
// hunk carries the commit summary.
type BlameLine struct {
	First    bool
	CommitID string
	Author   string
	Summary  string
	Date     string
	Age      int
	Action   Action
}

const ageBuckets = 10

// BlameGutter aligns hunks to lineCount lines. Lines outside every hunk get
// an empty cell. Age 0 is the oldest commit, 9 the newest.
func BlameGutter(repoID string, hunks []backend.BlameHunk, lineCount int) []BlameLine {
	out := make([]BlameLine, lineCount)
	if len(hunks) == 0 {
		return out
	}
	oldest, newest := hunks[0].Time, hunks[0].Time
	for _, h := range hunks {
		if h.Time < oldest {
			oldest = h.Time
		}
		if h.Time > newest {
			newest = h.Time
		}
	}
	for _, h := range hunks {
		age := ageBuckets - 1
		if newest > oldest {
			age = int(float64(h.Time-oldest) / float64(newest-oldest) * (ageBuckets - 1))
		}
		act := Publish(eventbus.ShowCommit{RepoID: repoID, CommitID: h.CommitID})
		date := time.Unix(h.Time, 0).UTC().Format("2006-01-02")
		for i := int32(0); i < h.LineCount; i++ {
			idx := int(h.StartLine+i) - 1
			if idx < 0 || idx >= lineCount {
				continue
			}
			out[idx] = BlameLine{
				First:    i == 0,
				CommitID: h.CommitID,
				Author:   h.Author,
				Summary:  h.Summary,
				Date:     date,
				Age:      age,
				Action:   act,
			}
		}
	}
	return out
}

type commitView struct {
	backend.Commit
	Short string
	Date  string
}

// CommitDiff renders a commit header followed by its per-file hunks.
func CommitDiff(c backend.Commit) (template.HTML, error) {
	short := c.ID
	if len(short) > 10 {
		short = short[:10]
	}
	return execute("commit", commitView{
		Commit: c,
		Short:  short,
		Date:   time.Unix(c.Time, 0).UTC().Format(time.RFC1123),
	})
}

func diffClass(origin string) string {
	switch origin {
	case "+":
		return "add"
	case "-":
		return "del"
	default:
		return "ctx"
	}
}

const gitTemplates = `
{{define "blamecell"}}{{if and . .CommitID}}<td class="cc-blame age-{{.Age}}"{{if .First}} title="{{.Summary}}"{{end}}>{{if .First}}<a {{action .Action}}>{{.Date}} {{.Author}}</a>{{end}}</td>{{else}}<td class="cc-blame"></td>{{end}}{{end}}
{{define "commit"}}<div class="cc-commit"><h3>{{.Summary}}</h3><p class="cc-meta"><code>{{.Short}}</code> {{.Author}} {{.Date}}</p><pre class="cc-message">{{.Message}}</pre>{{range .Diff}}<div class="cc-filediff"><h4>{{.Status}} {{.Path}}{{with .OldPath}} (from {{.}}){{end}}</h4>{{range .Hunks}}<table class="cc-hunk"><tr><th colspan="3">{{.Header}}</th></tr>{{range .Lines}}<tr class="{{diffClass .Origin}}"><td>{{if .OldLine}}{{.OldLine}}{{end}}</td><td>{{if .NewLine}}{{.NewLine}}{{end}}</td><td><pre>{{.Origin}}{{.Content}}</pre></td></tr>{{end}}</table>{{end}}</div>{{end}}</div>{{end}}
`
