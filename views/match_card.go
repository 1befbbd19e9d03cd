package views

import (
	"context"
	"html/template"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// MatchCard renders one match of a group or knockout round. Editable matches carry the
// organizer controls, everything else is read-only.
func MatchCard(m MatchView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		esc := templ.EscapeString[string]

		b.WriteString(`<div class="match" data-match="` + esc(m.ID) + `">`)
		b.WriteString(`<div class="muted">` + esc(m.Label) + ` · ` + esc(m.StatusLabel) + `</div>`)
		writeSide(&b, m.Player1Won, m.Player1.Player.Name, m.Player1.Team.Name, m.Score1Text)
		if m.Player2 != nil {
			writeSide(&b, m.Player2Won, m.Player2.Player.Name, m.Player2.Team.Name, m.Score2Text)
		} else {
			b.WriteString(`<div class="muted">BYE</div>`)
		}

		if m.Editable {
			b.WriteString(`<div class="controls">`)
			b.WriteString(`<button data-action="start">Start</button>`)
			b.WriteString(`<input type="number" min="0" name="score1" value="` + esc(m.Score1Text) + `" size="2">`)
			b.WriteString(`<input type="number" min="0" name="score2" value="` + esc(m.Score2Text) + `" size="2">`)
			b.WriteString(`<button data-action="score">Save score</button>`)
			if m.Shootout && m.Player2 != nil {
				for _, p := range []struct{ id, name string }{
					{m.Player1.Player.ID, m.Player1.Player.Name},
					{m.Player2.Player.ID, m.Player2.Player.Name},
				} {
					b.WriteString(`<button data-action="shootout" data-winner="` + esc(p.id) + `">` + esc(p.name) + ` wins shootout</button>`)
				}
			}
			b.WriteString(`<button data-action="finish">Finish</button>`)
			b.WriteString(`<button data-action="reopen">Reopen</button>`)
			b.WriteString(`</div>`)
		}
		b.WriteString(`</div>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeSide(b *strings.Builder, won bool, player, team, score string) {
	b.WriteString(`<div`)
	if won {
		b.WriteString(` class="winner"`)
	}
	b.WriteString(`>` + templ.EscapeString(player) + ` <span class="muted">` + templ.EscapeString(team) + `</span> ` + templ.EscapeString(score) + `</div>`)
}

// matchCard lets the page templates embed the component
func matchCard(m MatchView) (template.HTML, error) {
	return templ.ToGoHTML(context.Background(), MatchCard(m))
}
