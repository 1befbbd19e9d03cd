package views

import (
	"embed"
	"html/template"

	"github.com/AdamBeresnev/bracket-master/internal/bracket"
	"github.com/AdamBeresnev/bracket-master/internal/presets"
	users "github.com/AdamBeresnev/bracket-master/internal/user"
	"github.com/a-h/templ"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("pages").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html"))

func page(name string, data any) templ.Component {
	return templ.FromGoHTML(pages.Lookup(name), data)
}

func LoginPage(providers []string, errMsg string) templ.Component {
	return page("login", struct {
		Providers []string
		Error     string
	}{providers, errMsg})
}

func Index(user *users.User, tournaments []bracket.Tournament) templ.Component {
	return page("index", struct {
		User        *users.User
		Tournaments []bracket.Tournament
	}{user, tournaments})
}

type tournamentPage struct {
	Tournament *bracket.Tournament
	Data       BracketData
	Presets    []presets.Preset
}

func TournamentPage(tournament *bracket.Tournament, available []presets.Preset) templ.Component {
	return page("tournament", tournamentPage{
		Tournament: tournament,
		Data:       PrepareBracketData(tournament.State),
		Presets:    available,
	})
}

func SpectatorPage(tournament *bracket.Tournament) templ.Component {
	return page("spectator", tournamentPage{
		Tournament: tournament,
		Data:       PrepareBracketData(tournament.State),
	})
}

// BracketFragment is the live part of the spectator page, refetched on every update
func BracketFragment(state bracket.State) templ.Component {
	return page("bracket", PrepareBracketData(state))
}
