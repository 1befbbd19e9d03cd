package bracket

type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Team rating is 1-5 stars, higher is a stronger seed in the draw
type Team struct {
	ID         string `json:"id,omitempty" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	League     string `json:"league" yaml:"league"`
	Rating     int    `json:"rating" yaml:"rating"`
	LogoColor  string `json:"logoColor" yaml:"logo_color"`
	Logo       string `json:"logo" yaml:"logo"`
	StarPlayer string `json:"starPlayer" yaml:"star_player"`
}

// Assignment binds one player to one team for the life of a tournament run
type Assignment struct {
	Player Player `json:"player"`
	Team   Team   `json:"team"`
}

func (a Assignment) PlayerID() string {
	return a.Player.ID
}
