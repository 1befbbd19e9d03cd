package views

import (
	"context"
	"html/template"

	"github.com/AdamBeresnev/bracket-master/internal/middleware"
	users "github.com/AdamBeresnev/bracket-master/internal/user"
)

func GetUser(ctx context.Context) *users.User {
	return middleware.GetAuthenticatedUser(ctx)
}

var templateFuncs = template.FuncMap{
	"displayName": displayName,
	"matchCard":   matchCard,
}

func displayName(u *users.User) string {
	switch {
	case u == nil:
		return "there"
	case u.Username != "":
		return u.Username
	case u.Email != "":
		return u.Email
	}
	return "there"
}
