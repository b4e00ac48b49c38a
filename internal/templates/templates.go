// Package templates holds the embedded HTML pages served by the
// authorization endpoints.
package templates

import (
	"embed"
	"html/template"
)

//go:embed *.html
var files embed.FS

// Load parses the embedded pages for installation on the gin engine.
func Load() *template.Template {
	return template.Must(template.ParseFS(files, "*.html"))
}

// LoginPageProps feeds the login form. The authorize parameters ride through
// as hidden fields and come back on the login POST; nothing is stored
// server-side between authorize and login.
type LoginPageProps struct {
	ClientName          string
	Scope               string
	LoginAction         string
	ClientID            string
	RedirectURI         string
	State               string
	CodeChallenge       string
	CodeChallengeMethod string
}
