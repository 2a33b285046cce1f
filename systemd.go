package main

import (
	_ "embed"
	"io"
	"os"
	"os/user"
	"text/template"
)

//go:embed camelot.service
var camelotServiceEmbed string

type CamelotServiceParams struct {
	BinaryPath string
	User       string
	ConfigPath string
}

// SystemdServiceFile writes a unit file that runs this binary as a server.
func SystemdServiceFile(w io.Writer, configPath string) error {
	tmpl, err := template.New("camelot.service").Parse(camelotServiceEmbed)
	if err != nil {
		return err
	}

	path, err := os.Executable()
	if err != nil {
		return err
	}

	params := CamelotServiceParams{
		BinaryPath: path,
		User:       "camelot",
		ConfigPath: configPath,
	}
	if u, err := user.Current(); err == nil {
		params.User = u.Username
	}

	return tmpl.Execute(w, params)
}
