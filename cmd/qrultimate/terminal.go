package main

import (
	"github.com/pkg/errors"
	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/terminal"

	"github.com/cristianadrielbraun/qrultimate/internal/render"
	"github.com/cristianadrielbraun/qrultimate/internal/settings"
)

// errTerminalOnStdout rejects --terminal together with --out -.
var errTerminalOnStdout = errors.New("--terminal cannot share stdout with --out -")

// printTerminal draws the plain symbol of s on the terminal.
func printTerminal(s settings.Settings) error {
	level, err := render.LevelOption(s.Level)
	if err != nil {
		return err
	}
	qrc, err := qrcode.NewWith(s.Effective(), level)
	if err != nil {
		return errors.Wrap(err, "encode")
	}
	return errors.Wrap(qrc.Save(terminal.New()), "print")
}
