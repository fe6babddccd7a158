// Package demo holds the example apps served by "hyper serve".
package demo

import (
	"sort"

	"github.com/vango-dev/hyper/pkg/app"
)

// Demo is a named app. Config builds a fresh app for every mount.
type Demo struct {
	Name        string
	Description string
	Config      func() app.Config
}

// Factory builds the app for a session. It has the shape of
// server.AppFactory.
func (d Demo) Factory(string) app.Config {
	return d.Config()
}

var registry = map[string]Demo{
	"counter": {
		Name:        "counter",
		Description: "increment, decrement and reset a number",
		Config:      Counter,
	},
	"ticker": {
		Name:        "ticker",
		Description: "a clock subscription that can be paused",
		Config:      func() app.Config { return Ticker(DefaultTickInterval) },
	},
	"todo": {
		Name:        "todo",
		Description: "a keyed todo list with add, remove and reverse",
		Config:      Todo,
	},
}

// Lookup returns the demo registered under name.
func Lookup(name string) (Demo, bool) {
	d, ok := registry[name]
	return d, ok
}

// Names returns the registered demo names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
