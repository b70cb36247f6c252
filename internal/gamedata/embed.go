// Package gamedata provides embedded game data and utilities for loading it.
package gamedata

import "embed"

// dataFS embeds all JSON files and the effect DSL from this directory at build time.
//
//go:embed *.json *.dsl
var dataFS embed.FS
