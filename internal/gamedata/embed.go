// Package gamedata holds the embedded content catalogs (classes, skills,
// enemies, bosses, regions, events, statuses) and the typed registries built
// from them.
package gamedata

import "embed"

//go:embed *.json
var catalogFS embed.FS
