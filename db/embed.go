// Package db embeds the broker's SQL migrations so production builds carry
// them inside the binary.
package db

import "embed"

//go:embed migrations
var Migrations embed.FS
