package main

import (
	"embed"

	"github.com/slaxmankiran/aitravel-app-sub008/cmd"
)

//go:embed frontend/dist
var embedFrontend embed.FS

func main() {
	cmd.Execute(embedFrontend)
}
