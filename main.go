package main

import (
	"os"

	"github.com/askinaltinok-glitch/talentqx-sub012/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
