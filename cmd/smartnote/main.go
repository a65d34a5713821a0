package main

import (
	"log"

	"github.com/nhle/smartnote/internal/commands"
)

func main() {
	if err := commands.New().Execute(); err != nil {
		log.Fatalf("smartnote: %v", err)
	}
}
