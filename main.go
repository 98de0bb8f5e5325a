package main

import (
	"log"

	"github.com/spigell/fit-screener/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
