package main

import (
	"log"

	"github.com/kianlev/gridflex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
