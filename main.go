package main

import (
	"log"

	"ticket-exchange/cmd"
)

func main() {
	if err := cmd.Start(); err != nil {
		log.Fatal(err)
	}
}
