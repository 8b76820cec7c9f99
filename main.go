package main

import (
	"log"

	"clubops/core/server"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	if err := server.Run(); err != nil {
		log.Fatal(err)
	}
}
