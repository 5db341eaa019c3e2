package main

import "github.com/spec-kit/reservation-service/internal/cli"

func main() {
	cli.Execute()
}
