package main

import "github.com/BehramKo-WistyApp/seattle-energy-api/internal/cli"

func main() {
	cli.Execute()
}
