package main

import "cardhub/internal/cli"

func main() {
	cli.Execute()
}
