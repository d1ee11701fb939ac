package main

import "PintellAPI/internal/cli"

func main() {
	cli.Execute()
}
