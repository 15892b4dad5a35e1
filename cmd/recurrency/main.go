package main

import "github.com/midulanmathi/reCurrency/internal/cli"

func main() {
	cli.Execute()
}
