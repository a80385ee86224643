package main

import "github.com/ornamently/jewelify/cmd"

func main() {
	cmd.Start()
}
