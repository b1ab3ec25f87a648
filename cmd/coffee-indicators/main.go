package main

import cmd "github.com/rohmanhakim/coffee-indicators/internal/cli"

func main() {
	cmd.Execute()
}
