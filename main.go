package main

import "github.com/javanhut/archived/cli"

func main() {
	cli.Execute()
}
