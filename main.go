package main

import "github.com/moyu-x/pdf-renamer/cmd"

func main() {
	cmd.Execute()
}
