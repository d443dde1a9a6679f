package main

import "github.com/ruangkarya/ruangkarya/cmd"

func main() {
	cmd.Execute()
}
