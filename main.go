package main

import "github.com/tverrfjellet/garmindump/cmd"

func main() {
	cmd.Execute()
}
