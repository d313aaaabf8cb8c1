package main

import "github.com/lepinkainen/doubanmeta/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
