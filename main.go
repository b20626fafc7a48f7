package main

import "github.com/fragmede/habrscore/cmd"

func main() {
	cmd.Execute()
}
