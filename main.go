package main

import "github.com/scribedb/scribe/cmd"

func main() {
	cmd.Execute()
}
