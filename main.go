package main

import "github.com/theirongolddev/adburn/cmd"

func main() {
	cmd.Execute()
}
