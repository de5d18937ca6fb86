package main

import "github.com/appdriver/appdriver/cmd"

func main() {
	cmd.Execute()
}
