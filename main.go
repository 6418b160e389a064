package main

import "github.com/selimozcann/infoprobe/cmd"

func main() {
	cmd.Execute()
}
