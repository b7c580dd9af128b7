package main

import "github.com/satishjasthi/repo-lens/cmd"

func main() {
	cmd.Execute()
}
