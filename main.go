package main

import "github.com/vincentngwk/GIT-ML-DS/cmd"

func main() {
	cmd.Execute()
}
