package main

import "github.com/d60-Lab/anon-forum/internal/cli"

func main() {
	cli.Execute()
}
