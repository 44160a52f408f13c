package main

import "github.com/yoanbernabeu/docchat/cli"

func main() {
	cli.Execute()
}
