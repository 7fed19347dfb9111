package main

import "github.com/geosync-io/geosync/cmd/cli"

func main() {
	cli.Execute()
}
