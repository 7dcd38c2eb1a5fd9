package main

import (
	"github.com/zoobzio/tagwire/cmd/tagwire/cmd"
)

func main() {
	cmd.Execute()
}
