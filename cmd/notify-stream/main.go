package main

import (
	"os"

	"github.com/leasedesk/notify-stream/cmd"
)

func main() {
	os.Exit(run(cmd.Execute))
}

func run(execute func() error) int {
	if err := execute(); err != nil {
		return 1
	}
	return 0
}
