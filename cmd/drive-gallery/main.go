package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"drive-gallery/internal/cli"
	"drive-gallery/internal/version"
)

func main() {
	root := cli.NewRootCmd()
	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version.Value),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
