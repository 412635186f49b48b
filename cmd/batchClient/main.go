package main

import (
	"github.com/setusign/signgo/internal/app/batch"
	"github.com/setusign/signgo/internal/pkg/cmdapp"
)

func main() {
	cmdapp.PrintBanner("batch client", version)
	batch.Execute()
}

var (
	version string
)
