package main

import (
	"github.com/setusign/signgo/internal/app/deep"
	"github.com/setusign/signgo/internal/pkg/cmdapp"
)

func main() {
	cmdapp.PrintBanner("deep service", version)
	deep.Execute()
}

var (
	version string
)
