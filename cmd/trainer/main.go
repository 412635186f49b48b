package main

import (
	"github.com/setusign/signgo/internal/app/trainer"
	"github.com/setusign/signgo/internal/pkg/cmdapp"
)

func main() {
	cmdapp.PrintBanner("trainer", version)
	trainer.Execute()
}

var (
	version string
)
