package main

import (
	"github.com/setusign/signgo/internal/app/landmark"
	"github.com/setusign/signgo/internal/pkg/cmdapp"
)

func main() {
	cmdapp.PrintBanner("landmark service", version)
	landmark.Execute()
}

var (
	version string
)
