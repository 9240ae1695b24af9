package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

var (
	version   = ""
	gitCommit = ""
	buildTime = ""
)

var red = color.New(color.FgRed).SprintFunc()

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errToolFailed) {
			fmt.Fprintln(os.Stderr, red("Error: "+err.Error()))
		}
		os.Exit(1)
	}
}
