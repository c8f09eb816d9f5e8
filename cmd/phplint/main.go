package main

import (
	"os"

	"github.com/yigitcukuren/mago-sub000/internal/cmd/phplint"
)

func main() {
	os.Exit(phplint.Run(os.Args[1:]))
}
