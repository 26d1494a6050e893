package main

import (
	"fmt"
	"os"
)

func main() {
	root, c := newRootCmd()
	if err := execute(root, c); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
