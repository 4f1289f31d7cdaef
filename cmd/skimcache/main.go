package main

import (
	cmd "github.com/wibisana/skimcache/internal/cli"
)

func main() {
	cmd.Execute()
}
