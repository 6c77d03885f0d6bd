package main

import "l10n-extractor/internal/cli"

func main() {
	cli.Execute()
}
