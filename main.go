package main

import "github.com/gaurav-prasanna/sitemapgen/cmd"

func main() {
	cmd.Execute()
}
