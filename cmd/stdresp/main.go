// Command stdresp runs a demo bookshelf API built on the stdresp router
// and inspects how query strings are parsed.
//
//	stdresp serve --addr :8080 --config stdresp.yaml
//	stdresp inspect --query 'limit=5&sort=-year&filter=genre==scifi' --sortable title,year
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
