//go:build !libretro && !ios

package main

import (
	"flag"
	"log"

	"github.com/user-none/eblitui/standalone"
	"github.com/user-none/retro8/adapter"
)

func main() {
	cartPath := flag.String("cart", "", "path to Lua cart (opens UI if not provided)")
	strict := flag.Bool("strict", false, "fail drawing calls that leave the screen instead of clipping them")
	flag.Parse()

	factory := &adapter.Factory{}

	if *cartPath != "" {
		options := map[string]string{}
		if *strict {
			options["strict_bounds"] = "true"
		}
		if err := standalone.RunDirect(factory, *cartPath, "auto", options); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := standalone.Run(factory); err != nil {
		log.Fatal(err)
	}
}
