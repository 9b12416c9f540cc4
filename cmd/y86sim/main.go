// Package main provides the entry point for y86sim, a cycle-accurate
// Y86-64 five-stage pipeline simulator.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Jecci-cmd/y86pipe/isa"
	"github.com/Jecci-cmd/y86pipe/loader"
	"github.com/Jecci-cmd/y86pipe/pipeline"
	"github.com/Jecci-cmd/y86pipe/report"
)

var (
	useCache  = flag.Bool("cache", false, "Enable the optional L1 instruction/data cache timing model")
	cachePath = flag.String("cache-config", "", "Path to a JSON cache configuration file (implies -cache)")
	verbose   = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	img, err := loader.Load(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading program: %v\n", err)
		os.Exit(1)
	}
	if img.Empty() {
		fmt.Fprintln(os.Stderr, "Error: no program loaded")
		os.Exit(1)
	}

	mem := &isa.Memory{}
	mem.Load(img.Bytes)

	opts := cacheOptions()
	sim := pipeline.New(mem, opts...)

	if *verbose {
		fmt.Fprintf(os.Stderr, "Loaded %d bytes\n", len(img.Bytes))
	}

	sim.Run()

	if err := report.Snapshots(os.Stdout, sim.Snapshots); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing snapshots: %v\n", err)
		os.Exit(1)
	}
	report.Stats(os.Stderr, sim.Stats)
}

// cacheOptions builds the optional cache extension from the -cache and
// -cache-config flags. Disabled by default.
func cacheOptions() []pipeline.Option {
	if *cachePath == "" && !*useCache {
		return nil
	}

	icfg := pipeline.DefaultICacheConfig()
	dcfg := pipeline.DefaultDCacheConfig()

	if *cachePath != "" {
		loaded, err := pipeline.LoadCacheConfig(*cachePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading cache config: %v\n", err)
			os.Exit(1)
		}
		icfg, dcfg = loaded.ICache, loaded.DCache
	}

	return []pipeline.Option{
		pipeline.WithICache(icfg),
		pipeline.WithDCache(dcfg),
	}
}
