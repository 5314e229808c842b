package main

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/beetlebugorg/partialrender/pkg/partial"
	"github.com/beetlebugorg/partialrender/pkg/render"
)

func main() {
	renderer, err := render.NewPatternRenderer("EPSG:3857", 250)
	if err != nil {
		log.Fatal(err)
	}

	// One store shared by several viewers
	store, err := partial.NewStore(2048)
	if err != nil {
		log.Fatal(err)
	}

	opts := partial.DefaultOptions()
	opts.Workers = runtime.NumCPU()
	opts.RenderRate = 200 // Backend calls per second
	opts.RenderTimeout = 5 * time.Second

	overview, err := partial.NewWithStore(renderer, store, opts)
	if err != nil {
		log.Fatal(err)
	}
	defer overview.Close()

	detail, err := partial.NewWithStore(renderer, store, opts)
	if err != nil {
		log.Fatal(err)
	}
	defer detail.Close()

	ctx := context.Background()

	// Warm the area users will look at first
	area := partial.NewEnvelope(0, 0, 20000, 20000, "EPSG:3857")
	start := time.Now()
	n, err := overview.Prefetch(ctx, area, func(done, total int) {
		if done%50 == 0 || done == total {
			fmt.Printf("\rPrefetch: %d/%d", done, total)
		}
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("\nPrefetched %d tiles in %v\n", n, time.Since(start))

	// Both viewers are now served from cache
	start = time.Now()
	for i := 0; i < 100; i++ {
		x := float64(i%10) * 2000
		env := partial.NewEnvelope(x, 0, x+4000, 3000, "EPSG:3857")
		if _, err := detail.IntersectEnvelope(ctx, env, partial.ScreenSize{Width: 1024, Height: 768}); err != nil {
			log.Fatal(err)
		}
	}
	fmt.Printf("100 cached queries in %v\n", time.Since(start))

	stats := store.Stats()
	fmt.Printf("Cache: %d/%d tiles, hit rate %.1f%%, %d evictions\n",
		stats.Tiles, stats.Capacity, stats.HitRate()*100, stats.Evictions)
}
