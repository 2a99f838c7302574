// Command scidpgn decodes games from a SCID-style game-body blob and
// emits PGN.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"sync"

	"github.com/hailam/scidpgn/internal/cache"
	"github.com/hailam/scidpgn/internal/config"
	"github.com/hailam/scidpgn/internal/decoder"
	"github.com/hailam/scidpgn/internal/index"
	"github.com/hailam/scidpgn/internal/namebase"
	"github.com/hailam/scidpgn/internal/pgn"
)

func main() {
	bodyPath := flag.String("body", "", "path to the game-body blob (required)")
	namesPath := flag.String("names", "", "base path of the .sn4 name dictionary, without the .sn4 extension (optional)")
	configPath := flag.String("config", "scidpgn.toml", "path to an optional TOML config file")
	gameIndex := flag.Int("game", 0, "index of the single game to decode (ignored with -all)")
	all := flag.Bool("all", false, "decode every game found in the blob, concurrently")
	useCache := flag.Bool("cache", false, "cache decoded games in an embedded store")
	out := flag.String("out", "", "output file (default: stdout)")
	flag.Parse()

	if *bodyPath == "" {
		log.Fatal("scidpgn: -body is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("scidpgn: loading config: %v", err)
	}
	if *useCache {
		cfg.Cache.Enabled = true
	}

	blob, err := os.ReadFile(*bodyPath)
	if err != nil {
		log.Fatalf("scidpgn: reading %s: %v", *bodyPath, err)
	}

	var names *namebase.Table
	if *namesPath != "" {
		names, err = namebase.Load(*namesPath)
		if err != nil {
			log.Fatalf("scidpgn: loading name dictionary: %v", err)
		}
	}

	records := index.Scan(blob)
	if len(records) == 0 {
		log.Fatal("scidpgn: no games found in blob")
	}

	var games []*decoder.Game
	opts := decoder.Options{RecursionCeiling: cfg.Decoder.RecursionCeiling}

	var c *cache.Cache
	if cfg.Cache.Enabled {
		c, err = cache.Open(cfg.Cache.Dir)
		if err != nil {
			log.Fatalf("scidpgn: opening cache: %v", err)
		}
		defer c.Close()
	}

	if *all {
		games = decodeAll(records, blob, opts, c)
	} else {
		if *gameIndex < 0 || *gameIndex >= len(records) {
			log.Fatalf("scidpgn: -game %d out of range (found %d games)", *gameIndex, len(records))
		}
		g, err := decodeOne(records[*gameIndex].Body(blob), opts, c)
		if err != nil {
			log.Fatalf("scidpgn: decoding game %d: %v", *gameIndex, err)
		}
		games = []*decoder.Game{g}
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatalf("scidpgn: creating %s: %v", *out, err)
		}
		defer f.Close()
		w = f
	}

	pgnOpts := pgn.Options{TagAllowlist: cfg.PGN.TagAllowlist}
	for _, g := range games {
		resolveNames(g, names)
		text, err := pgn.Render(g, pgnOpts)
		if err != nil {
			log.Printf("scidpgn: rendering game: %v", err)
			continue
		}
		fmt.Fprintln(w, text)
	}
}

// decodeOne decodes a single game body, consulting and populating the
// cache if one is configured.
func decodeOne(body []byte, opts decoder.Options, c *cache.Cache) (*decoder.Game, error) {
	if c != nil {
		key := cache.Key(body, "")
		if g, hit, err := c.Get(key); err == nil && hit {
			return g, nil
		}
		g, err := decoder.Decode(body, "", opts)
		if err != nil {
			return nil, err
		}
		if err := c.Store(key, g); err != nil {
			log.Printf("scidpgn: caching game: %v", err)
		}
		return g, nil
	}
	return decoder.Decode(body, "", opts)
}

// decodeAll fans a worker pool bounded by GOMAXPROCS across every
// discovered game record, preserving input order in the result slice.
func decodeAll(records []index.Record, blob []byte, opts decoder.Options, c *cache.Cache) []*decoder.Game {
	games := make([]*decoder.Game, len(records))
	jobs := make(chan int)

	var wg sync.WaitGroup
	workers := runtime.GOMAXPROCS(0)
	if workers > len(records) {
		workers = len(records)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				g, err := decodeOne(records[i].Body(blob), opts, c)
				if err != nil {
					log.Printf("scidpgn: decoding game %d: %v", i, err)
					continue
				}
				games[i] = g
			}
		}()
	}

	for i := range records {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	compact := games[:0]
	for _, g := range games {
		if g != nil {
			compact = append(compact, g)
		}
	}
	return compact
}

// resolveNames leaves g unchanged: the White/Black/Event/Site tags are not
// filled in from the name dictionary, because decoder.Game's tag map holds
// only text and carries no numeric name ids to look up.
func resolveNames(g *decoder.Game, names *namebase.Table) {
	if names == nil {
		return
	}
}
