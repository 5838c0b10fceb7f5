// Command lifeclient polls a life-tick server and draws each generation in
// the terminal.
//
// While running, type a command and press enter:
//
//	p  pause or resume
//	s  stop
//	r  start again from a fresh board
//	q  quit
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MJE43/life-tick-go/internal/client"
	"github.com/MJE43/life-tick-go/internal/engine"
	"github.com/MJE43/life-tick-go/internal/life"
)

func main() {
	var (
		baseURL    = flag.String("url", client.DefaultBaseURL, "server base URL")
		token      = flag.String("token", os.Getenv("LIFE_API_TOKEN"), "API token (X-Life-Token)")
		interval   = flag.Duration("interval", client.DefaultInterval, "polling interval")
		legacy     = flag.Bool("legacy", false, "use POST / with the X-Game-Of-Life header")
		pattern    = flag.String("pattern", "", "start from a catalog pattern instead of a random board")
		serverSeed = flag.String("server-seed", "", "start from the deterministic board for these seeds")
		clientSeed = flag.String("client-seed", "", "client seed for -server-seed")
		nonce      = flag.Uint64("nonce", 0, "nonce for -server-seed")
		redraw     = flag.Bool("clear", true, "redraw in place")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "[CLIENT] ", log.LstdFlags)

	c := client.NewClient(client.Config{
		BaseURL:   *baseURL,
		Token:     *token,
		Legacy:    *legacy,
		UserAgent: "lifeclient",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg, err := c.ServerConfig(ctx); err != nil {
		logger.Printf("config_fetch_failed err=%v", err)
	} else {
		logger.Printf("server grid=%dx%d version=%s", cfg.GridSize, cfg.GridSize, cfg.EngineVersion)
	}

	initial := func() life.Grid {
		var (
			g   life.Grid
			err error
		)
		switch {
		case *pattern != "":
			g, err = c.PatternGrid(ctx, *pattern)
		case *serverSeed != "":
			g, err = c.SeededRandom(ctx, engine.Seeds{Server: *serverSeed, Client: *clientSeed}, *nonce)
		default:
			return nil
		}
		if err != nil {
			logger.Fatalf("initial board: %v", err)
		}
		return g
	}

	renderer := client.NewTerminalRenderer(os.Stdout)
	renderer.Clear = *redraw

	loop := client.NewLoop(c, renderer, client.LoopConfig{
		Interval: *interval,
		Logger:   logger,
	})
	if err := loop.Start(ctx, initial()); err != nil {
		logger.Fatalf("start: %v", err)
	}

	commands := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			commands <- strings.TrimSpace(sc.Text())
		}
		close(commands)
	}()

	for {
		select {
		case <-ctx.Done():
			loop.Stop()
			return
		case cmd, ok := <-commands:
			if !ok {
				// stdin closed; keep running until interrupted.
				commands = nil
				continue
			}
			switch cmd {
			case "p":
				logger.Printf("state=%s", loop.Pause())
			case "s":
				loop.Stop()
				logger.Printf("state=%s generation=%d", loop.State(), loop.Generation())
			case "r":
				if err := loop.Start(ctx, initial()); err != nil {
					logger.Printf("start: %v", err)
				}
			case "q":
				loop.Stop()
				return
			case "":
			default:
				fmt.Fprintln(os.Stderr, "commands: p (pause/resume), s (stop), r (restart), q (quit)")
			}
		case <-time.After(time.Second):
			if err := loop.Err(); err != nil && loop.State() == client.StateStopped {
				logger.Printf("stopped: %v", err)
				os.Exit(1)
			}
		}
	}
}
