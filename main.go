package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/MJE43/life-tick-go/internal/api"
	"github.com/MJE43/life-tick-go/internal/appdata"
	"github.com/MJE43/life-tick-go/internal/authtoken"
	"github.com/MJE43/life-tick-go/internal/life"
	"github.com/MJE43/life-tick-go/internal/store"
)

func main() {
	log.Printf("Starting life-tick %s (Go %s)...", api.EngineVersion, runtime.Version())

	port := envInt("LIFE_PORT", 8080)
	size := envInt("LIFE_GRID_SIZE", life.DefaultSize)
	if size <= 0 {
		log.Fatalf("LIFE_GRID_SIZE must be positive, got %d", size)
	}
	host := envString("LIFE_HOST", "")

	var (
		db     store.DB
		closer io.Closer
	)
	if dbPath := envString("LIFE_DB_PATH", defaultDBPath()); dbPath != "off" {
		sqliteDB, err := store.NewSQLiteDB(dbPath)
		if err != nil {
			log.Fatalf("open pattern catalog %s: %v", dbPath, err)
		}
		if err := sqliteDB.Migrate(); err != nil {
			log.Fatalf("migrate pattern catalog: %v", err)
		}
		db, closer = sqliteDB, sqliteDB
		log.Printf("Pattern catalog at %s", dbPath)
	} else {
		log.Println("Pattern catalog disabled")
	}

	s := api.NewServer(db, api.Config{
		GridSize:       size,
		Token:          loadToken(),
		RequestTimeout: envDuration("LIFE_REQUEST_TIMEOUT", 10*time.Second),
		ScriptTimeout:  envDuration("LIFE_SCRIPT_TIMEOUT", 2*time.Second),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      s.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		log.Fatalf("listen %s: %v", srv.Addr, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Listening on %s (grid %dx%d)", ln.Addr(), size, size)
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	if closer != nil {
		err = multierr.Append(err, closer.Close())
	}
	if err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
	log.Println("Server exited")
}

// loadToken returns LIFE_API_TOKEN, or the token stored by lifetoken. An
// empty result disables authentication.
func loadToken() string {
	if t := strings.TrimSpace(os.Getenv("LIFE_API_TOKEN")); t != "" {
		return t
	}
	fallback, _ := appdata.Path(appdata.TokenFileName)
	t, err := authtoken.NewStore(authtoken.DefaultService, fallback).Get()
	if err != nil {
		if !errors.Is(err, authtoken.ErrNotFound) {
			log.Printf("token lookup failed: %v; auth disabled", err)
		}
		return ""
	}
	log.Println("API token loaded from keyring")
	return t
}

func defaultDBPath() string {
	p, err := appdata.Path(appdata.PatternsDBName)
	if err != nil {
		log.Printf("appdata mkdir failed: %v; using %s", err, p)
	}
	return p
}

func envInt(k string, def int) int {
	if s := os.Getenv(k); s != "" {
		var v int
		if _, err := fmt.Sscanf(s, "%d", &v); err == nil {
			return v
		}
		log.Printf("ignoring invalid %s=%q", k, s)
	}
	return def
}

func envString(k, def string) string {
	if s := strings.TrimSpace(os.Getenv(k)); s != "" {
		return s
	}
	return def
}

func envDuration(k string, def time.Duration) time.Duration {
	if s := os.Getenv(k); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			return d
		}
		log.Printf("ignoring invalid %s=%q", k, s)
	}
	return def
}
