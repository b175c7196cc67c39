package main

import (
	"context"
	"flag"
	"time"

	"github.com/okian/matchdesk/internal/demomatch"
)

// Default configuration constants.
const (
	defaultTimeout    = 10 * time.Second
	defaultRunTimeout = 2 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9090", "Base URL of the service")
		redScore  = flag.String("red", "5", "Red team final score")
		blueScore = flag.String("blue", "3", "Blue team final score")
		scope     = flag.String("scope", "yearly", "Leaderboard scope (monthly|yearly|overall)")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		demomatch.ShowHelp()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &demomatch.Config{
		BaseURL:   *baseURL,
		RedScore:  *redScore,
		BlueScore: *blueScore,
		Scope:     *scope,
		Timeout:   *timeout,
		Verbose:   *verbose,
	}

	if err := demomatch.Run(ctx, cfg); err != nil {
		demomatch.Fail(err)
	}
}
