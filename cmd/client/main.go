package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/indranuj17/FeedlinerX/internal/client"
)

var (
	version   string
	buildDate string
)

// main parses command-line flags, restores the saved session and runs the shell.
func main() {
	var (
		baseURL     string
		caFile      string
		sessionFile string
		showVer     bool
	)

	flag.StringVar(&baseURL, "url", "http://localhost:8080", "server base URL")
	flag.StringVar(&caFile, "ca", "", "path to CA cert for HTTPS servers")
	flag.StringVar(&sessionFile, "session", client.DefaultSessionFile, "path to the session file")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("FeedlinerX Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	httpClient, err := client.NewHTTPClient(caFile)
	if err != nil {
		log.Fatal(err)
	}

	sessions := client.NewSessionStore(sessionFile)
	if err := sessions.Load(); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shell := &client.Shell{
		API:      &client.API{BaseURL: baseURL, HTTP: httpClient},
		Sessions: sessions,
		Prompt:   client.NewPrompter(os.Stdin, os.Stdout),
		Out:      os.Stdout,
	}
	if err := shell.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
