package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	crossref "github.com/goliatone/go-crossref"
)

const sample = `---
title: Account Management
---

# Account Management

Accounts are backed by [the user resource](ash:Sertantai.Accounts.User) and
described in [the accounts module](exdoc:Sertantai.Accounts).

Setup steps live in [the dev guide](dev:setup-guide); end users should read
[getting started](user:getting-started) instead.

This one is broken on purpose: [old resource](ash:Sertantai.Account.User).

` + "```elixir\n# markers inside code stay verbatim: [x](ash:Sertantai.Accounts.User)\n```" + `
`

func main() {
	ctx := context.Background()

	cfg := crossref.DefaultConfig()
	cfg.Logging.Enabled = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "pretty"
	cfg.Overrides = map[crossref.Kind]crossref.URLOverride{
		crossref.KindUserDoc: {BaseURL: "https://docs.example.com"},
	}

	module, err := crossref.New(cfg,
		crossref.WithRegistry(crossref.KindResource, crossref.NewStaticRegistry(
			"Sertantai.Accounts.User",
			"Sertantai.Accounts.Organization",
		)),
		crossref.WithRegistry(crossref.KindModule, crossref.NewStaticRegistry("Sertantai.Accounts")),
		crossref.WithRegistry(crossref.KindDevDoc, crossref.NewStaticRegistry("setup-guide")),
		crossref.WithRegistry(crossref.KindUserDoc, crossref.NewStaticRegistry("getting-started")),
	)
	if err != nil {
		log.Fatalf("crossref module: %v", err)
	}

	fmt.Println("== process document ==")
	result, err := module.Process(ctx, sample, crossref.ProcessOptions{
		ValidateCrossRefs:    true,
		GeneratePreviews:     true,
		GenerateErrorReports: true,
		ExportData:           true,
		Cache:                true,
	})
	if err != nil {
		log.Fatalf("process: %v", err)
	}
	fmt.Println(result.HTML)

	fmt.Println("== validation report ==")
	printJSON(result.ValidationReport)

	if result.ErrorReport != nil && result.ErrorReport.TotalErrors > 0 {
		fmt.Println("== error report ==")
		printJSON(result.ErrorReport)
	}

	fmt.Println("== export record ==")
	printJSON(result.ExportData)

	cached, err := module.Process(ctx, sample, crossref.ProcessOptions{
		ValidateCrossRefs:    true,
		GeneratePreviews:     true,
		GenerateErrorReports: true,
		ExportData:           true,
		Cache:                true,
	})
	if err != nil {
		log.Fatalf("process (cached): %v", err)
	}
	fmt.Printf("second run cache hit: %v\n", cached.CacheHit)

	fmt.Println("== batch validation ==")
	refs := module.Resolve(module.Scan(sample))
	batch := module.ValidateBatch(ctx, refs, crossref.ProcessOptions{
		Concurrent: true,
		MaxWorkers: 4,
		Timeout:    5 * time.Second,
	})
	fmt.Printf("validated %d references in %s (concurrent=%v timed_out=%v)\n",
		len(batch.Results), batch.ProcessingTime, batch.Concurrent, batch.TimedOut)

	fmt.Println("== watcher ==")
	events := make(chan crossref.WatchEvent, 1)
	watchModule, err := crossref.New(cfg,
		crossref.WithWatcherProcess(func(ctx context.Context, path string) (*crossref.Result, error) {
			return module.Process(ctx, sample, crossref.ProcessOptions{ValidateCrossRefs: true})
		}),
		crossref.WithWatchCallback(func(event crossref.WatchEvent) {
			events <- event
		}),
	)
	if err != nil {
		log.Fatalf("watch module: %v", err)
	}

	w := watchModule.Watcher()
	if err := w.Start(ctx); err != nil {
		log.Fatalf("watcher start: %v", err)
	}
	if err := w.Trigger("docs/account-management.md"); err != nil {
		log.Fatalf("watcher trigger: %v", err)
	}
	select {
	case event := <-events:
		fmt.Printf("re-validated %s: success=%v\n", event.Path, event.Result.Success)
	case <-time.After(2 * time.Second):
		log.Fatal("watcher: timed out waiting for event")
	}
	if err := w.Stop(); err != nil {
		log.Fatalf("watcher stop: %v", err)
	}
}

func printJSON(v any) {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("marshal: %v", err)
	}
	fmt.Println(string(payload))
}
