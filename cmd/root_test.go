package cmd

import (
	"testing"
)

func TestSubcommandsRegistered(t *testing.T) {
	want := []string{"init", "ingest", "query", "ask", "serve", "version"}

	registered := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}

	for _, name := range want {
		if !registered[name] {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestQueryFlags(t *testing.T) {
	for _, name := range []string{"top-k", "category", "metric", "threshold", "json"} {
		if queryCmd.Flags().Lookup(name) == nil {
			t.Errorf("query flag %q not defined", name)
		}
	}
}

func TestIngestFlags(t *testing.T) {
	if ingestCmd.Flags().Lookup("clear") == nil {
		t.Error("ingest flag clear not defined")
	}
}

func TestServeFlags(t *testing.T) {
	if serveCmd.Flags().Lookup("addr") == nil {
		t.Error("serve flag addr not defined")
	}
}
