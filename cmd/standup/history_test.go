package main

import (
	"testing"

	"github.com/standup-agent/standup/internal/history"
)

func seedHistory(t *testing.T, dir string) *history.Store {
	t.Helper()
	st := history.NewStore(dir)
	records := []history.Record{
		{Date: "2026-08-28", Summary: "shipped the importer"},
		{Date: "2026-08-29", Summary: "reviewed the migration"},
	}
	for _, rec := range records {
		if _, err := st.Save(rec); err != nil {
			t.Fatalf("seed save failed: %v", err)
		}
	}
	return st
}

func TestHistoryClearDate(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STANDUP_CONFIG_DIR", dir)
	st := seedHistory(t, dir)

	rootCmd.SetArgs([]string{"history", "clear", "2026-08-28"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("history clear failed: %v", err)
	}

	recs, err := st.Recent(10)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if len(recs) != 1 || recs[0].Date != "2026-08-29" {
		t.Errorf("expected only the 2026-08-29 record to remain, got %+v", recs)
	}
}

func TestHistoryClearAll(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STANDUP_CONFIG_DIR", dir)
	st := seedHistory(t, dir)

	rootCmd.SetArgs([]string{"history", "clear"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("history clear failed: %v", err)
	}

	recs, err := st.Recent(10)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("expected no records after a bare clear, got %d", len(recs))
	}
}
