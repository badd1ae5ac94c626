package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/okian/courtside/internal/domain/model"
)

func writeSnapshot(t *testing.T, dir string) string {
	t.Helper()
	ts := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	snap := model.Snapshot{
		ID:               "league",
		Sport:            model.SportBasketball,
		TeamNames:        model.TeamNames{Blue: "Hawks", Red: "Owls"},
		CurrentSetNumber: 1,
		Points: []model.Point{
			{ID: "1", Team: model.TeamBlue, Type: model.TypeScored, Action: model.ActionThreePoints, X: 0.8, Y: 0.5, Timestamp: ts},
		},
		Metadata: model.DefaultMetadata(),
	}
	path := filepath.Join(dir, "league.json")
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReplayCommand(t *testing.T) {
	dir := t.TempDir()
	snapPath := writeSnapshot(t, dir)
	xlsxPath := filepath.Join(dir, "league.xlsx")

	cmd := replayCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{snapPath, "--xlsx", xlsxPath})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("Hawks vs Owls")) {
		t.Errorf("output missing teams:\n%s", out.String())
	}

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	if got := f.GetSheetList(); len(got) != 2 || got[1] != "Quarter 1" {
		t.Errorf("sheets = %v", got)
	}
}

func TestReplayCommandMissingFile(t *testing.T) {
	cmd := replayCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.json")})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error for a missing snapshot")
	}
}
