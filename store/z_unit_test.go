// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zintix-labs/naasii/sdk/score"
	"github.com/zintix-labs/naasii/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return st
}

func sampleSave(round int) store.GameSave {
	return store.GameSave{
		Players: []store.PlayerState{
			{Name: "ann", Score: 40, History: []store.ScoreRecord{
				{Round: 1, Score: 40, Category: score.CategoryFourOfAKind, Total: 40, Player: "ann"},
			}},
			{Name: "bo", Score: 15, History: []store.ScoreRecord{
				{Round: 1, Score: 15, Category: score.CategoryThreeOfAKind, Total: 15, Player: "bo"},
			}},
		},
		CurrentRound: round,
		MaxRounds:    10,
	}
}

// TestSaveLoadRoundTrip 寫檔時 GameDate 與 Version 由 store 統一補上，
// 讀回時裸檔名與完整路徑都要通。
func TestSaveLoadRoundTrip(t *testing.T) {
	st := newStore(t)
	path, err := st.Save(sampleSave(2))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "naasii_save_") || !strings.HasSuffix(base, ".json") {
		t.Fatalf("unexpected save name %q", base)
	}

	got, err := st.Load(base)
	if err != nil {
		t.Fatalf("load by name: %v", err)
	}
	if got.Version != store.Version {
		t.Fatalf("version %q, want %q", got.Version, store.Version)
	}
	if _, err := time.Parse(time.RFC3339, got.GameDate); err != nil {
		t.Fatalf("game date %q not RFC3339: %v", got.GameDate, err)
	}
	if got.CurrentRound != 2 || got.MaxRounds != 10 {
		t.Fatalf("rounds %d/%d, want 2/10", got.CurrentRound, got.MaxRounds)
	}
	if len(got.Players) != 2 || got.Players[0].Name != "ann" || got.Players[0].Score != 40 {
		t.Fatalf("players came back wrong: %+v", got.Players)
	}
	if len(got.Players[0].History) != 1 || got.Players[0].History[0].Category != score.CategoryFourOfAKind {
		t.Fatalf("history came back wrong: %+v", got.Players[0].History)
	}

	if _, err := st.Load(path); err != nil {
		t.Fatalf("load by path: %v", err)
	}
}

func TestSaveAsRejectsPathNames(t *testing.T) {
	st := newStore(t)
	if _, err := st.SaveAs(sampleSave(1), ""); err == nil {
		t.Fatalf("empty name accepted")
	}
	if _, err := st.SaveAs(sampleSave(1), filepath.Join("sub", "x.json")); err == nil {
		t.Fatalf("path name accepted")
	}
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	st := newStore(t)
	raw := []byte(`{"players_data":[],"current_round":1,"max_rounds":10,"version":"0.9"}`)
	if err := os.WriteFile(filepath.Join(st.Dir(), "old.json"), raw, 0o644); err != nil {
		t.Fatalf("plant old save: %v", err)
	}
	if _, err := st.Load("old.json"); err == nil {
		t.Fatalf("version 0.9 accepted")
	}
	if _, err := st.Load("missing.json"); err == nil {
		t.Fatalf("missing save accepted")
	}
}

func TestListNewestFirst(t *testing.T) {
	st := newStore(t)
	if _, err := st.SaveAs(sampleSave(1), "first.json"); err != nil {
		t.Fatalf("save first: %v", err)
	}
	if _, err := st.SaveAs(sampleSave(2), "second.json"); err != nil {
		t.Fatalf("save second: %v", err)
	}

	// 檔案系統時間戳解析度不可靠，直接指定修改時間
	now := time.Now()
	if err := os.Chtimes(filepath.Join(st.Dir(), "first.json"), now, now.Add(-time.Hour)); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if err := os.Chtimes(filepath.Join(st.Dir(), "second.json"), now, now); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	names, err := st.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 2 || names[0] != "second.json" || names[1] != "first.json" {
		t.Fatalf("list order %v", names)
	}
}

// TestAutosaveJournal Autosave 固定檔名蓋寫快照，歷史日誌逐筆累加。
func TestAutosaveJournal(t *testing.T) {
	st := newStore(t)

	entries, err := st.ReadJournal()
	if err != nil {
		t.Fatalf("fresh journal: %v", err)
	}
	if entries != nil {
		t.Fatalf("fresh journal not empty: %+v", entries)
	}

	if _, err := st.Autosave(sampleSave(1)); err != nil {
		t.Fatalf("autosave 1: %v", err)
	}
	path, err := st.Autosave(sampleSave(2))
	if err != nil {
		t.Fatalf("autosave 2: %v", err)
	}
	if filepath.Base(path) != "naasii_autosave.json" {
		t.Fatalf("autosave name %q", filepath.Base(path))
	}

	// 快照只留最新一份
	latest, err := st.Load("naasii_autosave.json")
	if err != nil {
		t.Fatalf("load autosave: %v", err)
	}
	if latest.CurrentRound != 2 {
		t.Fatalf("autosave holds round %d, want 2", latest.CurrentRound)
	}

	// 日誌兩筆都在、舊在前；日誌檔本身不進存檔列表
	entries, err = st.ReadJournal()
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	if len(entries) != 2 || entries[0].CurrentRound != 1 || entries[1].CurrentRound != 2 {
		t.Fatalf("journal came back wrong: %+v", entries)
	}

	names, err := st.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 1 || names[0] != "naasii_autosave.json" {
		t.Fatalf("list %v, want only the autosave", names)
	}
}
