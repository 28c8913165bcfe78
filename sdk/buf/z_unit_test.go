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

package buf

import (
	"testing"

	"github.com/zintix-labs/naasii/sdk/score"
	"github.com/zintix-labs/naasii/spec"
)

func testGameSetting(t *testing.T) *spec.GameSetting {
	t.Helper()
	gs, err := spec.GetGameSettingByYAML([]byte("game_name: demo\ngame_id: 7\n"))
	if err != nil {
		t.Fatalf("load setting: %v", err)
	}
	return gs
}

func TestTurnResultAppendReset(t *testing.T) {
	gs := testGameSetting(t)
	tr := NewTurnResult(gs)
	if tr.GameName != "demo" || tr.GameID != 7 || tr.DiceCount != 12 {
		t.Fatalf("unexpected turn result metadata: %+v", tr)
	}

	roll1 := []int{1, 2, 3, 4, 5, 6, 1, 2, 3, 4, 5, 6}
	roll2 := []int{6, 6, 6, 4, 5, 6, 1, 2, 3, 4, 5, 6}
	tr.AppendRoll(roll1, 0)
	tr.AppendRoll(roll2, 0b111)

	if tr.RollCount != 2 {
		t.Fatalf("expected 2 rolls, got %d", tr.RollCount)
	}
	if v := tr.Roll(0); len(v) != 12 || v[0] != 1 || v[11] != 6 {
		t.Fatalf("roll 0 snapshot: %v", v)
	}
	if v := tr.LastRoll(); len(v) != 12 || v[0] != 6 || v[2] != 6 {
		t.Fatalf("last roll snapshot: %v", v)
	}
	if tr.Mask(0) != 0 || tr.Mask(1) != 0b111 || tr.Mask(2) != 0 {
		t.Fatalf("masks: %v", tr.LockMasks)
	}

	tr.SetScore(score.Result{Category: score.StraightCategory(6), Score: 80, Counts: []int{3, 2, 2, 2, 2, 1}})
	if tr.Score != 80 || tr.Category != "straight_6" || len(tr.Counts) != 6 {
		t.Fatalf("score not recorded: %+v", tr)
	}

	tr.State.StartCoreSnap = []byte{1, 2, 3}
	tr.State.AfterCoreSnap = []byte{4, 5, 6}

	tr.End()
	if !tr.IsTurnEnd {
		t.Fatalf("expected turn end flag")
	}

	tr.Reset()
	if tr.RollCount != 0 || len(tr.Rolls) != 0 || len(tr.LockMasks) != 0 ||
		tr.Score != 0 || tr.Category != "" || len(tr.Counts) != 0 || tr.IsTurnEnd {
		t.Fatalf("turn result not reset: %+v", tr)
	}
	if tr.State.StartCoreSnap != nil || tr.State.AfterCoreSnap != nil {
		t.Fatalf("expected state snapshots cleared after reset")
	}
	if tr.Roll(0) != nil || tr.LastRoll() != nil {
		t.Fatalf("expected nil views after reset")
	}
}

func TestTurnResultAppendAfterEndPanics(t *testing.T) {
	tr := NewTurnResult(testGameSetting(t))
	tr.End()
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic when appending after End")
		}
	}()
	tr.AppendRoll([]int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}, 0)
}

func TestGameResultAccumulates(t *testing.T) {
	gs := testGameSetting(t)
	gr := NewGameResult(gs)

	tr := NewTurnResult(gs)
	for _, sc := range []int{10, 25, 5} {
		tr.Reset()
		tr.AppendRoll([]int{1, 1, 1, 1, 1, 1, 2, 2, 2, 2, 2, 2}, 0)
		tr.SetScore(score.Result{Category: score.CategoryMultiplePairs, Score: sc})
		tr.End()
		gr.AppendTurn(tr)
	}

	if gr.Rounds != 3 || gr.TotalScore != 40 {
		t.Fatalf("rounds=%d total=%d", gr.Rounds, gr.TotalScore)
	}
	if idx, best := gr.BestTurn(); idx != 1 || best != 25 {
		t.Fatalf("best turn (%d, %d)", idx, best)
	}
	if len(gr.RollsUsed) != 3 || gr.RollsUsed[0] != 1 {
		t.Fatalf("rolls used: %v", gr.RollsUsed)
	}

	gr.End()
	if !gr.IsGameEnd {
		t.Fatalf("expected game end flag")
	}

	gr.Reset()
	if gr.Rounds != 0 || gr.TotalScore != 0 || len(gr.TurnScores) != 0 || gr.IsGameEnd {
		t.Fatalf("game result not reset: %+v", gr)
	}
	if idx, _ := gr.BestTurn(); idx != -1 {
		t.Fatalf("best turn after reset: %d", idx)
	}
}

func TestGameResultAppendAfterEndPanics(t *testing.T) {
	gs := testGameSetting(t)
	gr := NewGameResult(gs)
	gr.End()
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic when appending after End")
		}
	}()
	gr.AppendTurn(NewTurnResult(gs))
}

func TestNoExtendSnapshot(t *testing.T) {
	var ext ExtendResult = &NoExtend{}
	ext.Reset()
	if s := ext.Snapshot(); s != nil {
		t.Fatalf("expected nil snapshot, got %v", s)
	}
}
