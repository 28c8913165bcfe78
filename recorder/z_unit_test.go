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

package recorder_test

import (
	"math"
	"testing"

	"github.com/zintix-labs/naasii/recorder"
	"github.com/zintix-labs/naasii/sdk/buf"
	"github.com/zintix-labs/naasii/sdk/score"
	"github.com/zintix-labs/naasii/spec"
)

func testGameSetting(t *testing.T) *spec.GameSetting {
	t.Helper()
	gs, err := spec.GetGameSettingByYAML([]byte("game_name: demo\ngame_id: 7"))
	if err != nil {
		t.Fatalf("setting init: %v", err)
	}
	return gs
}

func TestTurnRecorderDone(t *testing.T) {
	gs := testGameSetting(t)
	rec, err := recorder.NewTurnRecorder(gs.GameName, gs.GameID, "greedy_face", gs.Pool.RollsPerTurn)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	values := []int{1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6}
	turns := []struct {
		rolls int
		res   score.Result
	}{
		{1, score.Result{Category: score.CategoryMultiplePairs, Score: 90}},
		{3, score.Result{Category: score.CategoryThreeOfAKind, Score: 25}},
		{2, score.Result{Category: score.CategoryMultiplePairs, Score: 35}},
	}

	game := buf.NewGameResult(gs)
	tr := buf.NewTurnResult(gs)
	for _, tc := range turns {
		tr.Reset()
		for i := 0; i < tc.rolls; i++ {
			tr.AppendRoll(values, 0)
		}
		tr.SetScore(tc.res)
		tr.End()
		rec.Record(tr)
		game.AppendTurn(tr)
	}
	game.End()
	rec.RecordGame(game)

	rep := rec.Done()
	rep.Done()

	if rep.Summary.Turns != 3 {
		t.Fatalf("turns got %d want 3", rep.Summary.Turns)
	}
	if rep.Summary.TotalScore != 150 {
		t.Fatalf("total score got %d want 150", rep.Summary.TotalScore)
	}
	if rep.Summary.MinScore != 25 || rep.Summary.MaxScore != 90 {
		t.Fatalf("min/max got %d/%d want 25/90", rep.Summary.MinScore, rep.Summary.MaxScore)
	}
	if math.Abs(rep.Summary.MeanScore-50.0) > 1e-12 {
		t.Fatalf("mean got %.3f want 50", rep.Summary.MeanScore)
	}
	if rep.Summary.HitRate != 1.0 {
		t.Fatalf("hit rate got %.2f want 1.0", rep.Summary.HitRate)
	}

	// rolls used: one turn each of 1, 2 and 3 rolls
	if got := rep.Rolls.RollsUsedCollect[1] + rep.Rolls.RollsUsedCollect[2] + rep.Rolls.RollsUsedCollect[3]; got != 3 {
		t.Fatalf("rolls used collect sum got %d want 3", got)
	}
	if math.Abs(rep.Rolls.MeanRolls-2.0) > 1e-12 {
		t.Fatalf("mean rolls got %.3f want 2.0", rep.Rolls.MeanRolls)
	}

	// categories sorted by count desc
	if rep.Categories.MostFrequent != score.CategoryMultiplePairs {
		t.Fatalf("most frequent got %s want %s", rep.Categories.MostFrequent, score.CategoryMultiplePairs)
	}
	if got := rep.CategoryCount(score.CategoryMultiplePairs); got != 2 {
		t.Fatalf("multiple_pairs count got %d want 2", got)
	}

	// game section appears only after RecordGame
	if rep.Game == nil {
		t.Fatalf("game report missing after RecordGame")
	}
	if rep.Game.Games != 1 || rep.Game.TotalGameScore != 150 {
		t.Fatalf("game section got %d games / %d score", rep.Game.Games, rep.Game.TotalGameScore)
	}
	if math.Abs(rep.Game.MeanBestTurn-90.0) > 1e-12 {
		t.Fatalf("mean best turn got %.3f want 90", rep.Game.MeanBestTurn)
	}

	sum := 0
	for _, c := range rep.Dist.ScoreCollect {
		sum += c
	}
	if sum != 3 {
		t.Fatalf("score collect sum got %d want 3", sum)
	}
}

func TestMergeTurnRecorder(t *testing.T) {
	gs := testGameSetting(t)
	values := []int{1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6}

	mk := func(scores []int) *recorder.TurnRecorder {
		rec, err := recorder.NewTurnRecorder(gs.GameName, gs.GameID, "greedy_face", gs.Pool.RollsPerTurn)
		if err != nil {
			t.Fatalf("new recorder: %v", err)
		}
		tr := buf.NewTurnResult(gs)
		for _, sc := range scores {
			tr.Reset()
			tr.AppendRoll(values, 0)
			tr.SetScore(score.Result{Category: score.CategoryChance, Score: sc})
			tr.End()
			rec.Record(tr)
		}
		return rec
	}

	a := mk([]int{10, 20})
	b := mk([]int{30})
	merged, err := recorder.MergeTurnRecorder([]*recorder.TurnRecorder{a, b})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if merged.Basic.Turns != 3 || merged.Basic.TotalScore != 60 {
		t.Fatalf("merged basic got %d turns / %d score", merged.Basic.Turns, merged.Basic.TotalScore)
	}
	if merged.Basic.MinScore != 10 || merged.Basic.MaxScore != 30 {
		t.Fatalf("merged min/max got %d/%d", merged.Basic.MinScore, merged.Basic.MaxScore)
	}

	// mismatched policy refuses to merge
	c, err := recorder.NewTurnRecorder(gs.GameName, gs.GameID, "hold_none", gs.Pool.RollsPerTurn)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	if _, err := recorder.MergeTurnRecorder([]*recorder.TurnRecorder{a, c}); err == nil {
		t.Fatalf("expected merge error on different policy")
	}
}

func TestNewTurnRecorderRejects(t *testing.T) {
	if _, err := recorder.NewTurnRecorder("", spec.GID(1), "greedy_face", 3); err == nil {
		t.Fatalf("expected error on empty game name")
	}
	if _, err := recorder.NewTurnRecorder("demo", spec.GID(1), "greedy_face", 0); err == nil {
		t.Fatalf("expected error on zero rolls per turn")
	}
}
