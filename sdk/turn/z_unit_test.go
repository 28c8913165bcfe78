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

package turn

import (
	"errors"
	"testing"

	"github.com/zintix-labs/naasii/sdk/core"
	"github.com/zintix-labs/naasii/sdk/dice"
	"github.com/zintix-labs/naasii/sdk/score"
	"github.com/zintix-labs/naasii/spec"
)

func newController(t *testing.T, seed int64) *Controller {
	t.Helper()
	ps := &spec.PoolSetting{}
	if err := ps.Init(); err != nil {
		t.Fatalf("pool setting init: %v", err)
	}
	pool := dice.NewPool(ps, core.Default().New(seed))
	return NewController(pool, score.NewOfficialEngine())
}

func TestFullTurnWalk(t *testing.T) {
	tc := newController(t, 1)

	if tc.State() != StateAwaitingFirstRoll {
		t.Fatalf("expected awaiting_first_roll, got %s", tc.State())
	}
	if _, err := tc.Score(); !errors.Is(err, ErrNotRolled) {
		t.Fatalf("expected ErrNotRolled before first roll, got %v", err)
	}

	if err := tc.Roll(); err != nil {
		t.Fatalf("first roll: %v", err)
	}
	if tc.State() != StateRolled {
		t.Fatalf("expected rolled, got %s", tc.State())
	}

	tc.Lock(0, 2, 4)
	kept := []int{tc.Pool().ValueAt(0), tc.Pool().ValueAt(2), tc.Pool().ValueAt(4)}
	if err := tc.Roll(); err != nil {
		t.Fatalf("second roll: %v", err)
	}
	for i, idx := range []int{0, 2, 4} {
		if got := tc.Pool().ValueAt(idx); got != kept[i] {
			t.Fatalf("locked die %d changed: %d -> %d", idx, kept[i], got)
		}
	}

	res, err := tc.Score()
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if res.Score <= 0 {
		t.Fatalf("valid turn scored %d", res.Score)
	}
	if tc.State() != StateScored {
		t.Fatalf("expected scored, got %s", tc.State())
	}

	got, ok := tc.Result()
	if !ok || got.Score != res.Score || got.Category != res.Category {
		t.Fatalf("stored result mismatch")
	}
}

// TestScoreExactlyOnce 一回合只許結算一次。
func TestScoreExactlyOnce(t *testing.T) {
	tc := newController(t, 2)
	if err := tc.Roll(); err != nil {
		t.Fatalf("roll: %v", err)
	}
	if _, err := tc.Score(); err != nil {
		t.Fatalf("score: %v", err)
	}

	if _, err := tc.Score(); !errors.Is(err, ErrAlreadyScored) {
		t.Fatalf("expected ErrAlreadyScored, got %v", err)
	}
	if err := tc.Roll(); !errors.Is(err, ErrAlreadyScored) {
		t.Fatalf("expected ErrAlreadyScored on post-score roll, got %v", err)
	}
}

// TestRollBudgetExhaustion 三把用完後 Roll 回報額度用盡，只能結算。
func TestRollBudgetExhaustion(t *testing.T) {
	tc := newController(t, 3)
	for i := 0; i < 3; i++ {
		if !tc.CanRoll() {
			t.Fatalf("expected CanRoll before roll %d", i+1)
		}
		if err := tc.Roll(); err != nil {
			t.Fatalf("roll %d: %v", i+1, err)
		}
	}
	if tc.CanRoll() {
		t.Fatalf("expected exhausted budget")
	}
	if err := tc.Roll(); !errors.Is(err, dice.ErrNoRollsRemaining) {
		t.Fatalf("expected ErrNoRollsRemaining, got %v", err)
	}
	if tc.State() != StateRolled {
		t.Fatalf("failed roll must not change state, got %s", tc.State())
	}
	if _, err := tc.Score(); err != nil {
		t.Fatalf("score after exhaustion: %v", err)
	}
}

func TestBeginResets(t *testing.T) {
	tc := newController(t, 4)
	_ = tc.Roll()
	tc.Lock(1, 3)
	if _, err := tc.Score(); err != nil {
		t.Fatalf("score: %v", err)
	}

	tc.Begin()
	if tc.State() != StateAwaitingFirstRoll {
		t.Fatalf("expected awaiting_first_roll after Begin, got %s", tc.State())
	}
	if tc.Pool().RollsLeft() != 3 {
		t.Fatalf("expected full allowance, got %d", tc.Pool().RollsLeft())
	}
	if tc.Pool().LockedMask() != 0 {
		t.Fatalf("expected locks cleared")
	}
	if _, ok := tc.Result(); ok {
		t.Fatalf("expected result cleared after Begin")
	}
}
