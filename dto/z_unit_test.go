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

package dto

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zintix-labs/naasii/corefmt"
	"github.com/zintix-labs/naasii/sdk/buf"
	"github.com/zintix-labs/naasii/sdk/score"
	"github.com/zintix-labs/naasii/spec"
)

func TestDecodeTurnRequestGET(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/turn?uid=u1&game=demo&gid=7&policy=greedy_face&round=3", nil)
	req, err := DecodeTurnRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.UID != "u1" || req.GameName != "demo" || req.GameId != 7 {
		t.Fatalf("unexpected request: %+v", req)
	}
	if req.Policy != "greedy_face" || req.Round != 3 {
		t.Fatalf("unexpected request: %+v", req)
	}
	if req.StartState.HasPayload() {
		t.Fatalf("expected empty start state")
	}
}

func TestDecodeTurnRequestPOSTWithStartState(t *testing.T) {
	snap := []byte{0xde, 0xad, 0xbe, 0xef}
	payload := map[string]any{
		"uid":    "u2",
		"game":   "demo",
		"gid":    9,
		"policy": "pairs_up",
		"round":  2,
		"start_state": map[string]any{
			"start_b64u": corefmt.EncodeBase64URL(snap),
		},
	}
	data, _ := json.Marshal(payload)
	r := httptest.NewRequest(http.MethodPost, "/turn", bytes.NewReader(data))
	req, err := DecodeTurnRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.GameId != 9 || req.Policy != "pairs_up" || req.Round != 2 {
		t.Fatalf("unexpected request: %+v", req)
	}
	if !req.StartState.HasPayload() {
		t.Fatalf("expected start state payload")
	}

	inner, err := req.Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if inner.StartState == nil || !bytes.Equal(inner.StartState.StartCoreSnap, snap) {
		t.Fatalf("start snap not decoded: %+v", inner.StartState)
	}
	if inner.UID != "u2" || inner.GameName != "demo" || inner.Round != 2 {
		t.Fatalf("unexpected inner request: %+v", inner)
	}
}

func TestDecodeTurnRequestRejectsUnknownFields(t *testing.T) {
	data := []byte(`{"gid":1,"game":"demo","policy":"greedy_face","unknown":true}`)
	r := httptest.NewRequest(http.MethodPost, "/turn", bytes.NewReader(data))
	if _, err := DecodeTurnRequest(r); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestParseRejectsBadSnap(t *testing.T) {
	req := &TurnRequest{
		GameName:   "demo",
		StartState: &StartState{StartCoreSnapB64U: "%%%"},
	}
	if _, err := req.Parse(); err == nil {
		t.Fatalf("expected error for malformed base64url snap")
	}
}

func TestDecodeDiceRequestGET(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/score?game=demo&gid=7&values=1,2,3,%204,5,6,1,2,3,4,5,6", nil)
	req, err := DecodeDiceRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.GameName != "demo" || req.GameId != 7 {
		t.Fatalf("unexpected request: %+v", req)
	}
	if len(req.Values) != 12 || req.Values[3] != 4 {
		t.Fatalf("unexpected values: %v", req.Values)
	}
}

func TestDecodeDiceRequestBadValues(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/score?values=1,x,3", nil)
	if _, err := DecodeDiceRequest(r); err == nil {
		t.Fatalf("expected error for malformed values")
	}
}

type probeExt struct {
	Tag string `json:"tag"`
}

func (e *probeExt) Reset() { e.Tag = "" }

func (e *probeExt) Snapshot() any {
	return &probeExt{Tag: e.Tag}
}

func TestNewTurnResultDTO(t *testing.T) {
	gs, err := spec.GetGameSettingByYAML([]byte("game_name: demo\ngame_id: 7\n"))
	if err != nil {
		t.Fatalf("load setting: %v", err)
	}

	RegisterExtendRender[*probeExt]("ext_probe")

	tr := buf.NewTurnResult(gs)
	tr.Policy = "ext_probe"
	tr.AppendRoll([]int{1, 2, 3, 4, 5, 6, 1, 2, 3, 4, 5, 6}, 0)
	tr.AppendRoll([]int{6, 6, 6, 4, 5, 6, 1, 2, 3, 4, 5, 6}, 0b11)
	tr.SetScore(score.Result{Category: score.CategoryMultiplePairs, Score: 35, Counts: []int{2, 2, 2, 2, 2, 2}})
	tr.SetExtend(&probeExt{Tag: "chase"})
	tr.State.StartCoreSnap = []byte{1, 2, 3}
	tr.State.AfterCoreSnap = []byte{4, 5, 6}
	tr.End()

	dto, err := NewTurnResultDTO(tr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dto.GameName != "demo" || dto.GameID != 7 || dto.Policy != "ext_probe" {
		t.Fatalf("unexpected dto metadata: %+v", dto)
	}
	if dto.Score != 35 || dto.Category != score.CategoryMultiplePairs || !dto.IsTurnEnd {
		t.Fatalf("unexpected dto result: %+v", dto)
	}
	if len(dto.Rolls) != 2 || dto.Rolls[0].RollId != 0 || dto.Rolls[1].Lock != 0b11 {
		t.Fatalf("unexpected rolls: %+v", dto.Rolls)
	}
	if v := dto.Rolls[1].Values; len(v) != 12 || v[0] != 6 || v[11] != 6 {
		t.Fatalf("unexpected roll values: %v", v)
	}

	start, err := corefmt.DecodeBase64URL(dto.State.StartCoreSnapB64U)
	if err != nil || !bytes.Equal(start, []byte{1, 2, 3}) {
		t.Fatalf("start snap b64u round trip: %v %v", start, err)
	}
	after, err := corefmt.DecodeBase64URL(dto.State.AfterCoreSnapB64U)
	if err != nil || !bytes.Equal(after, []byte{4, 5, 6}) {
		t.Fatalf("after snap b64u round trip: %v %v", after, err)
	}

	ext, ok := dto.Extend.(*probeExt)
	if !ok || ext.Tag != "chase" {
		t.Fatalf("extend not rendered: %+v", dto.Extend)
	}

	// DTO 切的是快照：重用原 TurnResult 不可污染已輸出的結果
	tr.Reset()
	tr.AppendRoll([]int{2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2}, 0)
	if dto.Rolls[0].Values[0] != 1 {
		t.Fatalf("dto rolls aliased to live buffer")
	}
}

func TestNewTurnResultDTONil(t *testing.T) {
	if _, err := NewTurnResultDTO(nil); err == nil {
		t.Fatalf("expected error for nil turn result")
	}
}
