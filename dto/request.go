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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/zintix-labs/naasii/corefmt"
	"github.com/zintix-labs/naasii/errs"
	"github.com/zintix-labs/naasii/sdk/buf"
	"github.com/zintix-labs/naasii/spec"
)

type TurnRequest struct {
	UID      string         `json:"uid"`              // 唯一識別碼
	GameName string         `json:"game"`             // 要玩的遊戲
	GameId   spec.GID       `json:"gid"`              // 遊戲桌編號
	Policy   spec.PolicyKey `json:"policy,omitempty"` // 可選：本回合的留骰策略（留空走桌面設定）
	Round    int            `json:"round"`            // 第幾回合（帳務對帳用）

	StartState *StartState `json:"start_state,omitempty"` // 可選：由業務端帶入的引擎狀態（nil=新回合；帶 start_b64u=回放/續玩）。
}

// DecodeTurnRequest 會把 HTTP 請求解碼成 TurnRequest。
//
// 支援：
//   - GET：從 query string 讀取參數（uid/game/gid/policy/round）。
//     注意：GET 建議僅用於「新回合」或簡單測試；巢狀狀態（start_state）建議使用 POST。
//   - POST：從 JSON body 反序列化（支援 start_state）。
//
// StartState（start_state）語意：
//   - start_state 缺省 / 為 null / 為空物件：視為「新回合」。
//   - start_state.start_b64u 有值：視為「回放（replay）/ 續玩（resume/continue）」：
//   - 回放：帶入當初記錄的 start_b64u，可在相同輸入條件下重現該回合結果。
//   - 續玩：帶入上一回合回傳的 after_b64u 作為新的 start_b64u，以延續 RNG 流水。
//   - 引擎的輸入只接受 start_b64u（Start）；after_b64u 只會出現在回應（TurnState），請求端不得自行填寫 after。
//
// 注意：
//   - 這裡只負責「解碼（decode）」與基本型別轉換，不做任何對局合法性校驗；
//     合法性（例如該 GID 是否存在、policy 是否註冊）應由上層（Table/Runtime）決定。
//   - 為避免過大 body 影響服務，POST 會對 body 做大小限制（預設 1MiB）。
//   - POST 會開啟 DisallowUnknownFields()，對未知欄位採用嚴格拒絕，以避免靜默丟資料。
func DecodeTurnRequest(r *http.Request) (*TurnRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}

	req := new(TurnRequest)

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.UID = q.Get("uid")
		req.GameName = q.Get("game")
		req.Policy = spec.PolicyKey(q.Get("policy"))

		if s := q.Get("gid"); s != "" {
			u, err := strconv.ParseUint(s, 10, 0)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid gid: %v", err))
			}
			req.GameId = spec.GID(u)
		}

		if s := q.Get("round"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid round: %v", err))
			}
			req.Round = v
		}

		return req, nil

	case http.MethodPost:
		// 防止 body 過大（預設 1MiB）
		const maxBody = 1 << 20
		body := io.LimitReader(r.Body, maxBody)
		dec := json.NewDecoder(body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(req); err != nil {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
		return req, nil

	default:
		return nil, fmt.Errorf("method not allowed")
	}
}

// StartState 是由業務端帶入的「引擎可恢復狀態」（可選）。
//
// 設計目標：
//   - 讓引擎維持純計算器（stateless / deterministic），而「可回放/可續玩」所需的狀態由業務端保存與回送。
//   - 新回合：start_state 缺省即可；引擎會自行延續 RNG 流水並在回應中回傳 Start/After。
//   - 回放（Replay）：業務端帶入當初記錄的 start_b64u，即可在相同策略下重現該回合結果。
//   - 續玩（Resume/Continue）：業務端把上一回合回應的 after_b64u 當作下一回合的 start_b64u 送入，以延續同一條 RNG 流水。
//
// 重要約束：
//   - Request 只允許提供 Start（start_b64u）；After（after_b64u）只會由引擎在 Response 回傳。
type StartState struct {
	// StartCoreSnapB64U：RNG Core 的「起始快照」Base64URL（URL-safe base64）字串。
	//   - 缺省：視為新回合（引擎自行延續 RNG）。
	//   - 有值：視為回放/續玩（引擎從該快照 restore RNG，回合結束後恢復原流水）。
	// 注意：請求端不得提供 After；After 由引擎在回應中回傳，用於下一回合續玩或審計存證。
	StartCoreSnapB64U string `json:"start_b64u,omitempty"`
}

func (ss *StartState) HasPayload() bool {
	if ss == nil {
		return false
	}
	return ss.StartCoreSnapB64U != ""
}

func (tr *TurnRequest) Parse() (*buf.TurnRequest, error) {
	var state *buf.StartState
	start := tr.StartState
	if start.HasPayload() {
		snap, err := corefmt.DecodeBase64URL(start.StartCoreSnapB64U)
		if err != nil {
			return nil, errs.NewWarn("core snap decode failed " + err.Error())
		}
		state = &buf.StartState{StartCoreSnap: snap}
	}

	req := &buf.TurnRequest{
		UID:        tr.UID,
		GameName:   tr.GameName,
		GameId:     tr.GameId,
		Policy:     tr.Policy,
		Round:      tr.Round,
		StartState: state,
	}
	return req, nil
}

type DiceRequest struct {
	GameName string   `json:"game"`   // 要查的遊戲
	GameId   spec.GID `json:"gid"`    // 遊戲桌編號
	Values   []int    `json:"values"` // 骰面列表
}

// DecodeDiceRequest 會把 HTTP 請求解碼成 DiceRequest，
// 計分（/score）與建議（/analyze）端點共用。
//
// 支援：
//   - GET：values 以逗號分隔（values=1,2,3,...）。
//   - POST：從 JSON body 反序列化。
//
// 骰面數量與面值範圍的校驗交給計分引擎，這裡只做解碼。
func DecodeDiceRequest(r *http.Request) (*DiceRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}

	req := new(DiceRequest)

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.GameName = q.Get("game")

		if s := q.Get("gid"); s != "" {
			u, err := strconv.ParseUint(s, 10, 0)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid gid: %v", err))
			}
			req.GameId = spec.GID(u)
		}

		if s := q.Get("values"); s != "" {
			parts := strings.Split(s, ",")
			req.Values = make([]int, 0, len(parts))
			for _, p := range parts {
				v, err := strconv.Atoi(strings.TrimSpace(p))
				if err != nil {
					return nil, errs.NewWarn(fmt.Sprintf("invalid values: %v", err))
				}
				req.Values = append(req.Values, v)
			}
		}

		return req, nil

	case http.MethodPost:
		const maxBody = 1 << 20
		body := io.LimitReader(r.Body, maxBody)
		dec := json.NewDecoder(body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(req); err != nil {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
		return req, nil

	default:
		return nil, fmt.Errorf("method not allowed")
	}
}
