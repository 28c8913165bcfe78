package v1

import (
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/naasii"
	"github.com/zintix-labs/naasii/dto"
	"github.com/zintix-labs/naasii/errs"
	"github.com/zintix-labs/naasii/sdk/enum"
	"github.com/zintix-labs/naasii/sdk/score"
	"github.com/zintix-labs/naasii/server/httperr"
	"github.com/zintix-labs/naasii/spec"
)

func (ch *CalcHandler) Score(w http.ResponseWriter, q *http.Request) {
	// 內部結構 不影響外部 也不被外部使用
	type ScoreResponse struct {
		GameName string         `json:"game"`
		GameId   spec.GID       `json:"gid"`
		Score    int            `json:"score"`
		Category score.Category `json:"category"`
		Counts   []int          `json:"counts"`
	}
	// ---
	if q.Method != http.MethodGet && q.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, err := dto.DecodeDiceRequest(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	gid, err := ch.resolve(req)
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	// 計分引擎是純函數，跨請求共用同一顆
	res, err := ch.engines[gid].Calculate(req.Values)
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	ent, _ := ch.Naasii.EntryById(gid)
	resp := ScoreResponse{
		GameName: ent.Name,
		GameId:   gid,
		Score:    res.Score,
		Category: res.Category,
		Counts:   res.Counts,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// ============================================================
// ** CalcHandler **
// ============================================================

// CalcHandler 服務「純計算」端點：/score /analyze /exact。
//
// 三個端點都不碰 RNG、不碰桌台，拿的是和模擬器同一份計分引擎與
// 同一份精算結果。引擎與精算在建構時一次建好（fail-fast），
// 之後的請求只做查表。
type CalcHandler struct {
	Naasii  *naasii.Naasii
	engines map[spec.GID]*score.Engine
	evals   map[spec.GID]*enum.Eval
}

func NewCalcHandler(pb *naasii.Naasii) (*CalcHandler, error) {
	sums, err := pb.Summary()
	if err != nil {
		return nil, errs.Wrap(err, "build calc handler error")
	}
	ch := &CalcHandler{
		Naasii:  pb,
		engines: make(map[spec.GID]*score.Engine, len(sums)),
		evals:   make(map[spec.GID]*enum.Eval, len(sums)),
	}
	for _, sum := range sums {
		gs, err := pb.GameSettingById(sum.GID)
		if err != nil {
			return nil, err
		}
		eng := score.NewEngine(&gs.Pool, &gs.Score)
		space, err := enum.NewSpace(&gs.Pool)
		if err != nil {
			return nil, errs.Wrap(err, "build enum space error")
		}
		ev, err := space.Evaluate(eng)
		if err != nil {
			return nil, errs.Wrap(err, "evaluate score space error")
		}
		ch.engines[sum.GID] = eng
		ch.evals[sum.GID] = ev
	}
	return ch, nil
}

// resolve 依請求找出桌台：gid 優先，name 其次。
func (ch *CalcHandler) resolve(req *dto.DiceRequest) (spec.GID, error) {
	if req.GameId > 0 {
		if _, ok := ch.engines[req.GameId]; ok {
			return req.GameId, nil
		}
		return 0, errs.NewWarn("gid not found")
	}
	if req.GameName != "" {
		ent, ok := ch.Naasii.EntryByName(req.GameName)
		if !ok {
			return 0, errs.NewWarn("game not found")
		}
		return ent.GID, nil
	}
	return 0, errs.NewWarn("game is required")
}
