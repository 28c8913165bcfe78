package v1

import (
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/naasii/dto"
	"github.com/zintix-labs/naasii/sdk/enum"
	"github.com/zintix-labs/naasii/server/httperr"
	"github.com/zintix-labs/naasii/spec"
)

// Exact 回傳桌台計分表的「精算」結果：窮舉所有骰面組合得出的
// 期望值、標準差、牌型機率與完整分數分布。不是抽樣，沒有誤差條。
func (ch *CalcHandler) Exact(w http.ResponseWriter, q *http.Request) {
	// 內部結構 不影響外部 也不被外部使用
	type ExactResponse struct {
		GameName string     `json:"game"`
		GameId   spec.GID   `json:"gid"`
		Eval     *enum.Eval `json:"eval"`
	}
	// ---
	if q.Method != http.MethodGet {
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

	ent, _ := ch.Naasii.EntryById(gid)
	resp := ExactResponse{
		GameName: ent.Name,
		GameId:   gid,
		Eval:     ch.evals[gid],
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
