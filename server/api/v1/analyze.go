package v1

import (
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/naasii/dto"
	"github.com/zintix-labs/naasii/server/httperr"
	"github.com/zintix-labs/naasii/spec"
)

// Analyze 回傳留骰建議：哪些面值得留、缺哪些面可以湊順。
// 純顯示用途，結果不影響計分也不影響策略。
func (ch *CalcHandler) Analyze(w http.ResponseWriter, q *http.Request) {
	// 內部結構 不影響外部 也不被外部使用
	type AnalyzeResponse struct {
		GameName    string   `json:"game"`
		GameId      spec.GID `json:"gid"`
		Counts      []int    `json:"counts"`
		Suggestions []string `json:"suggestions"`
		Total       int      `json:"total"`
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

	an := ch.engines[gid].Analyze(req.Values)

	ent, _ := ch.Naasii.EntryById(gid)
	resp := AnalyzeResponse{
		GameName:    ent.Name,
		GameId:      gid,
		Counts:      an.Counts,
		Suggestions: an.Suggestions,
		Total:       an.Total,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
