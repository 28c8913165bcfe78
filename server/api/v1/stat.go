package v1

import (
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/naasii/recorder"
	"github.com/zintix-labs/naasii/sdk/buf"
	"github.com/zintix-labs/naasii/sdk/score"
	"github.com/zintix-labs/naasii/spec"
)

// DistTurns 是 /stat 的輸入：逐回合原始資料（離線模擬或對局紀錄匯出）。
// 三個陣列以 index 對齊，一個 index 一回合。
type DistTurns struct {
	// TurnRequest
	GameName     string         `json:"game_name"`
	GameId       spec.GID       `json:"gid"`
	Policy       spec.PolicyKey `json:"policy"`
	RollsPerTurn int            `json:"rolls_per_turn"`
	// TurnRecord
	Scores     []int            `json:"scores"`
	Categories []score.Category `json:"categories"`
	RollsUsed  []int            `json:"rolls_used"`
}

// Stat 用原始逐回合資料重建統計報表，讓外部資料也能吃到
// 和模擬器同一套 bucket / CI / 牌型統計。
func Stat(w http.ResponseWriter, r *http.Request) {
	// Post方法限定
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// 嘗試解析
	dst := new(DistTurns)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// 對齊回合數
	turns := min(len(dst.Scores), len(dst.Categories), len(dst.RollsUsed))
	if turns < 1 {
		http.Error(w, "turns must > 0", http.StatusBadRequest)
		return
	}
	if dst.RollsPerTurn == 0 {
		dst.RollsPerTurn = spec.OfficialRollsPerTurn
	}

	// 負分/負擲數會打穿 bucket 索引，先擋掉
	for i := 0; i < turns; i++ {
		if dst.Scores[i] < 0 {
			http.Error(w, "scores must be non-negative", http.StatusBadRequest)
			return
		}
		if dst.RollsUsed[i] < 0 {
			http.Error(w, "rolls_used must be non-negative", http.StatusBadRequest)
			return
		}
	}

	rec, err := recorder.NewTurnRecorder(dst.GameName, dst.GameId, dst.Policy, dst.RollsPerTurn)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// 只填 Record 會讀的欄位，骰面快照外部資料沒有、也用不到
	tr := &buf.TurnResult{
		GameName: dst.GameName,
		GameID:   dst.GameId,
		Policy:   dst.Policy,
	}
	for i := 0; i < turns; i++ {
		tr.Score = dst.Scores[i]
		tr.Category = dst.Categories[i]
		tr.RollCount = dst.RollsUsed[i]
		// 紀錄
		rec.Record(tr)
	}
	st := rec.Done()
	st.Done()
	if err := json.NewEncoder(w).Encode(st); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
}
