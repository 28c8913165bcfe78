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

// Package store 負責對局存檔的落地與讀回：
//   - JSON 快照檔（naasii_save_*.json）供續玩 / 列表
//   - zstd 壓縮的歷史日誌（history.bin.zst）供報表回放
//
// 存檔格式版本固定為 Version，讀回時不認得的版本一律拒收。
package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/zintix-labs/naasii/corefmt"
	"github.com/zintix-labs/naasii/errs"
	"github.com/zintix-labs/naasii/sdk/score"
)

// Version 是目前存檔格式的版本字串，寫檔時由 Save/SaveAs 填入。
const Version = "1.0"

const (
	savePrefix  = "naasii_save_"
	saveExt     = ".json"
	journalName = "history.bin.zst"

	// 單一日誌 frame 的解壓上限，防呆用。
	maxJournalFrame = 1 << 20
)

// ScoreRecord 對應玩家帳本裡的一筆回合紀錄。
type ScoreRecord struct {
	Round    int            `json:"round"`
	Score    int            `json:"score"`
	Category score.Category `json:"category"`
	Total    int            `json:"total"`
	Player   string         `json:"player"`
}

// PlayerState 是單一玩家的存檔切片。
type PlayerState struct {
	Name    string        `json:"name"`
	Score   int           `json:"score"`
	History []ScoreRecord `json:"score_history"`
}

// GameSave 是一局對局的完整快照。CoreSnapB64U 帶的是亂數核心狀態，
// 有帶就能原 seed 續玩；沒帶的舊檔只能還原比分。
type GameSave struct {
	Players      []PlayerState `json:"players_data"`
	CurrentRound int           `json:"current_round"`
	MaxRounds    int           `json:"max_rounds"`
	GameDate     string        `json:"game_date"` // RFC3339
	Version      string        `json:"version"`
	CoreSnapB64U string        `json:"core_snap_b64u,omitempty"`
}

// Store 綁定一個存檔目錄。zero value 不可用，一律走 New。
type Store struct {
	dir string
}

// New 建立（必要時開出）存檔目錄。dir 為空時落在 "saves"。
func New(dir string) (*Store, error) {
	if dir == "" {
		dir = "saves"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrap(err, "create save dir failed")
	}
	return &Store{dir: dir}, nil
}

// Dir 回傳存檔目錄路徑。
func (s *Store) Dir() string {
	return s.dir
}

// Save 以時間戳檔名落一份快照，回傳完整路徑。
// GameDate 與 Version 由這裡統一補上，呼叫端不用自己填。
func (s *Store) Save(gs GameSave) (string, error) {
	name := savePrefix + time.Now().Format("20060102_150405") + saveExt
	return s.SaveAs(gs, name)
}

// SaveAs 以指定檔名落快照。先寫 tmp 再 rename，避免寫到一半留下半套檔。
func (s *Store) SaveAs(gs GameSave, name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", errs.NewWarn("save name must be a bare file name: " + name)
	}
	gs.GameDate = time.Now().Format(time.RFC3339)
	gs.Version = Version

	b, err := json.MarshalIndent(gs, "", "  ")
	if err != nil {
		return "", errs.Wrap(err, "marshal save failed")
	}
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return "", errs.Wrap(err, "write save failed")
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", errs.Wrap(err, "replace save failed")
	}
	return path, nil
}

// Load 讀回一份快照。name 可以是裸檔名（相對存檔目錄）或完整路徑。
func (s *Store) Load(name string) (GameSave, error) {
	path := name
	if name == filepath.Base(name) {
		path = filepath.Join(s.dir, name)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return GameSave{}, errs.NewWarn(fmt.Sprintf("save file not found: %s", path))
		}
		return GameSave{}, errs.Wrap(err, "read save failed")
	}
	var gs GameSave
	if err := json.Unmarshal(b, &gs); err != nil {
		return GameSave{}, errs.Wrap(err, "parse save failed")
	}
	if gs.Version != Version {
		return GameSave{}, errs.NewWarn(fmt.Sprintf("unsupported save version: %q (want %q)", gs.Version, Version))
	}
	return gs, nil
}

// List 回傳存檔目錄裡全部快照的裸檔名，新的在前。
func (s *Store) List() ([]string, error) {
	ents, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errs.Wrap(err, "read save dir failed")
	}
	type item struct {
		name string
		mod  time.Time
	}
	items := make([]item, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() || !strings.HasSuffix(e.Name(), saveExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		items = append(items, item{name: e.Name(), mod: info.ModTime()})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].mod.After(items[j].mod) })
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.name
	}
	return names, nil
}

// Autosave 每回合收盤時呼叫：固定檔名蓋一份最新快照，同時往歷史日誌補一筆。
func (s *Store) Autosave(gs GameSave) (string, error) {
	path, err := s.SaveAs(gs, "naasii_autosave"+saveExt)
	if err != nil {
		return "", err
	}
	if err := s.appendJournal(gs); err != nil {
		return "", err
	}
	return path, nil
}

// appendJournal 在日誌尾端補一個獨立的 zstd frame（JSON payload 加長度前綴）。
// 每筆各自成 frame，所以 append 途中斷電最多壞掉最後一筆。
func (s *Store) appendJournal(gs GameSave) error {
	b, err := json.Marshal(gs)
	if err != nil {
		return errs.Wrap(err, "marshal journal entry failed")
	}
	f, err := os.OpenFile(filepath.Join(s.dir, journalName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return errs.Wrap(err, "open journal failed")
	}
	defer f.Close()

	zw, err := zstd.NewWriter(f,
		zstd.WithEncoderLevel(zstd.SpeedFastest),
		zstd.WithEncoderConcurrency(1))
	if err != nil {
		return errs.Wrap(err, "new zstd writer failed")
	}
	if err := corefmt.WriteBlobFrame(zw, b); err != nil {
		zw.Close()
		return errs.Wrap(err, "write journal entry failed")
	}
	if err := zw.Close(); err != nil {
		return errs.Wrap(err, "flush journal failed")
	}
	return nil
}

// ReadJournal 讀回整本歷史日誌（舊在前）。檔案不存在視為空日誌。
// 串接的 zstd frame 交給 reader 透明解碼，這裡只管 payload 切框。
func (s *Store) ReadJournal() ([]GameSave, error) {
	f, err := os.Open(filepath.Join(s.dir, journalName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errs.Wrap(err, "open journal failed")
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, errs.Wrap(err, "new zstd reader failed")
	}
	defer zr.Close()

	br := bufio.NewReader(zr)
	var out []GameSave
	for {
		payload, err := corefmt.ReadBlobFrame(br, maxJournalFrame)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, errs.Wrap(err, "read journal entry failed")
		}
		var gs GameSave
		if err := json.Unmarshal(payload, &gs); err != nil {
			return nil, errs.Wrap(err, "parse journal entry failed")
		}
		out = append(out, gs)
	}
}
