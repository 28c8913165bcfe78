package spec

import (
	"fmt"

	"github.com/zintix-labs/naasii/errs"
)

// GameSetting 包含開一張骰桌所需的所有高階設定。
type GameSetting struct {
	GameName string         `yaml:"game_name" json:"game_name"`
	GameID   GID            `yaml:"game_id"   json:"game_id"`
	Pool     PoolSetting    `yaml:"pool"      json:"pool"`
	Score    ScoreSetting   `yaml:"score"     json:"score"`
	Session  SessionSetting `yaml:"session"   json:"session"`
	Sim      SimSetting     `yaml:"sim"       json:"sim"`
	Tuner    *TunerSetting  `yaml:"tuner"     json:"tuner,omitempty"`
	Fixed    map[string]any `yaml:"fixed"     json:"fixed"`
}

// init
func (gs *GameSetting) init() error {
	if err := gs.Pool.Init(); err != nil {
		return err
	}
	if err := gs.Score.Init(); err != nil {
		return err
	}
	if err := gs.Session.Init(); err != nil {
		return err
	}
	if err := gs.Sim.Init(); err != nil {
		return err
	}
	if gs.Tuner != nil {
		if err := gs.Tuner.Init(); err != nil {
			return err
		}
	}
	return gs.valid()
}

// valid 執行最基本的設定檔檢查，如需更多驗證可在此擴充。
func (gs *GameSetting) valid() error {

	if gs.GameName == "" {
		return errs.NewFatal("empty game_name")
	}

	// 計分表與骰池的交叉檢查：查不到的加分級距代表設定寫錯
	for count := range gs.Score.RepeatBonus {
		if count > gs.Pool.DiceCount {
			return errs.NewFatal(fmt.Sprintf(
				"game_name: %s err:repeat_bonus key %d exceeds dice_count %d",
				gs.GameName, count, gs.Pool.DiceCount))
		}
	}
	for l := range gs.Score.StraightBonus {
		if l > gs.Pool.Faces {
			return errs.NewFatal(fmt.Sprintf(
				"game_name: %s err:straight_bonus key %d exceeds faces %d",
				gs.GameName, l, gs.Pool.Faces))
		}
	}

	return nil
}

// IsOfficialTable 回傳骰池與計分表是否皆為官方配置。
// 互動牌局（session）只接受官方配置；lab 面不受此限。
func (gs *GameSetting) IsOfficialTable() bool {
	return gs.Pool.IsOfficial() && gs.Score.IsOfficial()
}
