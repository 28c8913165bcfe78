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

package spec

import (
	"github.com/zintix-labs/naasii/errs"
)

// TunerSetting drives the bonus-table tuner. The tuner anneals the
// repeat/straight bonus tables toward TargetMean, the exact per-turn
// expected score computed by the enumerator. Only the tuner reads this
// section; interactive sessions always play the official tables.
type TunerSetting struct {
	TargetMean float64 `yaml:"target_mean" json:"target_mean"`
	// TargetStd optionally pins the spread of the exact score
	// distribution as well; 0 tunes on the mean alone.
	TargetStd float64 `yaml:"target_std"  json:"target_std"`
	Tolerance float64 `yaml:"tolerance"   json:"tolerance"`
	Iterations int     `yaml:"iterations"  json:"iterations"`
	InitTemp   float64 `yaml:"init_temp"   json:"init_temp"`
	Cooling    float64 `yaml:"cooling"     json:"cooling"`
	MaxBonus   int     `yaml:"max_bonus"   json:"max_bonus"`
	Seed       uint64  `yaml:"seed"        json:"seed"`
	initFlag   bool
}

// Init fills defaults and validates. TargetMean has no default: a tuner
// run without a target is a configuration mistake.
func (ts *TunerSetting) Init() error {
	if ts.initFlag {
		return nil
	}
	if ts.Tolerance == 0 {
		ts.Tolerance = 0.05
	}
	if ts.Iterations == 0 {
		ts.Iterations = 4000
	}
	if ts.InitTemp == 0 {
		ts.InitTemp = 8.0
	}
	if ts.Cooling == 0 {
		ts.Cooling = 0.995
	}
	if ts.MaxBonus == 0 {
		ts.MaxBonus = 60
	}
	if err := ts.valid(); err != nil {
		return err
	}
	ts.initFlag = true
	return nil
}

// valid validates the TunerSetting configuration.
// Rules:
// 1) target_mean must be positive and below the maximum possible turn score.
// 2) cooling must sit in (0, 1) so the temperature actually decays.
func (ts *TunerSetting) valid() error {
	if ts.TargetMean <= 0 {
		return errs.NewFatal("tuner_setting: target_mean must be positive")
	}
	if ts.TargetStd < 0 {
		return errs.NewFatal("tuner_setting: target_std must be non-negative")
	}
	if ts.Tolerance <= 0 {
		return errs.NewFatal("tuner_setting: tolerance must be positive")
	}
	if ts.Iterations < 1 {
		return errs.Fatalf("tuner_setting: iterations must be at least 1, got %d", ts.Iterations)
	}
	if ts.InitTemp <= 0 {
		return errs.NewFatal("tuner_setting: init_temp must be positive")
	}
	if ts.Cooling <= 0 || ts.Cooling >= 1 {
		return errs.Fatalf("tuner_setting: cooling must be in (0, 1), got %v", ts.Cooling)
	}
	if ts.MaxBonus < 1 {
		return errs.Fatalf("tuner_setting: max_bonus must be at least 1, got %d", ts.MaxBonus)
	}
	return nil
}
