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

package svrcfg

import (
	"log/slog"

	"github.com/zintix-labs/naasii"
	"github.com/zintix-labs/naasii/errs"
	"github.com/zintix-labs/naasii/server/logger"
)

type SvrCfg struct {
	Log          *slog.Logger
	TableBufSize int
	Dev          bool // 掛載 /dev 工具頁（只建議在開發環境開啟）
	Naasii       *naasii.Naasii
}

func (sc *SvrCfg) Vaild() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		// 保持安靜、合法
		sc.Log, _ = logger.NewAsync(1024, logger.ModeDev)
	}

	// 1 <= sc.TableBufSize <= 10
	// for 資源管理
	sc.TableBufSize = max(1, sc.TableBufSize)
	sc.TableBufSize = min(10, sc.TableBufSize)
	if sc.Naasii == nil {
		return errs.NewFatal("naasii is required")
	}
	return nil
}
