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

package api

import (
	"log/slog"
	"net/http"

	"github.com/zintix-labs/naasii/server/api/dev"
	v1 "github.com/zintix-labs/naasii/server/api/v1"
	"github.com/zintix-labs/naasii/server/netsvr"
	"github.com/zintix-labs/naasii/server/netsvr/middleware"
	"github.com/zintix-labs/naasii/server/svrcfg"
)

// RegisterRoutes 註冊
func RegisterRoutes(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) error {
	registerMiddleware(svr, sCfg.Log) // 1. 註冊 middleware
	registerHealthz(svr)              // 2. 註冊健康檢查
	if sCfg.Dev {
		dev.Register(svr, sCfg) // 3. 開發者工具頁（只在 Dev 模式掛載）
	}
	return registerV1API(svr, sCfg) // 4. 註冊 v1 api
}

// 註冊 middleware
func registerMiddleware(svr netsvr.NetSvr, log *slog.Logger) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(log))
	svr.Use(middleware.Recover)
	svr.Use(middleware.Compression)
}

// 註冊健康檢查
func registerHealthz(svr netsvr.NetSvr) {
	svr.Get("/healthz", healthz)
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// 註冊 v1 api
func registerV1API(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) error {
	p, err := v1.NewPlayHandler(sCfg)
	if err != nil {
		return err
	}
	s, err := v1.NewSimHandler(sCfg.Naasii)
	if err != nil {
		return err
	}
	c, err := v1.NewCalcHandler(sCfg.Naasii)
	if err != nil {
		return err
	}
	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Get("/play", p.Play)
		vOne.Get("/score", c.Score)
		vOne.Get("/analyze", c.Analyze)
		vOne.Get("/exact", c.Exact)
		vOne.Get("/sim", s.Sim)

		vOne.Post("/play", p.Play)
		vOne.Post("/score", c.Score)
		vOne.Post("/analyze", c.Analyze)
		vOne.Post("/sim", s.Sim)
		vOne.Post("/sim/games", s.SimGames)
		vOne.Post("/sim/bycfg", s.SimByCfg)
		vOne.Post("/stat", v1.Stat)
	})
	return nil
}
