// This file is part of go-mc/server project.
// Copyright (C) 2023.  Tnze
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime/debug"

	// zap - мегашвидкий логер, набагато швидший за fmt.Printf
	"go.uber.org/zap"

	"FlowyCollide/game"
	"FlowyCollide/world"
)

// isDebug - флаг який можна включити при запуску через -debug
// В дебаг режимі буде лог кожного тіку
var isDebug = flag.Bool("debug", false, "Enable debug log output")

// configPath - звідки читати налаштування
var configPath = flag.String("config", "config.toml", "Path to the config file")

func main() {
	flag.Parse()

	var logger *zap.Logger
	if *isDebug {
		logger = unwrap(zap.NewDevelopment())
	} else {
		logger = unwrap(zap.NewProduction())
	}
	defer func(logger *zap.Logger) {
		// stderr на деяких системах не вміє Sync, це не страшно
		_ = logger.Sync()
	}(logger)

	logger.Info("Simulation start", zap.String("kernel", world.KernelName()))
	printBuildInfo(logger)
	defer logger.Info("Simulation exit")

	config, err := game.ReadConfig(*configPath)
	if err != nil {
		logger.Error("Read config fail", zap.Error(err))
		return
	}

	g, err := game.NewGame(logger, config)
	if err != nil {
		logger.Error("Init game fail", zap.Error(err))
		return
	}

	// Ctrl+C зупиняє симуляцію між тіками
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := g.Run(ctx); err != nil {
		logger.Error("Simulation error", zap.Error(err))
	}
	if err := g.Close(); err != nil {
		logger.Error("Close game fail", zap.Error(err))
	}
}

// printBuildInfo виводить інформацію про збірку
// Це допомагає знайти проблеми з версіями бібліотек
func printBuildInfo(logger *zap.Logger) {
	binaryInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	settings := make(map[string]string)
	for _, v := range binaryInfo.Settings {
		settings[v.Key] = v.Value
	}
	logger.Debug("Build info", zap.Any("settings", settings))
}

// unwrap - хелпер функція яка спрощує обробку помилок
// Якщо є помилка - відразу панікуємо
func unwrap[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
