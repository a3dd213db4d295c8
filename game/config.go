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

// Йоу, чат! Зараз розберемо конфігурацію нашої симуляції!
// Тут зберігаються всі налаштування які можна змінити без перезбірки

package game

import (
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/time/rate"

	"FlowyCollide/world"
)

// Config - головна структура з налаштуваннями
// Поля з тегом `toml` читаються з конфіг файлу
type Config struct {
	// Скільки тіків прокрутити, 0 - поки не зупинять
	MaxTicks uint `toml:"max-ticks"`

	// Скільки горутин одночасно рахують бажаний рух
	Workers int `toml:"workers"`

	// Кількість клітинок сітки по осі, округлюється до степеня двійки
	GridResolution int `toml:"grid-resolution"`

	// "grid" або "bvh"
	BroadPhase string `toml:"broad-phase"`

	// Які пари форм порівнювати: "current", "desired", "cross",
	// "movers-leave-current". Порожньо - все
	Policy []string `toml:"policy"`

	// Шлях до YAML файлу сценарію
	Scenario string `toml:"scenario"`

	// Куди писати звіти тіків, порожньо - не писати
	ReportDir string `toml:"report-dir"`

	// TickLimiter - як часто крутити тіки
	TickLimiter Limiter `toml:"tick-limiter"`
	// ReportLimiter - скільки звітів можна записати
	ReportLimiter Limiter `toml:"report-limiter"`
}

// DefaultConfig - налаштування, поверх яких читається файл
func DefaultConfig() Config {
	return Config{
		MaxTicks:       200,
		Workers:        4,
		GridResolution: world.DefaultResolution,
		BroadPhase:     "grid",
		Scenario:       "scenarios/demo.yaml",
	}
}

// CollideOptions перетворює налаштування в опції рушія колізій
func (c *Config) CollideOptions() (world.CollideOptions, error) {
	return world.ParseCollideOptions(c.BroadPhase, c.Policy, c.GridResolution)
}

// ReadConfig читає конфіг з файлу
// Якщо знайдемо невідомі налаштування - повернемо помилку
func ReadConfig(path string) (Config, error) {
	c := DefaultConfig()
	meta, err := toml.DecodeFile(path, &c)
	if err != nil {
		return Config{}, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		var err errUnknownConfig
		for _, key := range undecoded {
			err = append(err, key.String())
		}
		return Config{}, err
	}
	if _, err := c.CollideOptions(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// errUnknownConfig - це список невідомих налаштувань
type errUnknownConfig []string

func (e errUnknownConfig) Error() string {
	return "unknown config keys: [" + strings.Join(e, ", ") + "]"
}

// Limiter - структура для обмеження частоти дій
// Наприклад: не більше 20 тіків кожну секунду
type Limiter struct {
	// Як часто можна виконувати дію
	// Наприклад "50ms" = кожні 50 мілісекунд
	Every duration `toml:"every"`

	// Скільки разів можна виконати дію підряд
	N int
}

// Limiter перетворює наші налаштування в готовий rate.Limiter.
// Нульовий Every означає без обмежень.
func (l *Limiter) Limiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(l.Every.Duration), max(l.N, 1))
}

// duration - обгортка навколо time.Duration
// Потрібна щоб читати тривалість з конфіг файлу
type duration struct {
	time.Duration
}

// UnmarshalText перетворює текст з конфігу в time.Duration
// Наприклад "5s" -> 5 секунд
func (d *duration) UnmarshalText(text []byte) (err error) {
	d.Duration, err = time.ParseDuration(string(text))
	return
}
