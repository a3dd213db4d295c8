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

// Йоу, чат! Хто з ким зіткнувся і що з цим робити?
// Замість ієрархії класів - закритий набір ролей і таблиця роль x роль.
// Кожна клітинка таблиці - функція, яка вирішує долю пари.

package world

import "fmt"

// Role - роль сутності у зіткненнях
type Role uint8

const (
	RoleObstacle   Role = iota // стіни, нерухомі перешкоди
	RoleMobile                 // юніти, гравці
	RoleProjectile             // снаряди
	RoleCosmetic               // декор, ні з чим не взаємодіє
	roleCount
)

var roleNames = [roleCount]string{
	RoleObstacle:   "obstacle",
	RoleMobile:     "mobile",
	RoleProjectile: "projectile",
	RoleCosmetic:   "cosmetic",
}

func (r Role) String() string {
	if r < roleCount {
		return roleNames[r]
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

// ParseRole - з назви в конфігу/сценарії
func ParseRole(s string) (Role, error) {
	for r, name := range roleNames {
		if name == s {
			return Role(r), nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

// intentSink - куди резолвери пишуть рішення.
// Реалізація сама стежить, щоб Delete не просили двічі.
type intentSink interface {
	block(i int)   // не пускати в бажану позицію
	destroy(i int) // видалити сутність
}

// resolver вирішує долю пари (a, b), де a має роль рядка, b - колонки
type resolver func(s intentSink, a, b int)

func ignore(intentSink, int, int) {}

func blockFirst(s intentSink, a, _ int)  { s.block(a) }
func blockSecond(s intentSink, _, b int) { s.block(b) }
func blockBoth(s intentSink, a, b int)   { s.block(a); s.block(b) }

func destroyFirst(s intentSink, a, _ int)  { s.destroy(a) }
func destroySecond(s intentSink, _, b int) { s.destroy(b) }
func destroyBoth(s intentSink, a, b int)   { s.destroy(a); s.destroy(b) }

// снаряд влучив у юніта: снаряд зникає, юніт зупиняється
func projectileHitsMobile(s intentSink, projectile, mobile int) {
	s.destroy(projectile)
	s.block(mobile)
}

func mobileHitByProjectile(s intentSink, mobile, projectile int) {
	projectileHitsMobile(s, projectile, mobile)
}

// resolvers - повна таблиця роль x роль. Порожня клітинка ловиться тестом.
var resolvers = [roleCount][roleCount]resolver{
	RoleObstacle: {
		RoleObstacle:   ignore,
		RoleMobile:     blockSecond,
		RoleProjectile: destroySecond,
		RoleCosmetic:   ignore,
	},
	RoleMobile: {
		RoleObstacle:   blockFirst,
		RoleMobile:     blockBoth,
		RoleProjectile: mobileHitByProjectile,
		RoleCosmetic:   ignore,
	},
	RoleProjectile: {
		RoleObstacle:   destroyFirst,
		RoleMobile:     projectileHitsMobile,
		RoleProjectile: destroyBoth,
		RoleCosmetic:   ignore,
	},
	RoleCosmetic: {
		RoleObstacle:   ignore,
		RoleMobile:     ignore,
		RoleProjectile: ignore,
		RoleCosmetic:   ignore,
	},
}

// resolve застосовує таблицю до пари
func resolve(s intentSink, a, b int, ra, rb Role) {
	resolvers[ra][rb](s, a, b)
}

// couldMatter - чи варто взагалі перевіряти пару таких ролей.
// Клітинки з ignore сюди не потрапляють, щоб не робити зайвих тестів.
func couldMatter(ra, rb Role) bool {
	if ra == RoleCosmetic || rb == RoleCosmetic {
		return false
	}
	return ra != RoleObstacle || rb != RoleObstacle
}
