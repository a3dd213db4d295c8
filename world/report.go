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

package world

import "FlowyCollide/world/internal/collide"

type (
	Intent = collide.Intent
	Pair   = collide.Pair
)

const (
	NotSet           = collide.NotSet
	Delete           = collide.Delete
	StayAtCurrentPos = collide.StayAtCurrentPos
	GoToDesiredPos   = collide.GoToDesiredPos
)

// TickReport - підсумок одного тіку. Індекси в Pairs та Intents
// відповідають Entities.
type TickReport struct {
	Tick     uint             `msgpack:"tick"`
	Entities []int32          `msgpack:"entities"`
	Pairs    []collide.Pair   `msgpack:"pairs"`
	Intents  []collide.Intent `msgpack:"intents"`
	Removed  []int32          `msgpack:"removed"`
	Stats    collide.Stats    `msgpack:"stats"`
}

// Count - скільки сутностей закінчили тік з таким наміром
func (r *TickReport) Count(intent collide.Intent) (n int) {
	for _, i := range r.Intents {
		if i == intent {
			n++
		}
	}
	return
}

// PairOf повертає пару у вигляді EntityID
func (r *TickReport) PairOf(p collide.Pair) [2]int32 {
	return [2]int32{r.Entities[p.Idx1], r.Entities[p.Idx2]}
}
