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

// Йоу, чат! Тут словник колізій: наміри руху та пари зіткнень.

package collide

import "fmt"

// Intent - рішення на цей тік: рухатись, стояти чи зникнути
type Intent uint8

const (
	// NotSet - значення на початку тіку
	NotSet Intent = iota
	// Delete - сутність видаляється, з наступного тіку її форм немає
	Delete
	// StayAtCurrentPos - бажана позиція відхилена, лишаємось на місці
	StayAtCurrentPos
	// GoToDesiredPos - переходимо в бажану позицію
	GoToDesiredPos
)

func (i Intent) String() string {
	switch i {
	case NotSet:
		return "NotSet"
	case Delete:
		return "Delete"
	case StayAtCurrentPos:
		return "StayAtCurrentPos"
	case GoToDesiredPos:
		return "GoToDesiredPos"
	}
	return fmt.Sprintf("Intent(%d)", uint8(i))
}

// canTransition - куди можна перейти з поточного наміру в межах тіку.
// Відкат назад (Stay -> Go) та повторний Delete - помилка того, хто викликає.
func canTransition(from, to Intent) bool {
	switch from {
	case NotSet:
		return to != NotSet
	case GoToDesiredPos:
		return to == StayAtCurrentPos || to == Delete
	case StayAtCurrentPos:
		return to == StayAtCurrentPos || to == Delete
	}
	return false
}

// Pair - невпорядкована пара власників, що зіткнулись
type Pair struct {
	Idx1 int `msgpack:"a"`
	Idx2 int `msgpack:"b"`
}

// MakePair повертає пару в канонічному порядку (Idx1 < Idx2)
func MakePair(a, b int) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{Idx1: a, Idx2: b}
}

// Swap міняє індекси місцями
func (p Pair) Swap() Pair { return Pair{Idx1: p.Idx2, Idx2: p.Idx1} }

// Has - чи входить власник i в пару
func (p Pair) Has(i int) bool { return p.Idx1 == i || p.Idx2 == i }

// Other повертає другого учасника пари
func (p Pair) Other(i int) int {
	if p.Idx1 == i {
		return p.Idx2
	}
	return p.Idx1
}
