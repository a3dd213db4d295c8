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

package collide

import (
	"fmt"
	"strings"
)

// Policy - які комбінації форм порівнюються.
// Хто саме блокує рухому сутність - чужа нова позиція чи стара -
// визначається цими бітами.
type Policy uint8

const (
	// CompareCurrent - поточна проти поточної
	CompareCurrent Policy = 1 << iota
	// CompareDesired - бажана проти бажаної
	CompareDesired
	// CompareCross - поточна проти бажаної (в обидва боки)
	CompareCross
	// MoversLeaveCurrent - у сутності, що збирається рухатись, активні
	// лише бажані форми: свою поточну позицію вона звільняє
	MoversLeaveCurrent
)

// DefaultPolicy порівнює ефективні позиції: рухомі сутності - бажаними
// формами, ті що стоять - поточними. Рухома сутність блокується як
// чужою новою позицією, так і позицією того, хто лишився на місці.
const DefaultPolicy = CompareCurrent | CompareDesired | CompareCross | MoversLeaveCurrent

// allows - чи порівнювати форму a з формою b
func (p Policy) allows(aDesired, bDesired bool) bool {
	switch {
	case aDesired && bDesired:
		return p&CompareDesired != 0
	case !aDesired && !bDesired:
		return p&CompareCurrent != 0
	default:
		return p&CompareCross != 0
	}
}

var policyNames = []struct {
	name string
	bit  Policy
}{
	{"current", CompareCurrent},
	{"desired", CompareDesired},
	{"cross", CompareCross},
	{"movers-leave-current", MoversLeaveCurrent},
}

// ParsePolicy збирає Policy зі списку імен (як у конфігу).
// Порожній список - DefaultPolicy.
func ParsePolicy(names []string) (Policy, error) {
	if len(names) == 0 {
		return DefaultPolicy, nil
	}
	var p Policy
next:
	for _, n := range names {
		for _, v := range policyNames {
			if strings.EqualFold(n, v.name) {
				p |= v.bit
				continue next
			}
		}
		return 0, fmt.Errorf("unknown collision policy %q", n)
	}
	return p, nil
}

func (p Policy) String() string {
	var names []string
	for _, v := range policyNames {
		if p&v.bit != 0 {
			names = append(names, v.name)
		}
	}
	return strings.Join(names, "|")
}
