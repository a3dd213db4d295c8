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

// Йоу, чат! Спостерігачі - це ті, кому цікаво що сталося за тік:
// статистика, запис звітів, налагоджувальний вивід.
// Світ сам нічого не пише, він лише розсилає звіт.

package world

// Viewer отримує звіт кожного тіку. Викликається під час тіку,
// тому має повертатися швидко і не чіпати світ.
type Viewer interface {
	ViewTick(r *TickReport)
}

// AddViewer додає спостерігача. Панікує якщо він вже доданий.
func (w *World) AddViewer(v Viewer) {
	w.viewersLock.Lock()
	defer w.viewersLock.Unlock()
	for _, v2 := range w.viewers {
		if v2 == v {
			panic("append an exist viewer")
		}
	}
	w.viewers = append(w.viewers, v)
}

// RemoveViewer видаляє спостерігача, порядок решти може змінитися.
// Повертає false якщо такого не було.
func (w *World) RemoveViewer(v Viewer) bool {
	w.viewersLock.Lock()
	defer w.viewersLock.Unlock()
	for i, v2 := range w.viewers {
		if v2 == v {
			last := len(w.viewers) - 1
			w.viewers[i] = w.viewers[last]
			w.viewers[last] = nil
			w.viewers = w.viewers[:last]
			return true
		}
	}
	return false
}

func (w *World) notifyViewers(r *TickReport) {
	w.viewersLock.Lock()
	defer w.viewersLock.Unlock()
	for _, v := range w.viewers {
		v.ViewTick(r)
	}
}
