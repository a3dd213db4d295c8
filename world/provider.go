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

// Йоу, чат! Тут все, що стосується файлів:
// сценарії лежать у YAML, щоб їх було зручно писати руками,
// а звіти тіків пишуться потоком msgpack-записів у gzip.

package world

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

// ErrScenarioNotExist повертається коли файлу сценарію немає
var ErrScenarioNotExist = errors.New("scenario not exist")

// ErrReachRateLimit повертається коли звіт пропущено через ліміт запису
var ErrReachRateLimit = errors.New("reach rate limit")

// ScenarioProvider читає та пише сценарії в директорії dir
type ScenarioProvider struct {
	dir string
}

// NewProvider створює провайдер сценаріїв
func NewProvider(dir string) ScenarioProvider {
	return ScenarioProvider{dir: dir}
}

func (p ScenarioProvider) path(name string) string {
	return filepath.Join(p.dir, name+".yaml")
}

// GetScenario завантажує сценарій за назвою (без .yaml)
func (p ScenarioProvider) GetScenario(name string) (*Scenario, error) {
	data, err := os.ReadFile(p.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrScenarioNotExist)
	} else if err != nil {
		return nil, fmt.Errorf("read scenario fail: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s fail: %w", name, err)
	}
	if s.Name == "" {
		s.Name = name
	}
	return &s, nil
}

// PutScenario зберігає сценарій, створюючи директорію за потреби
func (p ScenarioProvider) PutScenario(name string, s *Scenario) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode scenario fail: %w", err)
	}
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return fmt.Errorf("create scenario dir fail: %w", err)
	}
	if err := os.WriteFile(p.path(name), data, 0o644); err != nil {
		return fmt.Errorf("write scenario fail: %w", err)
	}
	return nil
}

// ReportHeader - перший запис у файлі звітів
type ReportHeader struct {
	RunID    uuid.UUID `msgpack:"run"`
	Scenario string    `msgpack:"scenario"`
	Started  time.Time `msgpack:"started"`
}

// ReportWriter пише звіти тіків у файл <dir>/<run id>.msgpack.gz
type ReportWriter struct {
	RunID   uuid.UUID
	f       *os.File
	gz      *gzip.Writer
	buf     *bufio.Writer
	enc     *msgpack.Encoder
	limiter *rate.Limiter

	Written, Skipped int
}

// NewReportWriter створює файл звітів і пише заголовок.
// limiter може бути nil - тоді пишемо кожен тік.
func NewReportWriter(dir, scenario string, limiter *rate.Limiter) (*ReportWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir fail: %w", err)
	}
	id := uuid.New()
	f, err := os.Create(filepath.Join(dir, id.String()+".msgpack.gz"))
	if err != nil {
		return nil, fmt.Errorf("create report file fail: %w", err)
	}
	w := &ReportWriter{RunID: id, f: f, limiter: limiter}
	w.gz = gzip.NewWriter(f)
	w.buf = bufio.NewWriter(w.gz)
	w.enc = msgpack.NewEncoder(w.buf)

	header := ReportHeader{RunID: id, Scenario: scenario, Started: time.Now()}
	if err := w.enc.Encode(&header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write report header fail: %w", err)
	}
	return w, nil
}

// Write пише звіт тіку або повертає ErrReachRateLimit
func (w *ReportWriter) Write(r *TickReport) error {
	if w.limiter != nil && !w.limiter.Allow() {
		w.Skipped++
		return ErrReachRateLimit
	}
	if err := w.enc.Encode(r); err != nil {
		return fmt.Errorf("write tick report fail: %w", err)
	}
	w.Written++
	return nil
}

// Path - шлях до файлу звітів
func (w *ReportWriter) Path() string { return w.f.Name() }

// Close дописує буфери і закриває файл
func (w *ReportWriter) Close() (errRet error) {
	defer func() {
		err := w.f.Close()
		if errRet == nil && err != nil {
			errRet = fmt.Errorf("close report file fail: %w", err)
		}
	}()
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("flush report fail: %w", err)
	}
	if err := w.gz.Close(); err != nil {
		return fmt.Errorf("close gzip writer fail: %w", err)
	}
	return nil
}

// ReadReports читає файл, записаний ReportWriter
func ReadReports(r io.Reader) (header ReportHeader, reports []TickReport, errRet error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return header, nil, fmt.Errorf("open gzip reader fail: %w", err)
	}
	defer func() {
		err := gz.Close()
		if errRet == nil && err != nil {
			errRet = fmt.Errorf("close gzip reader fail: %w", err)
		}
	}()

	dec := msgpack.NewDecoder(bufio.NewReader(gz))
	if err := dec.Decode(&header); err != nil {
		return header, nil, fmt.Errorf("read report header fail: %w", err)
	}
	for {
		var report TickReport
		err := dec.Decode(&report)
		if errors.Is(err, io.EOF) {
			return header, reports, nil
		} else if err != nil {
			return header, reports, fmt.Errorf("read tick report fail: %w", err)
		}
		reports = append(reports, report)
	}
}
