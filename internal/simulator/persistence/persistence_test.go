// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ffutop/rgbled/internal/simulator/model"
	"github.com/ffutop/rgbled/protocol/frame"
)

func TestStorage_Reopen(t *testing.T) {
	tests := []struct {
		name string
		open func(path string) Storage
	}{
		{"File", func(path string) Storage { return NewFileStorage(path) }},
		{"Mmap", func(path string) Storage { return NewMmapStorage(path) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "state.bin")

			st := tt.open(path)
			state, err := st.Load()
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			state.Select(frame.LED17)
			state.SetColor(frame.Color{R: 128, G: 128, B: 128})
			st.OnWrite()
			if err := st.Save(state); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			if err := st.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}

			fi, err := os.Stat(path)
			if err != nil {
				t.Fatal(err)
			}
			if fi.Size() != model.Size {
				t.Errorf("file size = %d, want %d", fi.Size(), model.Size)
			}

			st = tt.open(path)
			state, err = st.Load()
			if err != nil {
				t.Fatalf("reload failed: %v", err)
			}
			defer st.Close()

			if state.Selected() != frame.LED17 {
				t.Errorf("Selected() = %d, want 17", state.Selected())
			}
			if c, _ := state.Color(frame.LED17); c != (frame.Color{R: 128, G: 128, B: 128}) {
				t.Errorf("LED17 = %+v, want gray", c)
			}
			if state.Frames() != 2 {
				t.Errorf("Frames() = %d, want 2", state.Frames())
			}
		})
	}
}

func TestMemoryStorage(t *testing.T) {
	ms := NewMemoryStorage()
	state, err := ms.Load()
	if err != nil {
		t.Fatal(err)
	}
	state.Select(frame.LED16)
	ms.OnWrite()

	fresh, _ := ms.Load()
	if fresh.Selected() != frame.NoLED {
		t.Error("MemoryStorage must not persist across loads")
	}
}

func TestFileStorage_BadPath(t *testing.T) {
	st := NewFileStorage(filepath.Join(t.TempDir(), "missing-dir", "state.bin"))
	if _, err := st.Load(); err == nil {
		t.Error("expected error for unreachable path")
	}
	if err := st.Close(); err != nil {
		t.Errorf("Close after failed Load: %v", err)
	}
}
