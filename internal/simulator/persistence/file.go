// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package persistence

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ffutop/rgbled/internal/simulator/model"
)

// FileStorage implements persistence using plain file operations.
// The whole state is rewritten and synced after every frame.
type FileStorage struct {
	path string
	file *os.File
	data []byte
}

// NewFileStorage creates a new FileStorage.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{
		path: path,
	}
}

// Load reads the state file, creating it if necessary.
func (fs *FileStorage) Load() (*model.State, error) {
	f, err := os.OpenFile(fs.path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	fs.file = f

	if err := ensureSize(f); err != nil {
		f.Close()
		fs.file = nil
		return nil, err
	}

	data, err := io.ReadAll(f)
	if err != nil {
		f.Close()
		fs.file = nil
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	fs.data = data

	return model.FromBytes(data), nil
}

// Save flushes the data to disk.
func (fs *FileStorage) Save(state *model.State) error {
	return fs.sync()
}

// OnWrite syncs the file so the state survives a crash of the run.
func (fs *FileStorage) OnWrite() {
	if err := fs.sync(); err != nil {
		slog.Error("Failed to sync file", "err", err)
	}
}

func (fs *FileStorage) sync() error {
	if fs.data == nil || fs.file == nil {
		return nil
	}
	if _, err := fs.file.WriteAt(fs.data, 0); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := fs.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync file to disk: %w", err)
	}
	return nil
}

// Close the file.
func (fs *FileStorage) Close() error {
	if fs.file == nil {
		return nil
	}
	err := fs.file.Close()
	fs.file = nil
	return err
}

// ensureSize grows or truncates f to the state layout size.
func ensureSize(f *os.File) error {
	fi, err := f.Stat()
	if err != nil {
		return err
	}
	if fi.Size() != int64(model.Size) {
		if err := f.Truncate(int64(model.Size)); err != nil {
			return fmt.Errorf("failed to resize file: %w", err)
		}
	}
	return nil
}
