package storage

import (
	"bufio"
	"context"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

const saveExt = ".sav"

var _ SaveStorage = (*BinaryStorage)(nil)

// BinaryStorage keeps saves as zstd compressed gob files in one directory,
// next to a JSON world_info file.
type BinaryStorage struct {
	basePath  string
	savesPath string
	worldInfo *WorldInfo

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
}

// NewBinaryStorage opens or creates the save directory for worldName.
func NewBinaryStorage(basePath string, worldName string, seed int64) (*BinaryStorage, error) {
	savesPath := filepath.Join(basePath, "saves")
	if err := os.MkdirAll(savesPath, 0o755); err != nil {
		return nil, fmt.Errorf("create save directory: %w", err)
	}

	s := &BinaryStorage{
		basePath:  basePath,
		savesPath: savesPath,
	}

	info, err := s.LoadWorld(context.Background())
	if err != nil {
		// Новая директория: создаем описание мира
		now := time.Now().Unix()
		info = &WorldInfo{
			Name:       worldName,
			Seed:       seed,
			Version:    fmt.Sprintf("rwsim-save-%d", SaveVersion),
			CreatedAt:  now,
			LastSaveAt: now,
			Properties: make(map[string]string),
		}
		if err := s.SaveWorld(context.Background(), info); err != nil {
			return nil, fmt.Errorf("write world info: %w", err)
		}
	}
	s.worldInfo = info
	return s, nil
}

// WorldInfo returns the description loaded or created on open.
func (s *BinaryStorage) WorldInfo() *WorldInfo {
	return s.worldInfo
}

func (s *BinaryStorage) savePath(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid save name %q", name)
	}
	return filepath.Join(s.savesPath, name+saveExt), nil
}

// SaveGame writes the snapshot through a temporary file so a crash never
// leaves a truncated save behind.
func (s *BinaryStorage) SaveGame(ctx context.Context, name string, save *SaveGame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("storage closed")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.savePath(name)
	if err != nil {
		return err
	}

	save.Version = SaveVersion
	save.SavedAt = time.Now().Unix()

	tmp := path + ".tmp"
	if err := writeSave(tmp, save); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write save %q: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("commit save %q: %w", name, err)
	}

	if s.worldInfo != nil {
		return s.saveWorldLocked(s.worldInfo)
	}
	return nil
}

func writeSave(path string, save *SaveGame) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(enc)
	if err := gob.NewEncoder(bw).Encode(save); err != nil {
		enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Sync()
}

// LoadGame reads a snapshot written by SaveGame.
func (s *BinaryStorage) LoadGame(ctx context.Context, name string) (*SaveGame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.savePath(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrSaveNotFound{Name: name}
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var save SaveGame
	if err := gob.NewDecoder(bufio.NewReader(dec)).Decode(&save); err != nil {
		return nil, fmt.Errorf("gob decode %q: %w", name, err)
	}
	if save.Version != SaveVersion {
		return nil, fmt.Errorf("save %q has version %d, want %d", name, save.Version, SaveVersion)
	}
	return &save, nil
}

// DeleteGame removes a snapshot.
func (s *BinaryStorage) DeleteGame(ctx context.Context, name string) error {
	path, err := s.savePath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); errors.Is(err, fs.ErrNotExist) {
		return ErrSaveNotFound{Name: name}
	} else if err != nil {
		return err
	}
	return nil
}

// ListGames returns snapshot names in lexical order.
func (s *BinaryStorage) ListGames(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.savesPath)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), saveExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), saveExt))
	}
	sort.Strings(names)
	return names, nil
}

// SaveWorld stores the world description.
func (s *BinaryStorage) SaveWorld(ctx context.Context, info *WorldInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveWorldLocked(info)
}

func (s *BinaryStorage) saveWorldLocked(info *WorldInfo) error {
	info.LastSaveAt = time.Now().Unix()
	return saveJSONFile(filepath.Join(s.basePath, "world_info.json"), info)
}

// LoadWorld reads the world description.
func (s *BinaryStorage) LoadWorld(ctx context.Context) (*WorldInfo, error) {
	var info WorldInfo
	if err := loadJSONFile(filepath.Join(s.basePath, "world_info.json"), &info); err != nil {
		return nil, fmt.Errorf("load world info: %w", err)
	}
	return &info, nil
}

// Close rejects further saves.
func (s *BinaryStorage) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
	})
	return nil
}

func saveJSONFile(path string, data any) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func loadJSONFile(path string, data any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, data)
}
