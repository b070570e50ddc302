package infrastructure

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"chatfuse/internal/entities"
	"go.uber.org/zap"
)

// DefaultRetention is how long a staged media file lives before deletion,
// whether or not anyone fetched it.
const DefaultRetention = 2 * time.Hour

var dataURIPrefix = regexp.MustCompile(`^data:.*?;base64,`)

// MediaStore decodes inline base64 payloads from provider webhooks into a temp
// directory and serves them back by name. Each staged file registers a
// cancellable expiry timer; a periodic sweep catches files staged before a
// restart.
type MediaStore struct {
	dir       string
	retention time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewMediaStore(dir string, retention time.Duration) (*MediaStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &MediaStore{
		dir:       dir,
		retention: retention,
		timers:    make(map[string]*time.Timer),
	}, nil
}

// Stage writes the base64 payload to a uniquely named file and schedules its
// deletion. Returns the file name to embed in the relay envelope.
func (s *MediaStore) Stage(base64Data, remoteJid, messageType, originalName string) (string, error) {
	fileName := stagedFileName(remoteJid, messageType, originalName, time.Now().UnixMilli())

	content := dataURIPrefix.ReplaceAllString(base64Data, "")
	data, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return "", fmt.Errorf("decode base64 payload: %w", err)
	}

	path := filepath.Join(s.dir, fileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write staged file: %w", err)
	}

	s.scheduleExpiry(fileName)
	return fileName, nil
}

func (s *MediaStore) scheduleExpiry(fileName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[fileName]; ok {
		t.Stop()
	}
	s.timers[fileName] = time.AfterFunc(s.retention, func() {
		s.remove(fileName)
	})
}

func (s *MediaStore) remove(fileName string) {
	s.mu.Lock()
	delete(s.timers, fileName)
	s.mu.Unlock()

	if err := os.Remove(filepath.Join(s.dir, fileName)); err != nil && !os.IsNotExist(err) {
		zap.S().Errorf("remove staged file %s: %v", fileName, err)
	} else {
		zap.S().Debugf("staged file removed: %s", fileName)
	}
}

// Path resolves a staged file name to its on-disk path. Names are flattened to
// their base so callers cannot escape the temp directory.
func (s *MediaStore) Path(fileName string) (string, error) {
	path := filepath.Join(s.dir, filepath.Base(fileName))
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}

// Sweep deletes staged files older than the retention window. Covers files
// whose timers died with a previous process.
func (s *MediaStore) Sweep() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		zap.S().Errorf("sweep temp dir: %v", err)
		return
	}

	cutoff := time.Now().Add(-s.retention)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			s.mu.Lock()
			if t, ok := s.timers[entry.Name()]; ok {
				t.Stop()
				delete(s.timers, entry.Name())
			}
			s.mu.Unlock()
			if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
				zap.S().Errorf("sweep remove %s: %v", entry.Name(), err)
			}
		}
	}
}

// Close stops all pending expiry timers without deleting files.
func (s *MediaStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, t := range s.timers {
		t.Stop()
		delete(s.timers, name)
	}
}

func stagedFileName(remoteJid, messageType, originalName string, timestamp int64) string {
	sender := remoteJid
	if idx := strings.Index(sender, "@"); idx >= 0 {
		sender = sender[:idx]
	}

	switch messageType {
	case entities.TypeImage:
		return fmt.Sprintf("%d_%s.jpg", timestamp, sender)
	case entities.TypeVideo:
		return fmt.Sprintf("%d_%s.mp4", timestamp, sender)
	case entities.TypeAudio:
		return fmt.Sprintf("%d_%s.ogg", timestamp, sender)
	case entities.TypeDocument:
		if originalName != "" {
			ext := filepath.Ext(originalName)
			if ext == "" {
				ext = ".bin"
			}
			base := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
			return fmt.Sprintf("%s-%d-%s%s", base, timestamp, sender, ext)
		}
		return fmt.Sprintf("documento-%d-%s.bin", timestamp, sender)
	default:
		return fmt.Sprintf("%d_%s.bin", timestamp, sender)
	}
}
