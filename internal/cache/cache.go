// Package cache provides disk caching of preloaded audio for gapless playback.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultExpiry is how long cached audio is valid (24 hours). Stream
	// urls themselves expire far sooner, but the bytes behind them do not.
	DefaultExpiry = 24 * time.Hour
	// AudioSubdir is the subdirectory for preloaded audio.
	AudioSubdir = "preload"
	// AppName is used for the cache directory name.
	AppName = "streamify"
)

// Cache manages disk-based caching of fetched audio, keyed by stream URL.
type Cache struct {
	baseDir string
	expiry  time.Duration
}

// NewCache creates a new Cache instance with the default expiry.
func NewCache() (*Cache, error) {
	cacheDir, err := GetCacheDir()
	if err != nil {
		return nil, err
	}

	return &Cache{
		baseDir: cacheDir,
		expiry:  DefaultExpiry,
	}, nil
}

// GetCacheDir returns the platform-specific cache directory for the application.
func GetCacheDir() (string, error) {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user cache directory: %w", err)
	}

	cacheDir := filepath.Join(userCacheDir, AppName)
	return cacheDir, nil
}

func (c *Cache) ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

func hashURL(url string) string {
	hash := md5.Sum([]byte(url))
	return hex.EncodeToString(hash[:])
}

// GetAudio retrieves cached audio bytes by URL. Returns nil if not found
// or expired.
func (c *Cache) GetAudio(url string) []byte {
	audioDir := filepath.Join(c.baseDir, AudioSubdir)
	filename := hashURL(url) + ".mp3"
	audioPath := filepath.Join(audioDir, filename)

	info, err := os.Stat(audioPath)
	if err != nil {
		return nil
	}

	if time.Since(info.ModTime()) > c.expiry {
		if err := os.Remove(audioPath); err != nil {
			log.Debug().Err(err).Str("file", audioPath).Msg("Failed to remove expired cache file")
		}
		return nil
	}

	data, err := os.ReadFile(audioPath)
	if err != nil {
		log.Debug().Err(err).Str("file", audioPath).Msg("Failed to read cached audio")
		return nil
	}

	return data
}

// SaveAudio stores fetched audio in the cache, keyed by its stream URL.
func (c *Cache) SaveAudio(url string, data []byte) error {
	audioDir := filepath.Join(c.baseDir, AudioSubdir)

	if err := c.ensureDir(audioDir); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	filename := hashURL(url) + ".mp3"
	audioPath := filepath.Join(audioDir, filename)

	if err := os.WriteFile(audioPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

// CleanExpired removes cache files older than the expiry duration.
func (c *Cache) CleanExpired() error {
	audioDir := filepath.Join(c.baseDir, AudioSubdir)

	entries, err := os.ReadDir(audioDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	now := time.Now()
	var removed, failed int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			log.Debug().Err(err).Str("file", entry.Name()).Msg("Failed to get file info")
			continue
		}

		if now.Sub(info.ModTime()) > c.expiry {
			filePath := filepath.Join(audioDir, entry.Name())
			if err := os.Remove(filePath); err != nil {
				log.Debug().Err(err).Str("file", filePath).Msg("Failed to remove expired cache file")
				failed++
			} else {
				removed++
			}
		}
	}

	if removed > 0 || failed > 0 {
		log.Debug().Int("removed", removed).Int("failed", failed).Msg("Cache cleanup completed")
	}

	return nil
}
