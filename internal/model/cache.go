package model

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// scoreCache persists per-text score vectors keyed by model and text. The
// explainers query thousands of perturbed sentences; identical perturbations
// across methods and reruns hit the cache instead of the model.
type scoreCache struct {
	mu      sync.RWMutex
	m       map[string][]float32
	dir     string
	modelID string
}

func newScoreCache(dir, modelID string) (*scoreCache, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	return &scoreCache{m: make(map[string][]float32), dir: dir, modelID: modelID}, nil
}

func (c *scoreCache) get(text string) ([]float32, bool) {
	key := cacheKey(text, c.modelID)
	c.mu.RLock()
	vec, ok := c.m[key]
	c.mu.RUnlock()
	if ok {
		return cloneScores(vec), true
	}
	vec, ok, err := c.load(key)
	if err != nil || !ok {
		return nil, false
	}
	c.mu.Lock()
	c.m[key] = vec
	c.mu.Unlock()
	return cloneScores(vec), true
}

func (c *scoreCache) put(text string, vec []float32) {
	key := cacheKey(text, c.modelID)
	c.mu.Lock()
	c.m[key] = cloneScores(vec)
	c.mu.Unlock()
	_ = c.save(key, vec)
}

func (c *scoreCache) load(key string) ([]float32, bool, error) {
	if c.dir == "" {
		return nil, false, nil
	}
	path := filepath.Join(c.dir, key+".bin")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if len(data) < 4 {
		return nil, false, fmt.Errorf("cache file broken: %s", path)
	}
	length := binary.LittleEndian.Uint32(data[:4])
	need := int(length) * 4
	if len(data) < 4+need {
		return nil, false, fmt.Errorf("cache truncated: %s", path)
	}
	vec := make([]float32, int(length))
	if err := binary.Read(bytes.NewReader(data[4:4+need]), binary.LittleEndian, vec); err != nil {
		return nil, false, err
	}
	return vec, true, nil
}

func (c *scoreCache) save(key string, vec []float32) error {
	if c.dir == "" {
		return nil
	}
	path := filepath.Join(c.dir, key+".bin")
	buf := &bytes.Buffer{}
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(vec)))
	if err := binary.Write(buf, binary.LittleEndian, vec); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func cacheKey(text, model string) string {
	h := sha1.Sum([]byte(model + "|" + text))
	return hex.EncodeToString(h[:])
}

func cloneScores(vec []float32) []float32 {
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}
