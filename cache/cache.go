// Package cache keeps remote LMP feature pages between connections.
package cache

import (
	"io/ioutil"
	"os"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/rigado/bthost"
)

// ErrNotFound is returned by Load for unknown devices.
var ErrNotFound = errors.New("device not found in cache")

type featureCache struct {
	filename string
	lock     sync.RWMutex
}

// New returns a FeatureCache persisted as JSON in filename.
func New(filename string) bthost.FeatureCache {
	return &featureCache{filename: filename}
}

func (fc *featureCache) Store(addr bthost.BDAddr, f bthost.FeaturePages) error {
	fc.lock.Lock()
	defer fc.lock.Unlock()

	cache, err := fc.loadExisting()
	if err != nil {
		return err
	}

	cache[addr.String()] = f
	return fc.storeCache(cache)
}

func (fc *featureCache) Load(addr bthost.BDAddr) (bthost.FeaturePages, error) {
	fc.lock.RLock()
	defer fc.lock.RUnlock()

	cache, err := fc.loadExisting()
	if err != nil {
		return bthost.FeaturePages{}, err
	}

	f, ok := cache[addr.String()]
	if !ok {
		return bthost.FeaturePages{}, errors.Wrapf(ErrNotFound, "%s", addr)
	}
	return f, nil
}

func (fc *featureCache) Clear() error {
	fc.lock.Lock()
	defer fc.lock.Unlock()

	err := os.Remove(fc.filename)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (fc *featureCache) loadExisting() (map[string]bthost.FeaturePages, error) {
	_, err := os.Stat(fc.filename)
	if os.IsNotExist(err) {
		return map[string]bthost.FeaturePages{}, nil
	}

	in, err := ioutil.ReadFile(fc.filename)
	if err != nil {
		return nil, errors.Wrap(err, "read feature cache")
	}

	var cache map[string]bthost.FeaturePages
	if err := jsoniter.Unmarshal(in, &cache); err != nil {
		return nil, errors.Wrap(err, "decode feature cache")
	}
	if cache == nil {
		cache = map[string]bthost.FeaturePages{}
	}
	return cache, nil
}

func (fc *featureCache) storeCache(cache map[string]bthost.FeaturePages) error {
	out, err := jsoniter.Marshal(cache)
	if err != nil {
		return err
	}

	return ioutil.WriteFile(fc.filename, out, 0644)
}

// memCache is the default, process lifetime cache.
type memCache struct {
	lock sync.RWMutex
	m    map[bthost.BDAddr]bthost.FeaturePages
}

// NewMemory returns a FeatureCache that only lives in memory.
func NewMemory() bthost.FeatureCache {
	return &memCache{m: map[bthost.BDAddr]bthost.FeaturePages{}}
}

func (mc *memCache) Store(addr bthost.BDAddr, f bthost.FeaturePages) error {
	mc.lock.Lock()
	defer mc.lock.Unlock()
	mc.m[addr] = f
	return nil
}

func (mc *memCache) Load(addr bthost.BDAddr) (bthost.FeaturePages, error) {
	mc.lock.RLock()
	defer mc.lock.RUnlock()
	f, ok := mc.m[addr]
	if !ok {
		return bthost.FeaturePages{}, errors.Wrapf(ErrNotFound, "%s", addr)
	}
	return f, nil
}

func (mc *memCache) Clear() error {
	mc.lock.Lock()
	defer mc.lock.Unlock()
	mc.m = map[bthost.BDAddr]bthost.FeaturePages{}
	return nil
}
