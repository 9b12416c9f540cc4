package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// CacheConfig describes one level of L1 cache attached to this pipeline
// as an optional timing extension.
type CacheConfig struct {
	Size          int    `json:"size"`
	Associativity int    `json:"associativity"`
	BlockSize     int    `json:"block_size"`
	HitLatency    uint64 `json:"hit_latency"`
	MissLatency   uint64 `json:"miss_latency"`
}

// DefaultICacheConfig is a small L1 instruction cache.
func DefaultICacheConfig() CacheConfig {
	return CacheConfig{Size: 32 * 1024, Associativity: 4, BlockSize: 64, HitLatency: 1, MissLatency: 8}
}

// DefaultDCacheConfig is a small L1 data cache.
func DefaultDCacheConfig() CacheConfig {
	return CacheConfig{Size: 32 * 1024, Associativity: 8, BlockSize: 64, HitLatency: 1, MissLatency: 8}
}

// CacheFileConfig is the on-disk shape of -cache-config.
type CacheFileConfig struct {
	ICache CacheConfig `json:"icache"`
	DCache CacheConfig `json:"dcache"`
}

// LoadCacheConfig loads a CacheFileConfig from a JSON file, defaulting
// any field the file omits.
func LoadCacheConfig(path string) (*CacheFileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache config file: %w", err)
	}

	cfg := &CacheFileConfig{ICache: DefaultICacheConfig(), DCache: DefaultDCacheConfig()}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse cache config: %w", err)
	}
	return cfg, nil
}

// cacheExtension wraps an Akita cache directory over the simulator's own
// memory. It is purely an accounting side-channel: every access still
// goes through isa.Memory directly, so enabling a cache never changes a
// single retired value, only the MemStallCycles counter in Statistics.
type cacheExtension struct {
	config    CacheConfig
	directory *akitacache.DirectoryImpl
	hits      uint64
	misses    uint64
}

func newCacheExtension(cfg CacheConfig) *cacheExtension {
	numSets := cfg.Size / (cfg.Associativity * cfg.BlockSize)
	if numSets < 1 {
		numSets = 1
	}
	return &cacheExtension{
		config: cfg,
		directory: akitacache.NewDirectory(
			numSets,
			cfg.Associativity,
			cfg.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
	}
}

// probe looks up addr, installing it as the new resident block on a miss,
// and returns the latency this access would have taken.
func (c *cacheExtension) probe(addr uint64) uint64 {
	blockAddr := (addr / uint64(c.config.BlockSize)) * uint64(c.config.BlockSize)

	block := c.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		c.hits++
		c.directory.Visit(block)
		return c.config.HitLatency
	}

	c.misses++
	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		return c.config.MissLatency
	}
	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = false
	c.directory.Visit(victim)
	return c.config.MissLatency
}

// WithICache attaches an L1 instruction cache. Disabled by default;
// enabling it only feeds Statistics.MemStallCycles, leaving retirement
// order and every architectural value untouched.
func WithICache(cfg CacheConfig) Option {
	return func(s *Simulator) {
		s.icache = newCacheExtension(cfg)
	}
}

// WithDCache attaches an L1 data cache, same accounting-only semantics as
// WithICache.
func WithDCache(cfg CacheConfig) Option {
	return func(s *Simulator) {
		s.dcache = newCacheExtension(cfg)
	}
}

// accountFetch records an instruction-cache probe for the byte fetched at
// pc, if an icache is attached.
func (s *Simulator) accountFetch(pc uint64) {
	if s.icache == nil {
		return
	}
	lat := s.icache.probe(pc)
	if lat > s.icache.config.HitLatency {
		s.Stats.MemStallCycles += lat - s.icache.config.HitLatency
	}
}

// accountDataAccess records a data-cache probe for a load or store at
// addr, if a dcache is attached.
func (s *Simulator) accountDataAccess(addr uint64) {
	if s.dcache == nil {
		return
	}
	lat := s.dcache.probe(addr)
	if lat > s.dcache.config.HitLatency {
		s.Stats.MemStallCycles += lat - s.dcache.config.HitLatency
	}
}
