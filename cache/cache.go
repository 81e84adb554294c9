package cache

import (
	"fmt"
	"os"
	"sync"

	"github.com/cespare/xxhash"
	"github.com/rs/zerolog/log"

	"github.com/domino14/blockfish/config"
	"github.com/domino14/blockfish/ruleset"
	"github.com/domino14/blockfish/shapetable"
)

// The cache holds large read-only objects that are expensive to build and
// safe to share, so that a long-running process (the bot, a Lua host) only
// builds each shape table once.

type cache struct {
	sync.Mutex
	objects map[string]interface{}
}

type loadFunc func(cfg *config.Config, key string) (interface{}, error)

// GlobalObjectCache is the process-wide cache.
var GlobalObjectCache *cache

func (c *cache) get(cfg *config.Config, key string, loadFunc loadFunc) (interface{}, error) {
	c.Lock()
	defer c.Unlock()
	if obj, ok := c.objects[key]; ok {
		log.Debug().Str("key", key).Msg("cache-hit")
		return obj, nil
	}
	log.Debug().Str("key", key).Msg("cache-load")
	obj, err := loadFunc(cfg, key)
	if err != nil {
		return nil, err
	}
	c.objects[key] = obj
	return obj, nil
}

func CreateGlobalObjectCache() {
	GlobalObjectCache = &cache{objects: make(map[string]interface{})}
}

// Load returns the object cached under key, calling loadFunc to create it
// on first use. Failed loads are not cached.
func Load(cfg *config.Config, key string, loadFunc loadFunc) (interface{}, error) {
	if GlobalObjectCache == nil {
		CreateGlobalObjectCache()
	}
	return GlobalObjectCache.get(cfg, key, loadFunc)
}

// ShapeTable returns the shape table the config asks for: a precompiled
// table from shapetable-path, else one built from ruleset-path, else the
// built-in guideline table. File-backed entries are keyed by a hash of the
// file contents, so an edited file is loaded afresh.
func ShapeTable(cfg *config.Config) (*shapetable.ShapeTable, error) {
	var key string
	var load loadFunc
	switch {
	case cfg.GetString(config.ConfigShapetablePath) != "":
		path := cfg.GetString(config.ConfigShapetablePath)
		sum, err := fileSum(path)
		if err != nil {
			return nil, err
		}
		key = fmt.Sprintf("shapetable:%s:%x", path, sum)
		load = func(*config.Config, string) (interface{}, error) {
			return shapetable.Open(path)
		}
	case cfg.GetString(config.ConfigRulesetPath) != "":
		path := cfg.GetString(config.ConfigRulesetPath)
		sum, err := fileSum(path)
		if err != nil {
			return nil, err
		}
		key = fmt.Sprintf("ruleset:%s:%x", path, sum)
		load = func(*config.Config, string) (interface{}, error) {
			rs, err := ruleset.Load(path)
			if err != nil {
				return nil, err
			}
			return shapetable.Build(rs)
		}
	default:
		key = "ruleset:guideline"
		load = func(*config.Config, string) (interface{}, error) {
			return shapetable.Build(ruleset.Guideline())
		}
	}
	obj, err := Load(cfg, key, load)
	if err != nil {
		return nil, err
	}
	return obj.(*shapetable.ShapeTable), nil
}

func fileSum(path string) (uint64, error) {
	bts, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(bts), nil
}
