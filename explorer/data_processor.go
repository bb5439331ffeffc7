package explorer

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	explorerlib "github.com/coexnet/coexnet/lib/explorer"
	"github.com/coexnet/coexnet/lib/graph"
)

const (
	NETWORK_CACHE_SIZE = 10
)

// NetworkExplorer watches a results directory and serves the most
// recent networks over the REST api.
type NetworkExplorer struct {
	FilenameBase string

	networkCache []*NetworkEntry
	cacheLock    sync.RWMutex

	maxAgeSeconds int
	ticker        *time.Ticker
}

// Initialize scans the results directory once so the api has data
// right away, then keeps rescanning in the background.
func (c *NetworkExplorer) Initialize(maxAgeSeconds int) error {
	c.maxAgeSeconds = maxAgeSeconds
	c.networkCache = make([]*NetworkEntry, 0, NETWORK_CACHE_SIZE)
	c.ticker = time.NewTicker(60 * time.Second)

	go func() {
		for range c.ticker.C {
			if err := c.scanResultFiles(); err != nil {
				log.Printf("results directory scan failed: %v\n", err)
			}
		}
	}()
	return c.scanResultFiles()
}

func (c *NetworkExplorer) scanResultFiles() error {
	entries, err := os.ReadDir(c.FilenameBase)
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool {
		t1, _ := entries[i].Info()
		t2, _ := entries[j].Info()
		return t1.ModTime().Unix() > t2.ModTime().Unix()
	})
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		parsed, err := parseNetworkFromFilename(e.Name())
		if err != nil {
			// Not a graphml artifact.
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if c.deleteWhenExpired(e.Name(), info.ModTime()) {
			continue
		}
		if c.lookupFilename(e.Name()) != nil {
			continue
		}
		c.loadGraphml(parsed)
	}

	// Recovery: a network whose graphml artifact is gone can still be
	// served from its parquet dump.
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), "_network.pq") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), "_network.pq")
		info, err := e.Info()
		if err != nil {
			continue
		}
		if c.deleteWhenExpired(e.Name(), info.ModTime()) {
			continue
		}
		if c.lookupName(name) != nil {
			continue
		}
		c.loadParquet(name, e.Name(), info.ModTime())
	}
	return nil
}

func (c *NetworkExplorer) loadGraphml(entry *NetworkEntry) {
	artifact, err := graph.ReadGraphMLFile(filepath.Join(c.FilenameBase, entry.Filename))
	if err != nil {
		log.Printf("failed to read network file %s: %v\n", entry.Filename, err)
		entry.Status = NetworkError
		c.addCacheEntry(entry)
		return
	}
	entry.artifact = artifact
	entry.Status = NetworkLoaded
	entry.Vertices = artifact.VertexCount()
	entry.Edges = artifact.EdgeCount()
	entry.Modules = countModules(artifact)
	c.addCacheEntry(entry)
	log.Printf("loaded network %s with %d vertices and %d edges\n",
		entry.Name, entry.Vertices, entry.Edges)
}

func (c *NetworkExplorer) loadParquet(name string, filename string, modTime time.Time) {
	parquetExplorer := explorerlib.NewParquetExplorer(c.FilenameBase)
	if err := parquetExplorer.Initialize(filename); err != nil {
		log.Printf("failed to open network dump %s: %v\n", filename, err)
		return
	}
	artifact, err := parquetExplorer.ReadArtifact(name)
	if err != nil {
		log.Printf("failed to recover network %s from %s: %v\n", name, filename, err)
		return
	}
	entry := &NetworkEntry{
		Name:            name,
		Timestamp:       modTime.UTC().Unix(),
		TimestampString: modTime.UTC().Format(explorerlib.FORMAT),
		Filename:        filename,
		Status:          NetworkLoaded,
		Vertices:        artifact.VertexCount(),
		Edges:           artifact.EdgeCount(),
		Modules:         countModules(artifact),
		artifact:        artifact,
	}
	c.addCacheEntry(entry)
	log.Printf("recovered network %s from its parquet dump\n", name)
}

func countModules(artifact *graph.Artifact) int {
	seen := make(map[int]bool)
	for _, v := range artifact.Vertices() {
		if v.Module >= 0 {
			seen[v.Module] = true
		}
	}
	return len(seen)
}

// parseNetworkFromFilename splits "<name>_<stamp>.graphml". Network
// names may themselves contain underscores, the stamp starts after the
// last one.
func parseNetworkFromFilename(filename string) (*NetworkEntry, error) {
	if !strings.HasSuffix(filename, ".graphml") {
		return nil, fmt.Errorf("%s is not a graphml artifact", filename)
	}
	base := strings.TrimSuffix(filename, ".graphml")
	cut := strings.LastIndex(base, "_")
	if cut < 1 {
		return nil, fmt.Errorf("no timestamp in filename %s", filename)
	}
	stamp, err := explorerlib.ParseStamp(base[cut+1:])
	if err != nil {
		return nil, err
	}
	return &NetworkEntry{
		Name:            base[:cut],
		Timestamp:       stamp.Unix(),
		TimestampString: stamp.Format(explorerlib.FORMAT),
		Filename:        filename,
		Status:          NetworkExists,
	}, nil
}

func (c *NetworkExplorer) deleteWhenExpired(filename string, modTime time.Time) bool {
	if c.maxAgeSeconds <= 0 {
		return false
	}
	age := int(time.Now().UTC().Unix() - modTime.UTC().Unix())
	if age <= c.maxAgeSeconds {
		return false
	}
	fullPath := filepath.Join(c.FilenameBase, filename)
	log.Printf("artifact %s is %d seconds old, removing it\n", fullPath, age)
	if err := os.Remove(fullPath); err != nil {
		log.Printf("failed to remove %s: %v\n", fullPath, err)
	}
	c.evictFilename(filename)
	return true
}

func (c *NetworkExplorer) evictFilename(filename string) {
	c.cacheLock.Lock()
	defer c.cacheLock.Unlock()
	for _, entry := range c.networkCache {
		if entry.Filename == filename {
			entry.Status = NetworkDeleted
			entry.artifact = nil
		}
	}
}

func (c *NetworkExplorer) addCacheEntry(entry *NetworkEntry) {
	c.cacheLock.Lock()
	defer c.cacheLock.Unlock()
	c.networkCache = append(c.networkCache, entry)
	sort.SliceStable(c.networkCache, func(i, j int) bool {
		return c.networkCache[i].Timestamp > c.networkCache[j].Timestamp
	})
	if len(c.networkCache) > NETWORK_CACHE_SIZE {
		c.networkCache = c.networkCache[:NETWORK_CACHE_SIZE]
	}
}

func (c *NetworkExplorer) lookupFilename(filename string) *NetworkEntry {
	c.cacheLock.RLock()
	defer c.cacheLock.RUnlock()
	for _, entry := range c.networkCache {
		if entry.Filename == filename {
			return entry
		}
	}
	return nil
}

func (c *NetworkExplorer) lookupName(name string) *NetworkEntry {
	c.cacheLock.RLock()
	defer c.cacheLock.RUnlock()
	for _, entry := range c.networkCache {
		if entry.Name == name {
			return entry
		}
	}
	return nil
}
