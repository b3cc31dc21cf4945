package usage

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ritzau/codewarn/pkg/logging"
	"github.com/ritzau/codewarn/pkg/model"
	"github.com/ritzau/codewarn/pkg/reexport"
	"github.com/ritzau/codewarn/pkg/resolve"
)

var log = logging.New("usage")

// Scanner finds imports in files the structural parser does not cover.
// A scanner skips files it cannot parse; an error means the whole scan
// could not run.
type Scanner interface {
	Name() string
	Scan(ctx context.Context, projectRoot string, resolver *resolve.Resolver) (Index, error)
}

// Collector merges structural imports and ancillary scans into one Index.
type Collector struct {
	resolver  *resolve.Resolver
	reexports *reexport.Maps
	scanners  []Scanner
}

// NewCollector creates a collector. Scanners may be empty.
func NewCollector(resolver *resolve.Resolver, reexports *reexport.Maps, scanners ...Scanner) *Collector {
	return &Collector{
		resolver:  resolver,
		reexports: reexports,
		scanners:  scanners,
	}
}

// CollectStructural records every import item of the parsed files under its
// resolved source and credits names through barrels, one hop per entry.
func (c *Collector) CollectStructural(files []*model.FileNode) Index {
	idx := make(Index)
	for _, file := range files {
		for _, imp := range file.Imports {
			source, _ := c.resolver.Resolve(imp.Source, file.FilePath)
			for _, item := range imp.Items {
				c.record(idx, source, item.UsedName())
			}
		}
	}
	return idx
}

func (c *Collector) record(idx Index, source, name string) {
	idx.Add(source, name)
	if c.reexports == nil {
		return
	}

	if name == Namespace {
		// The whole barrel is used, and with it everything it re-exports
		for _, entry := range c.reexports.NamedEntries(source) {
			idx.Add(entry.Source, entry.OriginalName)
		}
	} else if entry, ok := c.reexports.Lookup(source, name); ok {
		idx.Add(entry.Source, entry.OriginalName)
	}

	for _, star := range c.reexports.StarSources(source) {
		idx.Add(star, name)
	}
}

// Collect runs pass 1 over files and every scanner concurrently, then merges
// the results, crediting scanned barrel imports like structural ones. A
// failing scanner is logged and contributes nothing.
func (c *Collector) Collect(ctx context.Context, projectRoot string, files []*model.FileNode) Index {
	idx := c.CollectStructural(files)

	var mu sync.Mutex
	var g errgroup.Group
	for _, scanner := range c.scanners {
		scanner := scanner
		g.Go(func() error {
			found, err := runScanner(ctx, scanner, projectRoot, c.resolver)
			if err != nil {
				log.WarnContext(ctx, "ancillary scan failed", "scanner", scanner.Name(), "error", err)
				return nil
			}

			log.DebugContext(ctx, "ancillary scan finished", "scanner", scanner.Name(), "modules", len(found))
			mu.Lock()
			for module, names := range found {
				for name := range names {
					c.record(idx, module, name)
				}
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return idx
}

func runScanner(ctx context.Context, scanner Scanner, projectRoot string, resolver *resolve.Resolver) (found Index, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scanner %s panicked: %v", scanner.Name(), r)
		}
	}()
	return scanner.Scan(ctx, projectRoot, resolver)
}
