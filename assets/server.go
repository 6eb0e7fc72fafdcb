package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/milk9111/spatialaudio/audio"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

var ErrNotFound = errors.New("assets: not found")

const defaultMaxLoads = 4

type ServerConfig struct {
	// Root is a directory checked before FS, so files can be edited in
	// place while the demo runs.
	Root string
	// FS is the fallback tree. Defaults to the embedded assets.
	FS fs.FS
	// MaxLoads bounds concurrent decodes.
	MaxLoads int
}

// Server decodes sound files on background goroutines and publishes them
// into Sources.
type Server struct {
	Sources *Assets[*audio.Source]
	Pitches *Assets[*audio.Pitch]

	root string
	fsys fs.FS
	sem  *semaphore.Weighted

	mu   sync.Mutex
	errs map[uint64]error
	wg   sync.WaitGroup
}

func NewServer(cfg ServerConfig) *Server {
	if cfg.FS == nil {
		cfg.FS = FS()
	}
	if cfg.MaxLoads <= 0 {
		cfg.MaxLoads = defaultMaxLoads
	}
	return &Server{
		Sources: NewAssets[*audio.Source](),
		Pitches: NewAssets[*audio.Pitch](),
		root:    cfg.Root,
		fsys:    cfg.FS,
		sem:     semaphore.NewWeighted(int64(cfg.MaxLoads)),
		errs:    make(map[uint64]error),
	}
}

// Load returns a handle immediately and decodes the file in the background.
// Loading the same path twice returns the same handle.
func (s *Server) Load(path string) Handle[*audio.Source] {
	path = cleanAssetPath(path)
	h, fresh := s.Sources.Reserve(path)
	if !fresh {
		return h
	}
	s.startLoad(h)
	return h
}

// Lookup returns the handle path was loaded under, if any.
func (s *Server) Lookup(path string) (Handle[*audio.Source], bool) {
	return s.Sources.Lookup(cleanAssetPath(path))
}

// Reload decodes path again and replaces the stored source. Sinks already
// playing the old data are unaffected.
func (s *Server) Reload(path string) (Handle[*audio.Source], bool) {
	h, ok := s.Lookup(path)
	if !ok {
		return h, false
	}
	log.Debugf("Reloading %s", h)
	s.startLoad(h)
	return h, true
}

func (s *Server) startLoad(h Handle[*audio.Source]) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_ = s.sem.Acquire(context.Background(), 1)
		defer s.sem.Release(1)
		if err := s.loadNow(h); err != nil {
			log.Warnf("Failed to load %s: %v", h, err)
		}
	}()
}

func (s *Server) loadNow(h Handle[*audio.Source]) error {
	src, err := s.decode(h.Path)
	s.mu.Lock()
	if err != nil {
		s.errs[h.ID] = err
	} else {
		delete(s.errs, h.ID)
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.Sources.Insert(h, src)
	log.Debugf("Loaded %s (%v)", h, src.Duration())
	return nil
}

func (s *Server) decode(path string) (*audio.Source, error) {
	data, err := LoadFile(s.root, s.fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("assets: %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("assets: read %s: %w", path, err)
	}
	return audio.Decode(path, data)
}

// LoadAll decodes every path and waits for them, returning the first error.
// Handles are returned in the order given.
func (s *Server) LoadAll(ctx context.Context, paths ...string) ([]Handle[*audio.Source], error) {
	handles := make([]Handle[*audio.Source], len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		h, _ := s.Sources.Reserve(cleanAssetPath(p))
		handles[i] = h
		if s.Sources.IsReady(h) {
			continue
		}
		g.Go(func() error {
			if err := s.sem.Acquire(ctx, 1); err != nil {
				return err
			}
			defer s.sem.Release(1)
			return s.loadNow(h)
		})
	}
	if err := g.Wait(); err != nil {
		return handles, err
	}
	log.Infof("Loaded %d sounds", len(paths))
	return handles, nil
}

// AddPitch stores a synthesized tone; it is ready at once.
func (s *Server) AddPitch(p *audio.Pitch) Handle[*audio.Pitch] {
	return s.Pitches.Add(p)
}

// Err reports the last load failure for h, if any.
func (s *Server) Err(h Handle[*audio.Source]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errs[h.ID]
}

// Wait blocks until every background load has finished.
func (s *Server) Wait() {
	s.wg.Wait()
}
