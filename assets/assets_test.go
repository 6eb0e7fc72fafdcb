package assets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/milk9111/spatialaudio/audio"
)

func writeWAV(t *testing.T, path string, frames int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	enc := wav.NewEncoder(f, 8000, 16, 2, 1)
	data := make([]int, frames*2)
	for i := range data {
		data[i] = 1000
	}
	buf := &goaudio.IntBuffer{Format: &goaudio.Format{NumChannels: 2, SampleRate: 8000}, Data: data, SourceBitDepth: 16}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestAssetsReserveAndInsert(t *testing.T) {
	store := NewAssets[int]()
	h, fresh := store.Reserve("a")
	if !fresh || !h.Valid() {
		t.Fatalf("expected fresh valid handle, got %+v", h)
	}
	again, fresh := store.Reserve("a")
	if fresh || again != h {
		t.Fatalf("expected same handle, got %+v", again)
	}
	if store.IsReady(h) {
		t.Fatalf("reserved asset should not be ready")
	}
	store.Insert(h, 7)
	if v, ok := store.Get(h); !ok || v != 7 {
		t.Fatalf("Get = %v, %v", v, ok)
	}
	store.Remove(h)
	if store.IsReady(h) {
		t.Fatalf("removed asset still ready")
	}
	if _, ok := store.Lookup("a"); !ok {
		t.Fatalf("handle should stay reserved after Remove")
	}
}

func TestAssetsAddIsDistinct(t *testing.T) {
	store := NewAssets[string]()
	a := store.Add("x")
	b := store.Add("y")
	if a == b {
		t.Fatalf("in-memory assets share a handle")
	}
	if store.Len() != 2 {
		t.Fatalf("Len = %d", store.Len())
	}
}

func TestCleanAssetPath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "sounds/blip.wav", want: "sounds/blip.wav"},
		{in: "assets/sounds/blip.wav", want: "sounds/blip.wav"},
		{in: "/home/me/game/assets/sounds/blip.wav", want: "sounds/blip.wav"},
		{in: "/tmp/blip.wav", want: "blip.wav"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			if got := cleanAssetPath(tc.in); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestServerLoadFromDisk(t *testing.T) {
	root := t.TempDir()
	writeWAV(t, filepath.Join(root, "sounds", "tone.wav"), 800)

	s := NewServer(ServerConfig{Root: root, FS: fstest.MapFS{}})
	h := s.Load("sounds/tone.wav")
	if again := s.Load("assets/sounds/tone.wav"); again != h {
		t.Fatalf("same path returned a new handle")
	}
	s.Wait()

	src, ok := s.Sources.Get(h)
	if !ok {
		t.Fatalf("asset not ready: %v", s.Err(h))
	}
	if src.Duration() != 100*time.Millisecond {
		t.Fatalf("duration = %v", src.Duration())
	}
}

func TestServerMissingFile(t *testing.T) {
	s := NewServer(ServerConfig{Root: t.TempDir(), FS: fstest.MapFS{}})
	h := s.Load("sounds/missing.wav")
	s.Wait()
	if s.Sources.IsReady(h) {
		t.Fatalf("missing asset reported ready")
	}
	if err := s.Err(h); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServerUnknownFormat(t *testing.T) {
	fsys := fstest.MapFS{"sounds/notes.txt": {Data: []byte("hello")}}
	s := NewServer(ServerConfig{FS: fsys})
	_, err := s.LoadAll(context.Background(), "sounds/notes.txt")
	if !errors.Is(err, audio.ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestServerLoadAllAndReload(t *testing.T) {
	root := t.TempDir()
	writeWAV(t, filepath.Join(root, "a.wav"), 80)
	writeWAV(t, filepath.Join(root, "b.wav"), 160)

	s := NewServer(ServerConfig{Root: root, FS: fstest.MapFS{}, MaxLoads: 1})
	handles, err := s.LoadAll(context.Background(), "a.wav", "b.wav")
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	for i, want := range []int{80, 160} {
		src, ok := s.Sources.Get(handles[i])
		if !ok || src.Len() != want {
			t.Fatalf("handle %d: ready=%v", i, ok)
		}
	}

	writeWAV(t, filepath.Join(root, "a.wav"), 400)
	if _, ok := s.Reload("a.wav"); !ok {
		t.Fatalf("reload of known path failed")
	}
	s.Wait()
	if src, _ := s.Sources.Get(handles[0]); src.Len() != 400 {
		t.Fatalf("reload did not replace the source, len %d", src.Len())
	}
	if _, ok := s.Reload("unknown.wav"); ok {
		t.Fatalf("reload of unknown path should fail")
	}
}

func TestEmbeddedSounds(t *testing.T) {
	names, err := SoundFiles()
	if err != nil {
		t.Fatalf("SoundFiles: %v", err)
	}
	if len(names) == 0 {
		t.Fatalf("no embedded sounds")
	}
	s := NewServer(ServerConfig{})
	if _, err := s.LoadAll(context.Background(), names...); err != nil {
		t.Fatalf("decode embedded sounds: %v", err)
	}
}

func TestAddPitchIsReady(t *testing.T) {
	s := NewServer(ServerConfig{})
	h := s.AddPitch(audio.NewPitch(440, time.Second))
	if !s.Pitches.IsReady(h) {
		t.Fatalf("pitch not ready")
	}
}

func TestServerLookupCleansPath(t *testing.T) {
	s := NewServer(ServerConfig{FS: fstest.MapFS{}})
	h, _ := s.Sources.Reserve("sounds/a.wav")
	for _, path := range []string{"sounds/a.wav", "assets/sounds/a.wav"} {
		got, ok := s.Lookup(path)
		if !ok || got.ID != h.ID {
			t.Fatalf("Lookup(%q) = %v, %v", path, got, ok)
		}
	}
	if _, ok := s.Lookup("sounds/b.wav"); ok {
		t.Fatalf("unknown path found")
	}
}
