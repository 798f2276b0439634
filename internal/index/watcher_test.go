package index

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bamboovfx/obsidian-image-manager/internal/storage"
)

// watcherTestEnv sets up a vault dir, storage, and DB for watcher tests.
func watcherTestEnv(t *testing.T) (string, storage.Provider, *DB) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	dbFile, err := os.CreateTemp("", "imgmgr-watcher-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })
	db, err := Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return vaultDir, store, db
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatcher_NewNoteIndexedWithEmbeds(t *testing.T) {
	vaultDir, store, db := watcherTestEnv(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string

	go Watch(ctx, db, store, vaultDir, logger, func(kind, path string) {
		mu.Lock()
		events = append(events, kind+":"+path)
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(vaultDir, "new.md"), []byte("# New\n![[cat.png]]"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("new.md")
		return cs != ""
	}, "new note not indexed by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		refs, _ := db.ReferencingNotes("cat.png")
		return len(refs) == 1 && refs[0] == "new.md"
	}, "embed link not indexed by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "created:new.md" {
				return true
			}
		}
		return false
	}, "created event not observed")
}

func TestWatcher_RemovedNoteDeleted(t *testing.T) {
	vaultDir, store, db := watcherTestEnv(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	_ = os.WriteFile(filepath.Join(vaultDir, "gone.md"), []byte("# Gone"), 0o644)
	if err := Sync(db, store, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, db, store, vaultDir, logger, nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Remove(filepath.Join(vaultDir, "gone.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		paths, _ := db.AllPaths()
		_, ok := paths["gone.md"]
		return !ok
	}, "removed note still indexed")
}

func TestSync_IndexesAndPrunes(t *testing.T) {
	vaultDir, store, db := watcherTestEnv(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	_ = os.WriteFile(filepath.Join(vaultDir, "a.md"), []byte("![[cat.png]]"), 0o644)
	if err := Sync(db, store, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	refs, _ := db.ReferencingNotes("cat.png")
	if len(refs) != 1 {
		t.Fatalf("refs = %v, want [a.md]", refs)
	}

	// Remove from disk; a second sync prunes the stale entry.
	_ = os.Remove(filepath.Join(vaultDir, "a.md"))
	if err := Sync(db, store, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	paths, _ := db.AllPaths()
	if len(paths) != 0 {
		t.Errorf("stale entries remain: %v", paths)
	}
}
