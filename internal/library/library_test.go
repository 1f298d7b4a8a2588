package library_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/USA-RedDragon/arm-panel/internal/config"
	"github.com/USA-RedDragon/arm-panel/internal/events"
	"github.com/USA-RedDragon/arm-panel/internal/library"
	"github.com/USA-RedDragon/arm-panel/internal/panel"
	"github.com/USA-RedDragon/arm-panel/internal/storage"
	"pgregory.net/rapid"
)

func newLibrary(t *testing.T) *library.Library {
	t.Helper()
	root, err := storage.NewStorage(context.Background(), &config.Config{
		Persistence: config.Persistence{
			Library: config.Library{
				Driver:            config.LibraryDriverFilesystem,
				FilesystemOptions: config.FilesystemOptions{Directory: filepath.Join(t.TempDir(), "data")},
			},
		},
	})
	if err != nil {
		t.Fatalf("failed to make storage: %v", err)
	}
	t.Cleanup(func() { _ = root.Close() })
	lib, err := library.New(root)
	if err != nil {
		t.Fatalf("failed to make library: %v", err)
	}
	t.Cleanup(func() { _ = lib.Close() })
	return lib
}

func TestBuiltinTemplates(t *testing.T) {
	t.Parallel()
	lib := newLibrary(t)

	templates, err := lib.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	names := make([]string, 0, len(templates))
	for _, template := range templates {
		names = append(names, template.Name)
		if template.Source != library.SourceBuiltin {
			t.Errorf("%s: expected builtin, got %s", template.Name, template.Source)
		}
	}
	if strings.Join(names, ",") != "gripper,move,sequence" {
		t.Fatalf("unexpected templates %v", names)
	}

	move, err := lib.Get(context.Background(), "move")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(move.Text, "positions = [0.0, 0.0, 90.0, 0.0, 90.0, 0.0]") {
		t.Fatalf("unexpected move template %q", move.Text)
	}
}

func TestSavedScriptShadowsBuiltin(t *testing.T) {
	t.Parallel()
	lib := newLibrary(t)
	ctx := context.Background()

	if _, err := lib.Save(ctx, "move", "custom_move()"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := lib.Get(ctx, "move")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Source != library.SourceLibrary || got.Text != "custom_move()" {
		t.Fatalf("saved script did not shadow builtin: %+v", got)
	}

	if err := lib.Delete(ctx, "move"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err = lib.Get(ctx, "move")
	if err != nil || got.Source != library.SourceBuiltin {
		t.Fatalf("builtin not restored after delete: %+v %v", got, err)
	}
	if err := lib.Delete(ctx, "move"); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetMissing(t *testing.T) {
	t.Parallel()
	lib := newLibrary(t)
	if _, err := lib.Get(context.Background(), "nope"); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSaveRejectsEmpty(t *testing.T) {
	t.Parallel()
	lib := newLibrary(t)
	if _, err := lib.Save(context.Background(), "blank", " \n\t"); !errors.Is(err, library.ErrEmptyScript) {
		t.Fatalf("expected empty script error, got %v", err)
	}
}

func TestNameValidation(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(rt *rapid.T) {
		name := rapid.String().Draw(rt, "name")
		valid := library.ValidName(name)
		if valid && (strings.ContainsAny(name, "/.\\ ") || len(name) == 0 || len(name) > 64) {
			rt.Fatalf("unsafe name %q accepted", name)
		}
	})
	for _, name := range []string{"pick-and-place", "a", "seq_2"} {
		if !library.ValidName(name) {
			t.Errorf("expected %q to be valid", name)
		}
	}
	for _, name := range []string{"", "../etc", "-lead", "Upper", strings.Repeat("a", 65)} {
		if library.ValidName(name) {
			t.Errorf("expected %q to be invalid", name)
		}
	}
}

func TestConsoleArchiveRoundTrip(t *testing.T) {
	t.Parallel()
	lib := newLibrary(t)
	ctx := context.Background()
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local)
	entries := []panel.ConsoleEntry{
		{Time: at, Level: events.LevelInfo, Text: "Executing script..."},
		{Time: at, Level: events.LevelSuccess, Text: "✅ done"},
	}

	name, err := lib.ArchiveConsole(ctx, entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(name, "console/") || !strings.HasSuffix(name, ".log.zst") {
		t.Fatalf("unexpected archive name %q", name)
	}

	archives, err := lib.ListArchives(ctx)
	if err != nil || len(archives) != 1 {
		t.Fatalf("unexpected archives %v %v", archives, err)
	}

	text, err := lib.ReadArchive(ctx, name)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "info\t[07:08:09] Executing script...\nsuccess\t[07:08:09] ✅ done\n"
	if text != want {
		t.Fatalf("unexpected transcript %q", text)
	}

	if _, err := lib.ReadArchive(ctx, "../library/move.script"); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("expected not found for a path outside the archive, got %v", err)
	}
}
