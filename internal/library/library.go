package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/USA-RedDragon/arm-panel/internal/panel"
	"github.com/USA-RedDragon/arm-panel/internal/storage"
	"github.com/klauspost/compress/zstd"
)

const (
	scriptsDir    = "library"
	archiveDir    = "console"
	scriptSuffix  = ".script"
	archiveSuffix = ".log.zst"
	maxScriptSize = 1 << 20
)

var (
	ErrInvalidName    = errors.New("template names must match " + namePattern.String())
	ErrNotFound       = errors.New("template not found")
	ErrScriptTooLarge = fmt.Errorf("scripts are limited to %d bytes", maxScriptSize)
	ErrEmptyScript    = errors.New("script is empty")
)

//nolint:golint,gochecknoglobals
var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

type Source string

const (
	SourceBuiltin Source = "builtin"
	SourceLibrary Source = "library"
)

type Template struct {
	Name   string `json:"name"`
	Source Source `json:"source"`
	Text   string `json:"text"`
}

func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// Library serves built-in templates, operator-saved scripts, and console
// archives out of one storage root.
type Library struct {
	scripts storage.Storage
	archive storage.Storage
	now     func() time.Time
}

func New(root storage.Storage) (*Library, error) {
	scripts, err := root.Sub(scriptsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open script library: %w", err)
	}
	archive, err := root.Sub(archiveDir)
	if err != nil {
		_ = scripts.Close()
		return nil, fmt.Errorf("failed to open console archive: %w", err)
	}
	return &Library{
		scripts: scripts,
		archive: archive,
		now:     time.Now,
	}, nil
}

func (l *Library) Close() error {
	return errors.Join(l.scripts.Close(), l.archive.Close())
}

// List returns every template by name. Saved scripts shadow built-ins.
func (l *Library) List(ctx context.Context) ([]Template, error) {
	byName := map[string]Template{}
	for name, text := range builtins {
		byName[name] = Template{Name: name, Source: SourceBuiltin, Text: text}
	}

	files, err := l.scripts.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list saved scripts: %w", err)
	}
	for _, file := range files {
		name, ok := strings.CutSuffix(file, scriptSuffix)
		if !ok || !ValidName(name) {
			continue
		}
		text, err := l.read(ctx, name)
		if err != nil {
			slog.Warn("Skipping unreadable saved script", "name", name, "error", err)
			continue
		}
		byName[name] = Template{Name: name, Source: SourceLibrary, Text: text}
	}

	templates := make([]Template, 0, len(byName))
	for _, template := range byName {
		templates = append(templates, template)
	}
	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Name < templates[j].Name
	})
	return templates, nil
}

func (l *Library) Get(ctx context.Context, name string) (Template, error) {
	if !ValidName(name) {
		return Template{}, ErrInvalidName
	}
	text, err := l.read(ctx, name)
	if err == nil {
		return Template{Name: name, Source: SourceLibrary, Text: text}, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return Template{}, err
	}
	if text, ok := builtins[name]; ok {
		return Template{Name: name, Source: SourceBuiltin, Text: text}, nil
	}
	return Template{}, ErrNotFound
}

func (l *Library) read(ctx context.Context, name string) (string, error) {
	r, err := l.scripts.Open(ctx, name+scriptSuffix)
	if err != nil {
		return "", err
	}
	defer r.Close()
	data, err := io.ReadAll(io.LimitReader(r, maxScriptSize))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(data), nil
}

func (l *Library) Save(ctx context.Context, name, text string) (Template, error) {
	if !ValidName(name) {
		return Template{}, ErrInvalidName
	}
	if strings.TrimSpace(text) == "" {
		return Template{}, ErrEmptyScript
	}
	if len(text) > maxScriptSize {
		return Template{}, ErrScriptTooLarge
	}

	w, err := l.scripts.Create(ctx, name+scriptSuffix)
	if err != nil {
		return Template{}, fmt.Errorf("failed to create %s: %w", name, err)
	}
	if _, err := io.WriteString(w, text); err != nil {
		_ = w.Close()
		return Template{}, fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return Template{}, fmt.Errorf("failed to save %s: %w", name, err)
	}
	return Template{Name: name, Source: SourceLibrary, Text: text}, nil
}

// Delete removes a saved script; a built-in of the same name shows again.
func (l *Library) Delete(ctx context.Context, name string) error {
	if !ValidName(name) {
		return ErrInvalidName
	}
	// S3 deletes of missing keys succeed, so check first.
	r, err := l.scripts.Open(ctx, name+scriptSuffix)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	_ = r.Close()
	err = l.scripts.Remove(ctx, name+scriptSuffix)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

// ArchiveConsole writes the transcript zstd-compressed and returns its name.
func (l *Library) ArchiveConsole(ctx context.Context, entries []panel.ConsoleEntry) (string, error) {
	name := strconv.FormatInt(l.now().UnixNano(), 10) + archiveSuffix
	w, err := l.archive.Create(ctx, name)
	if err != nil {
		return "", fmt.Errorf("failed to create archive: %w", err)
	}
	enc, err := zstd.NewWriter(w)
	if err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to start compression: %w", err)
	}
	for _, entry := range entries {
		if _, err := io.WriteString(enc, string(entry.Level)+"\t"+entry.Line()+"\n"); err != nil {
			_ = enc.Close()
			_ = w.Close()
			return "", fmt.Errorf("failed to write archive: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to finish compression: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to save archive: %w", err)
	}
	return archiveDir + "/" + name, nil
}

// ArchiveHook adapts ArchiveConsole to the console's clear callback.
func (l *Library) ArchiveHook(ctx context.Context) func([]panel.ConsoleEntry) {
	return func(entries []panel.ConsoleEntry) {
		name, err := l.ArchiveConsole(ctx, entries)
		if err != nil {
			slog.Error("Error archiving console", "error", err)
			return
		}
		slog.Info("Archived console", "name", name, "entries", len(entries))
	}
}

func (l *Library) ListArchives(ctx context.Context) ([]string, error) {
	files, err := l.archive.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list archives: %w", err)
	}
	names := make([]string, 0, len(files))
	for _, file := range files {
		if strings.HasSuffix(file, archiveSuffix) {
			names = append(names, file)
		}
	}
	return names, nil
}

// ReadArchive returns the decompressed transcript of the named archive.
func (l *Library) ReadArchive(ctx context.Context, name string) (string, error) {
	name = strings.TrimPrefix(name, archiveDir+"/")
	if !strings.HasSuffix(name, archiveSuffix) || strings.Contains(name, "/") {
		return "", ErrNotFound
	}
	r, err := l.archive.Open(ctx, name)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	defer r.Close()

	dec, err := zstd.NewReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to start decompression: %w", err)
	}
	defer dec.Close()
	data, err := io.ReadAll(dec)
	if err != nil {
		return "", fmt.Errorf("failed to decompress %s: %w", name, err)
	}
	return string(data), nil
}
