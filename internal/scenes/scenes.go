// Package scenes resolves document keys to Background rasters: predefined
// coloring pages chosen by keyword, and user uploads.
package scenes

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/phanxgames/colorbook"
)

// Scene is a predefined coloring page.
type Scene struct {
	Keyword string // matched case-insensitively against the document key
	Name    string // asset base name
}

// Asset returns the scene's path inside the asset filesystem.
func (s Scene) Asset() string {
	return path.Join("images", s.Name+".png")
}

// Builtin lists the predefined scenes in match order.
var Builtin = []Scene{
	{Keyword: "jungle", Name: "Jungle"},
	{Keyword: "dinosaur", Name: "Dinosaur"},
	{Keyword: "garden", Name: "Garden"},
	{Keyword: "farm", Name: "Farm"},
	{Keyword: "ocean", Name: "Ocean"},
}

// Match returns the first scene whose keyword appears in key.
func Match(key string) (Scene, bool) {
	k := strings.ToLower(key)
	for _, s := range Builtin {
		if strings.Contains(k, s.Keyword) {
			return s, true
		}
	}
	return Scene{}, false
}

// Library serves predefined scenes from an asset filesystem.
type Library struct {
	fsys fs.FS
}

// NewLibrary serves scene assets from fsys, e.g. os.DirFS("assets").
func NewLibrary(fsys fs.FS) *Library {
	return &Library{fsys: fsys}
}

// Background decodes the scene matching key. Keys without a scene keyword
// yield colorbook.ErrNotFound.
func (l *Library) Background(ctx context.Context, key string) (image.Image, error) {
	sc, ok := Match(key)
	if !ok {
		return nil, fmt.Errorf("%w: no scene for %q", colorbook.ErrNotFound, key)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(l.fsys, sc.Asset())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", colorbook.ErrNotFound, sc.Asset())
	}
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", sc.Name, err)
	}
	return colorbook.DecodeImage(colorbook.DefaultCodec, data, "background")
}

// Available reports which builtin scenes have an asset present.
func (l *Library) Available() []Scene {
	var out []Scene
	for _, sc := range Builtin {
		if _, err := fs.Stat(l.fsys, sc.Asset()); err == nil {
			out = append(out, sc)
		}
	}
	return out
}

// Blobs is the storage used for uploads; internal/store satisfies it.
type Blobs interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// UploadPrefix starts every key generated by Uploads.Add.
const UploadPrefix = "upload-"

// Uploads keeps user-uploaded Background rasters.
type Uploads struct {
	blobs Blobs
}

// NewUploads stores uploads in blobs.
func NewUploads(blobs Blobs) *Uploads {
	return &Uploads{blobs: blobs}
}

// Add validates and stores data under a new "upload-<uuid>" document key.
func (u *Uploads) Add(ctx context.Context, data []byte) (string, error) {
	if _, err := colorbook.DecodeImage(colorbook.DefaultCodec, data, "upload"); err != nil {
		return "", err
	}
	key := UploadPrefix + uuid.NewString()
	if err := u.blobs.Save(ctx, key, data); err != nil {
		return "", fmt.Errorf("add upload: %w", err)
	}
	return key, nil
}

// PutBackground stores data as the Background of an existing document.
func (u *Uploads) PutBackground(ctx context.Context, key string, data []byte) error {
	if err := u.blobs.Save(ctx, key, data); err != nil {
		return fmt.Errorf("put background %s: %w", key, err)
	}
	return nil
}

// Background decodes the upload stored for key.
func (u *Uploads) Background(ctx context.Context, key string) (image.Image, error) {
	data, err := u.blobs.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	return colorbook.DecodeImage(colorbook.DefaultCodec, data, "upload")
}

// Chain tries each source in order. A source reporting ErrNotFound passes
// to the next; any other error stops the search.
type Chain []colorbook.BackgroundSource

// Background returns the first background found for key.
func (c Chain) Background(ctx context.Context, key string) (image.Image, error) {
	for _, src := range c {
		img, err := src.Background(ctx, key)
		if errors.Is(err, colorbook.ErrNotFound) {
			continue
		}
		return img, err
	}
	return nil, fmt.Errorf("%w: background for %q", colorbook.ErrNotFound, key)
}

// PutBackground stores data with the first source able to keep uploads.
func (c Chain) PutBackground(ctx context.Context, key string, data []byte) error {
	for _, src := range c {
		if bs, ok := src.(colorbook.BackgroundStore); ok {
			return bs.PutBackground(ctx, key, data)
		}
	}
	return errors.New("put background: no source keeps uploads")
}
