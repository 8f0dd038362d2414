package drawing

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/docloom/docloom/opc"
	"github.com/docloom/docloom/semantic"
)

// UnresolvedRelationshipError reports a drawing whose relationship id
// has no target. Extraction skips the drawing with a warning.
type UnresolvedRelationshipError struct {
	RelID string
}

func (e *UnresolvedRelationshipError) Error() string {
	return fmt.Sprintf("unresolved relationship %q", e.RelID)
}

// WrapKind is the text-wrap mode of an anchored image.
type WrapKind string

const (
	WrapNone         WrapKind = "none"
	WrapSquare       WrapKind = "square"
	WrapTopAndBottom WrapKind = "topAndBottom"
)

// Position places an image either in the text flow or anchored at an
// offset from the page origin.
type Position struct {
	Anchored bool
	OffsetH  int64 // EMU, anchored only
	OffsetV  int64 // EMU, anchored only
	Wrap     WrapKind
}

// Image is an embedded raster graphic with its positioning metadata.
// An Image is owned by one document during a single extraction or
// render call; it is never shared across documents.
type Image struct {
	ID        int
	RelID     string
	Target    string // part path inside the package, e.g. "media/image1.png"
	Alt       string
	WidthEMU  int64
	HeightEMU int64
	Position  Position
}

// Extractor copies embedded images out of a package into an external
// media directory.
type Extractor struct {
	archive  *opc.Archive
	rels     *opc.Relationships
	mediaDir string
	next     int
}

// NewExtractor creates an extractor writing image files to mediaDir.
func NewExtractor(archive *opc.Archive, rels *opc.Relationships, mediaDir string) *Extractor {
	return &Extractor{archive: archive, rels: rels, mediaDir: mediaDir, next: 1}
}

// Extract resolves a drawing's relationship id, copies the image bytes
// to the media directory under a sequential name, and returns an image
// reference for the semantic tree. Dimensions are the declared EMU
// extent; alt is the accessibility description. An unresolvable
// relationship returns an UnresolvedRelationshipError and writes
// nothing.
func (e *Extractor) Extract(relID, alt string, widthEMU, heightEMU int64) (*semantic.ImageRef, error) {
	target, ok := e.rels.Target(relID)
	if !ok {
		return nil, &UnresolvedRelationshipError{RelID: relID}
	}
	partPath := resolvePartPath(target)
	data := e.archive.Get(partPath)
	if data == nil {
		return nil, &UnresolvedRelationshipError{RelID: relID}
	}

	ext := strings.TrimPrefix(path.Ext(partPath), ".")
	if ext == "" {
		ext = "bin"
	}
	name := "image" + strconv.Itoa(e.next) + "." + ext
	e.next++

	if e.mediaDir != "" {
		if err := os.MkdirAll(e.mediaDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating media directory: %w", err)
		}
		if err := os.WriteFile(filepath.Join(e.mediaDir, name), data, 0o644); err != nil {
			return nil, fmt.Errorf("writing media file: %w", err)
		}
	}

	return &semantic.ImageRef{
		Path:      name,
		Alt:       alt,
		WidthEMU:  widthEMU,
		HeightEMU: heightEMU,
	}, nil
}

// Bytes returns the raw bytes of the image behind a relationship id,
// for content hashing.
func (e *Extractor) Bytes(relID string) ([]byte, bool) {
	target, ok := e.rels.Target(relID)
	if !ok {
		return nil, false
	}
	data := e.archive.Get(resolvePartPath(target))
	return data, data != nil
}

// resolvePartPath turns a relationship target (relative to word/) into
// an archive part path.
func resolvePartPath(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean("word/" + target)
}

// Embedder copies external image files into a package's media area and
// registers relationships and content types for them.
type Embedder struct {
	archive  *opc.Archive
	rels     *opc.Relationships
	types    *opc.ContentTypes
	mediaDir string
	next     int
	nextID   int
}

// NewEmbedder creates an embedder reading image files from mediaDir.
// Fresh media names continue after the highest index already present
// in the package.
func NewEmbedder(archive *opc.Archive, rels *opc.Relationships, types *opc.ContentTypes, mediaDir string) *Embedder {
	next := 1
	for _, p := range archive.MediaParts() {
		base := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if n, err := strconv.Atoi(strings.TrimPrefix(base, "image")); err == nil && n >= next {
			next = n + 1
		}
	}
	return &Embedder{archive: archive, rels: rels, types: types, mediaDir: mediaDir, next: next, nextID: 1}
}

// Embed copies an image reference's bytes into the package under a
// fresh media name, allocates a relationship id, registers the content
// type if the extension is unseen, and returns the embedded image with
// computed EMU dimensions. Unspecified dimensions default to the
// intrinsic pixel size at 96 DPI.
func (e *Embedder) Embed(ref *semantic.ImageRef) (*Image, error) {
	data, err := os.ReadFile(filepath.Join(e.mediaDir, ref.Path))
	if err != nil {
		return nil, fmt.Errorf("reading image %s: %w", ref.Path, err)
	}
	return e.EmbedBytes(ref, data)
}

// EmbedBytes embeds already-loaded image bytes (diagram rasterizations
// arrive this way, pre-resolved by the caller).
func (e *Embedder) EmbedBytes(ref *semantic.ImageRef, data []byte) (*Image, error) {
	ext := strings.TrimPrefix(path.Ext(ref.Path), ".")
	if ext == "" {
		ext = "png"
	}
	name := "image" + strconv.Itoa(e.next) + "." + ext
	e.next++

	partPath := opc.MediaDir + name
	e.archive.Set(partPath, data)
	relID := e.rels.Add("media/"+name, opc.RelTypeImage)
	e.types.RegisterExtension(ext)

	width, height := ref.WidthEMU, ref.HeightEMU
	if width == 0 || height == 0 {
		iw, ih, err := IntrinsicSizeEMU(data)
		if err != nil {
			return nil, fmt.Errorf("image %s has no declared size and %w", ref.Path, err)
		}
		if width == 0 {
			width = iw
		}
		if height == 0 {
			height = ih
		}
	}

	img := &Image{
		ID:        e.nextID,
		RelID:     relID,
		Target:    "media/" + name,
		Alt:       ref.Alt,
		WidthEMU:  width,
		HeightEMU: height,
	}
	if ref.Anchored {
		img.Position = Position{Anchored: true, Wrap: WrapNone}
	}
	e.nextID++
	return img, nil
}
