// Package bundle reads and writes portable catalog archives. A bundle
// is a self-describing single file: a fixed header, a JSON manifest,
// and the canonical catalog document compressed with zstd. The
// manifest carries the digest of the uncompressed document so
// truncated or corrupted bundles are rejected before use.
package bundle

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/containerd/errdefs"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/opencontainers/go-digest"

	"github.com/stubdex/stubdex/catalog"
)

var magic = [4]byte{'S', 'D', 'X', 'B'}

// formatVersion is bumped on incompatible layout changes.
const formatVersion byte = 1

// maxManifestSize caps the manifest length field so a corrupted header
// cannot trigger a huge allocation.
const maxManifestSize = 1 << 20

// Manifest describes the bundled catalog.
type Manifest struct {
	ID      string        `json:"id"`
	Created time.Time     `json:"created"`
	Tool    string        `json:"tool"`
	Types   int           `json:"types"`
	Digest  digest.Digest `json:"digest"`
}

// Write bundles the catalog onto w and returns the manifest it wrote.
func Write(w io.Writer, c *catalog.Catalog, tool string) (*Manifest, error) {
	body, err := catalog.MarshalJSONBytes(c)
	if err != nil {
		return nil, err
	}

	m := &Manifest{
		ID:      uuid.NewString(),
		Created: time.Now().UTC(),
		Tool:    tool,
		Types:   c.Len(),
		Digest:  digest.FromBytes(body),
	}
	manifest, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	compressed := enc.EncodeAll(body, nil)
	_ = enc.Close()

	if _, err := w.Write(magic[:]); err != nil {
		return nil, err
	}
	if _, err := w.Write([]byte{formatVersion}); err != nil {
		return nil, err
	}
	if err := binary.Write(w, binary.BigEndian, uint32(len(manifest))); err != nil {
		return nil, err
	}
	if _, err := w.Write(manifest); err != nil {
		return nil, err
	}
	if _, err := w.Write(compressed); err != nil {
		return nil, err
	}
	return m, nil
}

// Read parses a bundle, verifies its digest and returns the catalog
// together with the manifest.
func Read(r io.Reader) (*catalog.Catalog, *Manifest, error) {
	var header [5]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, nil, fmt.Errorf("reading bundle header: %w", err)
	}
	if [4]byte(header[:4]) != magic {
		return nil, nil, fmt.Errorf("not a catalog bundle: %w", errdefs.ErrInvalidArgument)
	}
	if header[4] != formatVersion {
		return nil, nil, fmt.Errorf("unsupported bundle version %d: %w", header[4], errdefs.ErrInvalidArgument)
	}

	var manifestLen uint32
	if err := binary.Read(r, binary.BigEndian, &manifestLen); err != nil {
		return nil, nil, fmt.Errorf("reading manifest length: %w", err)
	}
	if manifestLen == 0 || manifestLen > maxManifestSize {
		return nil, nil, fmt.Errorf("manifest length %d out of range: %w", manifestLen, errdefs.ErrInvalidArgument)
	}
	manifest := make([]byte, manifestLen)
	if _, err := io.ReadFull(r, manifest); err != nil {
		return nil, nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(manifest, &m); err != nil {
		return nil, nil, fmt.Errorf("decoding manifest: %w", errdefs.ErrInvalidArgument)
	}

	compressed, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("reading bundle body: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, nil, err
	}
	defer dec.Close()
	body, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("decompressing bundle body: %w", errdefs.ErrInvalidArgument)
	}

	if m.Digest != "" && digest.FromBytes(body) != m.Digest {
		return nil, nil, fmt.Errorf("bundle body does not match manifest digest: %w", errdefs.ErrInvalidArgument)
	}

	c, err := catalog.DecodeJSONBytes(body)
	if err != nil {
		return nil, nil, err
	}
	if m.Types != 0 && c.Len() != m.Types {
		return nil, nil, fmt.Errorf("bundle holds %d types, manifest says %d: %w", c.Len(), m.Types, errdefs.ErrInvalidArgument)
	}
	return c, &m, nil
}

// WriteFile bundles the catalog into a file at path.
func WriteFile(path string, c *catalog.Catalog, tool string) (*Manifest, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	m, err := Write(f, c, tool)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ReadFile parses the bundle file at path.
func ReadFile(path string) (*catalog.Catalog, *Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return Read(f)
}
