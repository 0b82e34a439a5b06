// Package schemacodec stores and loads the opaque schema blob that backs
// an array or metadata object, against the fixed sentinel filename for
// each kind (spec §4.3). The blob's format belongs to the array data
// engine; the catalog only ever moves bytes.
package schemacodec

import (
	"github.com/matthewaerose/TileDB/catalogerr"
	"github.com/matthewaerose/TileDB/filesys"
	"github.com/matthewaerose/TileDB/objpath"
)

// Store truncates any prior schema file in dir and writes blob to it in
// full, matching array_store_schema's unlink-then-O_CREAT.
func Store(fs filesys.Filesys, dir string, kind objpath.Kind, blob []byte) error {
	path := dir + "/" + objpath.SentinelFor(kind)
	if err := fs.WriteFile(path, blob); err != nil {
		return catalogerr.Wrap(catalogerr.KindIOError, "storeSchema", path, err)
	}
	return nil
}

// Load reads dir's schema file for kind in full. An empty file is
// SchemaCorrupt, not a successful empty-blob load, per spec §4.3.
func Load(fs filesys.Filesys, dir string, kind objpath.Kind) ([]byte, error) {
	path := dir + "/" + objpath.SentinelFor(kind)
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, catalogerr.Wrap(catalogerr.KindIOError, "loadSchema", path, err)
	}
	if len(data) == 0 {
		return nil, catalogerr.New(catalogerr.KindSchemaCorrupt, "loadSchema", path)
	}
	return data, nil
}
