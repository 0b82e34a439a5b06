// Package objpath canonicalises filesystem paths and classifies them into
// the catalog's object kinds by probing for a sentinel file, the way
// TileDB's storage manager does with stat(2) before every mutation.
package objpath

// Kind is the classification a probe returns for a directory.
type Kind int

const (
	// KindInvalid is the zero value, returned for paths that do not exist
	// or are not a directory.
	KindInvalid Kind = iota
	KindWorkspace
	KindGroup
	KindArray
	KindMetadata
	KindFragment
	// KindOther marks an existing directory that is none of the above —
	// distinct from KindInvalid, which also covers non-directories.
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindWorkspace:
		return "workspace"
	case KindGroup:
		return "group"
	case KindArray:
		return "array"
	case KindMetadata:
		return "metadata"
	case KindFragment:
		return "fragment"
	case KindOther:
		return "other"
	default:
		return "invalid"
	}
}

// Sentinel filenames, part of the on-disk external contract (spec §3/§6).
const (
	WorkspaceSentinel    = "__tiledb_workspace.tdb"
	GroupSentinel        = "__tiledb_group.tdb"
	ArraySchemaSentinel  = "__array_schema.tdb"
	MetadataSchemaSentinel = "__metadata_schema.tdb"
	FragmentSentinel     = "__tiledb_fragment.tdb"
	ConsolidationLockName = "__consolidation_lock.tdb"
)

// SentinelFor returns the sentinel filename for kind, or "" if kind has
// none (KindInvalid, KindOther).
func SentinelFor(kind Kind) string {
	switch kind {
	case KindWorkspace:
		return WorkspaceSentinel
	case KindGroup:
		return GroupSentinel
	case KindArray:
		return ArraySchemaSentinel
	case KindMetadata:
		return MetadataSchemaSentinel
	case KindFragment:
		return FragmentSentinel
	default:
		return ""
	}
}
