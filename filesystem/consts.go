package filesystem

import "syscall"

// SysAttrType is the file type portion of a node's mode
type SysAttrType = uint32

const (
	DirAttr  SysAttrType = syscall.S_IFDIR
	FileAttr SysAttrType = syscall.S_IFREG
	typeMask SysAttrType = syscall.S_IFMT
)

// Default permission bits for new nodes
const (
	DirPerm  uint32 = 0o755
	FilePerm uint32 = 0o755
)

// OpenFlag modifies Open and Write, modeled on open(2)
type OpenFlag uint8

const (
	// Append adds data after any existing content
	Append OpenFlag = 1 << iota
	// Create makes an empty file when the path does not exist yet
	Create
	// Excl fails with [ErrExists] when the path already exists
	Excl
	// Trunc replaces existing content
	Trunc
)

// Has reports whether all bits of other are set on f
func (f OpenFlag) Has(other OpenFlag) bool {
	return f&other == other
}

// Handle is an opaque reference to a node returned by Open. It is the node's
// serial number.
type Handle uint64
