package filesystem

import (
	"time"

	"github.com/hanwen/go-fuse/v2/fuse"
)

// Timestamp holds the three POSIX times of a node
type Timestamp struct {
	Ctime time.Time // Last status change
	Mtime time.Time // Last content modification
	Atime time.Time // Last access
}

// CurrentTime returns a Timestamp with every field set to now
func CurrentTime() Timestamp {
	now := time.Now()
	return Timestamp{Ctime: now, Mtime: now, Atime: now}
}

// INode is a single entry of a [Tree]. Parents exclusively own their children
// and nodes keep no reference back to their parent.
//
// INode fields are guarded by the owning Tree's lock. Callers outside the
// package only ever see [NodeInfo] copies.
type INode struct {
	serial    uint64
	name      string
	mode      uint32 // type bits | permission bits
	owner     uint32
	timestamp Timestamp
	size      uint64
	children  []*INode // ordered; always nil for files
}

func newINode(name string, serial uint64, owner uint32, ts Timestamp, mode uint32) *INode {
	n := &INode{
		serial:    serial,
		name:      name,
		mode:      mode,
		owner:     owner,
		timestamp: ts,
	}
	if n.IsDir() {
		n.children = make([]*INode, 0)
	}
	return n
}

// IsDir reports whether the node is a directory, regardless of how many
// children it has.
func (n *INode) IsDir() bool {
	return n.mode&typeMask == DirAttr
}

// child returns the direct child with the given name
func (n *INode) child(name string) (*INode, bool) {
	for _, c := range n.children {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// addChild appends child, keeping sibling names unique
func (n *INode) addChild(child *INode) error {
	if !n.IsDir() {
		return ErrNotDir
	}
	if _, ok := n.child(child.name); ok {
		return ErrExists
	}
	n.children = append(n.children, child)
	return nil
}

func (n *INode) info() NodeInfo {
	return NodeInfo{
		Serial:      n.serial,
		Name:        n.name,
		Mode:        n.mode,
		Owner:       n.owner,
		Timestamp:   n.timestamp,
		Size:        n.size,
		NumChildren: len(n.children),
	}
}

// NodeInfo is a point-in-time copy of an [INode]'s metadata
type NodeInfo struct {
	Serial      uint64
	Name        string
	Mode        uint32
	Owner       uint32
	Timestamp   Timestamp
	Size        uint64
	NumChildren int
}

func (i NodeInfo) IsDir() bool {
	return i.Mode&typeMask == DirAttr
}

// Perm returns the permission bits without the type bits
func (i NodeInfo) Perm() uint32 {
	return i.Mode &^ typeMask
}

// Attr projects the node onto the fuse wire attributes
func (i NodeInfo) Attr() fuse.Attr {
	ts := i.Timestamp
	return fuse.Attr{
		Ino:       i.Serial,
		Size:      i.Size,
		Blocks:    (i.Size + 511) / 512,
		Atime:     uint64(ts.Atime.Unix()),
		Mtime:     uint64(ts.Mtime.Unix()),
		Ctime:     uint64(ts.Ctime.Unix()),
		Atimensec: uint32(ts.Atime.Nanosecond()),
		Mtimensec: uint32(ts.Mtime.Nanosecond()),
		Ctimensec: uint32(ts.Ctime.Nanosecond()),
		Mode:      i.Mode,
		Nlink:     1,
		Owner: fuse.Owner{
			Uid: i.Owner,
			Gid: i.Owner,
		},
		Blksize: 4096, // preferred size for fs ops
	}
}
