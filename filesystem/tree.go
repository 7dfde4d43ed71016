package filesystem

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brettbedarf/webterm/config"
	"github.com/brettbedarf/webterm/internal/util"
	"github.com/puzpuzpuz/xsync/v4"
)

// Tree is an in-memory filesystem: a strict tree of [INode]s rooted at "/" plus
// the content of every file, keyed by serial number.
type Tree struct {
	mu         sync.RWMutex // guards the node graph
	root       *INode
	home       string                     // absolute home dir, displayed as "~"
	owner      uint32                     // owner stamped on new nodes
	lastSerial atomic.Uint64              // last serial number issued; never reused
	data       *xsync.Map[uint64, []byte] // serial -> file content
	handles    *xsync.Map[Handle, string] // open handles -> path at open time
}

// NewTree creates a tree with the base directories (tmp, home, bin, dev) and
// the configured home directory.
func NewTree(cfg *config.Config) (*Tree, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := &Tree{
		home:    cfg.HomeDir,
		owner:   cfg.OwnerUID,
		data:    xsync.NewMap[uint64, []byte](),
		handles: xsync.NewMap[Handle, string](),
	}

	// root node with rwxr-xr-x perms
	t.root = newINode("/", t.nextSerial(), t.owner, CurrentTime(), DirAttr|DirPerm)
	for _, name := range []string{"tmp", "home", "bin", "dev"} {
		dir := newINode(name, t.nextSerial(), t.owner, CurrentTime(), DirAttr|DirPerm)
		if err := t.root.addChild(dir); err != nil {
			return nil, err
		}
	}

	if err := t.MkdirAll(t.home, DirPerm); err != nil {
		return nil, fmt.Errorf("failed to create home dir %s: %w", t.home, err)
	}
	return t, nil
}

// nextSerial pre-increments the counter so the first serial issued is 1
func (t *Tree) nextSerial() uint64 {
	return t.lastSerial.Add(1)
}

// Home returns the absolute home directory
func (t *Tree) Home() string {
	return t.home
}

// Expand replaces a leading "~" with the home directory.
func (t *Tree) Expand(p string) string {
	if p == "~" {
		return t.home
	}
	if rest, ok := strings.CutPrefix(p, "~/"); ok {
		return t.home + "/" + rest
	}
	return p
}

// Display returns the cleaned absolute form of p with the home directory
// rendered as "~".
func (t *Tree) Display(p string) string {
	abs := "/" + strings.Join(t.segments(p), "/")
	if abs == t.home {
		return "~"
	}
	if rest, ok := strings.CutPrefix(abs, t.home+"/"); ok {
		return "~/" + rest
	}
	return abs
}

// segments splits p on "/" after "~" expansion, dropping empty segments.
// Every path resolves from the root.
func (t *Tree) segments(p string) []string {
	parts := strings.Split(t.Expand(p), "/")
	segs := parts[:0]
	for _, s := range parts {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// isDotName reports whether name is one of the implicit "." and ".." entries,
// which can never be created.
func isDotName(name string) bool {
	return name == "." || name == ".."
}

// resolveLocked walks segs from the root, matching names exactly.
// Caller must hold t.mu.
func (t *Tree) resolveLocked(segs []string) (*INode, error) {
	cur := t.root
	for _, name := range segs {
		next, ok := cur.child(name)
		if !ok {
			return nil, ErrNotFound
		}
		cur = next
	}
	return cur, nil
}

// openLocked resolves p and, with [Create], makes an empty file under an
// existing parent directory. Caller must hold t.mu for writing.
func (t *Tree) openLocked(p string, flags OpenFlag) (node *INode, created bool, err error) {
	segs := t.segments(p)
	node, err = t.resolveLocked(segs)
	if err == nil {
		if flags.Has(Excl) {
			return nil, false, ErrExists
		}
		return node, false, nil
	}
	if !flags.Has(Create) || len(segs) == 0 {
		return nil, false, err
	}

	parent, err := t.resolveLocked(segs[:len(segs)-1])
	if err != nil {
		return nil, false, err
	}
	if !parent.IsDir() {
		return nil, false, ErrNotDir
	}
	if isDotName(segs[len(segs)-1]) {
		return nil, false, ErrExists
	}
	node = newINode(segs[len(segs)-1], t.nextSerial(), t.owner, CurrentTime(), FileAttr|FilePerm)
	if err := parent.addChild(node); err != nil {
		return nil, false, err
	}
	parent.timestamp.Mtime = node.timestamp.Mtime
	return node, true, nil
}

// Open resolves path and returns a handle to it, equal to the node's serial. With [Create] a missing file is
// created under its already existing parent; with [Excl] an existing path fails
// with [ErrExists].
func (t *Tree) Open(path string, flags OpenFlag) (Handle, error) {
	logger := util.GetLogger("Tree.Open")

	t.mu.Lock()
	defer t.mu.Unlock()

	node, created, err := t.openLocked(path, flags)
	if err != nil {
		logger.Debug().Err(err).Str("path", path).Uint8("flags", uint8(flags)).Msg("Open failed")
		return 0, err
	}
	if created {
		logger.Debug().Str("path", path).Uint64("serial", node.serial).Msg("Created file")
	}

	h := Handle(node.serial)
	t.handles.Store(h, path)
	return h, nil
}

// Write stores data in the file at path and returns len(data).
// [Append] concatenates to the existing content, [Trunc] replaces it and
// without either the data overwrites the content from offset 0.
// On error neither the node graph nor any file content is changed.
func (t *Tree) Write(path string, flags OpenFlag, data []byte) (int, error) {
	logger := util.GetLogger("Tree.Write")

	t.mu.Lock()
	defer t.mu.Unlock()

	// Only files are ever created, so an existing directory is the one data-step
	// failure and it is caught before any content changes.
	node, created, err := t.openLocked(path, flags)
	if err != nil {
		logger.Debug().Err(err).Str("path", path).Uint8("flags", uint8(flags)).Msg("Write failed")
		return 0, err
	}
	if node.IsDir() {
		return 0, ErrIsDir
	}

	old, _ := t.data.Load(node.serial)
	var content []byte
	switch {
	case flags.Has(Trunc):
		content = bytes.Clone(data)
	case flags.Has(Append):
		content = append(bytes.Clone(old), data...)
	case len(data) >= len(old):
		content = bytes.Clone(data)
	default:
		content = bytes.Clone(old)
		copy(content, data)
	}

	if len(content) == 0 {
		t.data.Delete(node.serial)
	} else {
		t.data.Store(node.serial, content)
	}
	now := time.Now()
	node.size = uint64(len(content))
	node.timestamp.Mtime = now
	node.timestamp.Ctime = now

	logger.Trace().Str("path", path).Bool("created", created).Int("bytes", len(data)).Msg("Wrote file")
	return len(data), nil
}

// Read returns a copy of the content stored for the file at path.
// A file that was never written reads as empty.
func (t *Tree) Read(path string) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	node, err := t.resolveLocked(t.segments(path))
	if err != nil {
		return nil, err
	}
	if node.IsDir() {
		return nil, ErrIsDir
	}
	node.timestamp.Atime = time.Now()

	content, _ := t.data.Load(node.serial)
	return bytes.Clone(content), nil
}

// Getcwd maps a handle back to its path with the home directory shown as "~".
func (t *Tree) Getcwd(h Handle) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	p, ok := t.pathOfLocked(uint64(h))
	if !ok {
		return "", ErrBadHandle
	}
	return t.Display(p), nil
}

// Close releases a handle returned by Open. The tree itself is unaffected.
// A handle is the node's serial and is not reference-counted: opening the same
// path twice yields the same handle, and only the first Close of it succeeds.
// Later closes fail with [ErrBadHandle].
func (t *Tree) Close(h Handle) error {
	if _, ok := t.handles.LoadAndDelete(h); !ok {
		return ErrBadHandle
	}
	return nil
}

// OpenHandles returns the number of handles not yet closed
func (t *Tree) OpenHandles() int {
	return t.handles.Size()
}

// pathOfLocked finds the absolute path of the node with the given serial by
// searching down from the root. Caller must hold t.mu.
func (t *Tree) pathOfLocked(serial uint64) (string, bool) {
	if t.root.serial == serial {
		return "/", true
	}
	var search func(n *INode, prefix string) (string, bool)
	search = func(n *INode, prefix string) (string, bool) {
		for _, c := range n.children {
			p := prefix + "/" + c.name
			if c.serial == serial {
				return p, true
			}
			if found, ok := search(c, p); ok {
				return found, true
			}
		}
		return "", false
	}
	return search(t.root, "")
}

// Mkdir creates a single directory whose parent must already exist.
func (t *Tree) Mkdir(path string, perm uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	segs := t.segments(path)
	if len(segs) == 0 {
		return ErrExists
	}
	parent, err := t.resolveLocked(segs[:len(segs)-1])
	if err != nil {
		return err
	}
	return t.mkdirLocked(parent, segs[len(segs)-1], perm)
}

// MkdirAll creates every missing directory along path, like `mkdir -p`.
// It fails with [ErrNotDir] when a segment names an existing file.
func (t *Tree) MkdirAll(path string, perm uint32) error {
	logger := util.GetLogger("Tree.MkdirAll")

	t.mu.Lock()
	defer t.mu.Unlock()

	cur := t.root
	newCnt := 0
	for _, name := range t.segments(path) {
		if child, ok := cur.child(name); ok {
			if !child.IsDir() {
				return ErrNotDir
			}
			cur = child
			continue
		}
		if err := t.mkdirLocked(cur, name, perm); err != nil {
			return err
		}
		cur, _ = cur.child(name)
		newCnt++
	}
	if newCnt > 0 {
		logger.Debug().Str("path", path).Int("created", newCnt).Msg("Created dir(s)")
	}
	return nil
}

func (t *Tree) mkdirLocked(parent *INode, name string, perm uint32) error {
	if name == "" || strings.Contains(name, "/") {
		return ErrInvalid
	}
	if !parent.IsDir() {
		return ErrNotDir
	}
	if isDotName(name) {
		return ErrExists
	}
	dir := newINode(name, t.nextSerial(), t.owner, CurrentTime(), DirAttr|(perm&^typeMask))
	if err := parent.addChild(dir); err != nil {
		return err
	}
	parent.timestamp.Mtime = dir.timestamp.Mtime
	return nil
}

// Stat returns a snapshot of the node at path
func (t *Tree) Stat(path string) (NodeInfo, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	node, err := t.resolveLocked(t.segments(path))
	if err != nil {
		return NodeInfo{}, err
	}
	return node.info(), nil
}

// ReadDir returns snapshots of the direct children of the directory at path
// in creation order.
func (t *Tree) ReadDir(path string) ([]NodeInfo, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	node, err := t.resolveLocked(t.segments(path))
	if err != nil {
		return nil, err
	}
	if !node.IsDir() {
		return nil, ErrNotDir
	}
	infos := make([]NodeInfo, 0, len(node.children))
	for _, c := range node.children {
		infos = append(infos, c.info())
	}
	return infos, nil
}

// Seed creates each path that does not exist yet. A trailing "/" makes a
// directory, anything else an empty file. Missing parents are created.
func (t *Tree) Seed(paths []string) error {
	logger := util.GetLogger("Tree.Seed")

	var errs []error
	for _, p := range paths {
		var err error
		if strings.HasSuffix(p, "/") {
			err = t.MkdirAll(p, DirPerm)
		} else {
			segs := t.segments(p)
			if len(segs) == 0 {
				continue
			}
			if err = t.MkdirAll("/"+strings.Join(segs[:len(segs)-1], "/"), DirPerm); err == nil {
				var h Handle
				if h, err = t.Open(p, Create); err == nil {
					err = t.Close(h)
				}
			}
		}
		if err != nil {
			logger.Warn().Err(err).Str("path", p).Msg("Failed to seed path")
			errs = append(errs, fmt.Errorf("seed %s: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

// WalkFunc is called for every node in pre-order. content is nil for
// directories.
type WalkFunc func(path string, info NodeInfo, content []byte) error

// Walk visits every node below the root (not the root itself) in pre-order
// under a read lock. fn must not call back into the tree.
func (t *Tree) Walk(fn WalkFunc) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var walk func(n *INode, prefix string) error
	walk = func(n *INode, prefix string) error {
		for _, c := range n.children {
			p := prefix + "/" + c.name
			var content []byte
			if !c.IsDir() {
				content, _ = t.data.Load(c.serial)
			}
			if err := fn(p, c.info(), content); err != nil {
				return err
			}
			if err := walk(c, p); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(t.root, "")
}
