package mount

import (
	"context"
	"path"
	"syscall"

	"github.com/brettbedarf/webterm/config"
	"github.com/brettbedarf/webterm/filesystem"
	"github.com/brettbedarf/webterm/internal/util"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// Root exposes a read-only snapshot of a [filesystem.Tree] through FUSE. The
// snapshot is taken when the root is added to a mounted file system.
type Root struct {
	fs.Inode
	tree *filesystem.Tree
}

var _ fs.NodeOnAdder = (*Root)(nil)

// dir is a snapshot directory reporting the tree's attributes
type dir struct {
	fs.Inode
	attr fuse.Attr
}

var _ fs.NodeGetattrer = (*dir)(nil)

func (d *dir) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Attr = d.attr
	return 0
}

func NewRoot(tree *filesystem.Tree) *Root {
	return &Root{tree: tree}
}

// OnAdd copies every node of the tree below the root
func (r *Root) OnAdd(ctx context.Context) {
	logger := util.GetLogger("Root.OnAdd")

	inodes := map[string]*fs.Inode{"/": &r.Inode}
	cnt := 0
	err := r.tree.Walk(func(p string, info filesystem.NodeInfo, content []byte) error {
		parent, ok := inodes[path.Dir(p)]
		if !ok {
			logger.Warn().Str("path", p).Msg("Parent missing from snapshot")
			return nil
		}

		attr := info.Attr()
		var child *fs.Inode
		if info.IsDir() {
			child = parent.NewPersistentInode(ctx, &dir{attr: attr},
				fs.StableAttr{Mode: fuse.S_IFDIR, Ino: info.Serial})
			inodes[p] = child
		} else {
			child = parent.NewPersistentInode(ctx, &fs.MemRegularFile{Data: content, Attr: attr},
				fs.StableAttr{Mode: fuse.S_IFREG, Ino: info.Serial})
		}
		parent.AddChild(info.Name, child, false)
		cnt++
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Msg("Snapshot failed")
		return
	}
	logger.Debug().Int("nodes", cnt).Msg("Snapshot added")
}

// Mount serves a snapshot of a tree at a mount point
type Mount struct {
	root   *Root
	cfg    *config.Config
	server *fuse.Server
}

// New creates a Mount for tree given your config.
func New(cfg *config.Config, tree *filesystem.Tree) *Mount {
	return &Mount{
		root: NewRoot(tree),
		cfg:  cfg,
	}
}

// Options returns the go-fuse options used to mount
func (m *Mount) Options() *fs.Options {
	opts := m.cfg.MountOptions
	return &fs.Options{
		MountOptions: fuse.MountOptions{
			Name:    opts.Name,
			FsName:  opts.FsName,
			Debug:   opts.Debug || m.cfg.LogLvl == util.TraceLevel,
			Logger:  util.NewLogLogger("FuseServer", util.DebugLevel),
			Options: []string{"ro"},
		},
	}
}

// Serve mounts the snapshot at mountPoint and returns once the mount is
// ready. The server keeps running in the background until Unmount.
func (m *Mount) Serve(mountPoint string) error {
	logger := util.GetLogger("Mount.Serve")

	srv, err := fs.Mount(mountPoint, m.root, m.Options())
	if err != nil {
		return err
	}
	m.server = srv
	logger.Info().Str("mountpoint", mountPoint).Msg("Snapshot mounted")
	return nil
}

// Wait blocks until the file system is unmounted
func (m *Mount) Wait() {
	if m.server != nil {
		m.server.Wait()
	}
}

// Unmount cleanly unmounts the filesystem.
func (m *Mount) Unmount() error {
	if m.server == nil {
		return nil
	}
	return m.server.Unmount()
}
