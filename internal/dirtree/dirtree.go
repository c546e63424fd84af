// Package dirtree models the in-memory directory tree the compress
// driver consumes (spec.md §3 DirNode).
package dirtree

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// DataSource is either a path on disk (with a length hint) or an
// owning in-memory buffer. Exactly one of Path or Bytes is set.
type DataSource struct {
	Path       string
	LengthHint int64
	Bytes      []byte
}

// IsBuffer reports whether the source is an owning byte buffer rather
// than a filesystem path.
func (d DataSource) IsBuffer() bool {
	return d.Path == ""
}

// Node is a file or directory in the tree. Exactly one of File or
// Children is meaningful, selected by IsDir.
type Node struct {
	Name     string
	IsDir    bool
	File     DataSource
	Children []*Node // sorted by Name; only meaningful when IsDir
}

// NewDir returns an empty directory node named name.
func NewDir(name string) *Node {
	return &Node{Name: name, IsDir: true}
}

// NewFile returns a file node named name backed by src.
func NewFile(name string, src DataSource) *Node {
	return &Node{Name: name, File: src}
}

// AddChild inserts child into a directory node, maintaining the
// lexicographic-by-name invariant spec.md §3 requires. It returns an
// error if child's name is already present.
func (n *Node) AddChild(child *Node) error {
	if !n.IsDir {
		return errors.New("dirtree: cannot add a child to a file node")
	}
	if child.Name == "" {
		return errors.New("dirtree: child name must be non-empty")
	}
	i := sort.Search(len(n.Children), func(i int) bool {
		return n.Children[i].Name >= child.Name
	})
	if i < len(n.Children) && n.Children[i].Name == child.Name {
		return errors.Errorf("dirtree: duplicate child name %q", child.Name)
	}
	n.Children = append(n.Children, nil)
	copy(n.Children[i+1:], n.Children[i:])
	n.Children[i] = child
	return nil
}

// Walk builds a DirNode tree from a directory on disk. Traversal is
// recursive and sorted; symlinks are never followed and hidden entries
// are included, per spec.md §6.
func Walk(root string) (*Node, error) {
	info, err := os.Lstat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "dirtree: stat %s", root)
	}
	return walkNode(root, filepath.Base(root), info)
}

func walkNode(path, name string, info os.FileInfo) (*Node, error) {
	if info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.Errorf("dirtree: %s is a symlink, not following", path)
	}

	if !info.IsDir() {
		return &Node{
			Name: name,
			File: DataSource{Path: path, LengthHint: info.Size()},
		}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dirtree: readdir %s", path)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	dir := NewDir(name)
	byName := make(map[string]os.DirEntry, len(entries))
	for _, e := range entries {
		byName[e.Name()] = e
	}

	for _, childName := range names {
		e := byName[childName]
		if e.Type()&os.ModeSymlink != 0 {
			// follow_links=false: symlinked entries are skipped rather
			// than failing the whole walk.
			continue
		}
		childInfo, err := e.Info()
		if err != nil {
			return nil, errors.Wrapf(err, "dirtree: stat %s", filepath.Join(path, childName))
		}
		childPath := filepath.Join(path, childName)
		child, err := walkNode(childPath, childName, childInfo)
		if err != nil {
			return nil, err
		}
		if err := dir.AddChild(child); err != nil {
			return nil, err
		}
	}

	return dir, nil
}
