// Package media implements the folder/file tree over the hierarchical
// object store. The Tree mirrors the store's latest broadcast; the Manager
// issues mutations and trusts the store's rebroadcast for canonical state.
package media

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/nidys-catering/api/internal/enum"
	"github.com/nidys-catering/api/internal/model"
	"github.com/nidys-catering/api/internal/store"

	"github.com/google/uuid"
)

// Errors returned by media operations. All are validation or business-rule
// rejections; none indicate store failure.
var (
	ErrNotFound   = errors.New("media item not found")
	ErrNotFolder  = errors.New("parent is not a folder")
	ErrNotFile    = errors.New("item is not a file")
	ErrRootDelete = errors.New("root folder cannot be deleted")
	ErrCycle      = errors.New("cannot move an item into its own subtree")
	ErrInUse      = errors.New("file is still referenced")
)

// Tree is the in-memory normalized view of the media collection, rebuilt
// from every store broadcast.
type Tree struct {
	mu       sync.RWMutex
	items    map[string]model.MediaItem
	imageMap map[string]string
}

// NewTree returns an empty tree containing only a synthesized root.
func NewTree() *Tree {
	t := &Tree{}
	t.Apply(store.MediaSnapshot{})
	return t
}

// Apply replaces the tree's contents with a store snapshot. A snapshot
// missing the root gets one synthesized locally, so consumers always see a
// valid tree during initial sync.
func (t *Tree) Apply(snap store.MediaSnapshot) {
	items := make(map[string]model.MediaItem, len(snap.Items))
	for id, item := range snap.Items {
		items[id] = item.Clone()
	}
	if _, ok := items[model.MediaRootID]; !ok {
		items[model.MediaRootID] = model.MediaItem{
			ID:       model.MediaRootID,
			Name:     "Media Library",
			Kind:     enum.MediaKindFolder,
			Children: []string{},
		}
	}
	imageMap := make(map[string]string, len(snap.ImageMap))
	for id, url := range snap.ImageMap {
		imageMap[id] = url
	}

	t.mu.Lock()
	t.items = items
	t.imageMap = imageMap
	t.mu.Unlock()
}

// Item returns the item with the given id.
func (t *Tree) Item(id string) (model.MediaItem, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	item, ok := t.items[id]
	if !ok {
		return model.MediaItem{}, false
	}
	return item.Clone(), true
}

// FolderContents returns the ordered children of a folder. Absent folders
// and child ids with no corresponding item yield nothing; the latter covers
// transient sync lag between a parent update and its children arriving.
func (t *Tree) FolderContents(folderID string) []model.MediaItem {
	t.mu.RLock()
	defer t.mu.RUnlock()

	folder, ok := t.items[folderID]
	if !ok || !folder.IsFolder() {
		return []model.MediaItem{}
	}
	contents := make([]model.MediaItem, 0, len(folder.Children))
	for _, childID := range folder.Children {
		if child, ok := t.items[childID]; ok {
			contents = append(contents, child.Clone())
		}
	}
	return contents
}

// Breadcrumbs walks parent links from id up to the root and returns the
// chain in root-to-current order. The walk treats a missing lookup as its
// end and refuses to revisit a node, so it terminates on malformed trees.
func (t *Tree) Breadcrumbs(id string) []model.MediaItem {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var chain []model.MediaItem
	seen := make(map[string]bool)
	current, ok := t.items[id]
	for ok && !seen[current.ID] {
		seen[current.ID] = true
		chain = append(chain, current.Clone())
		if current.ParentID == "" {
			break
		}
		current, ok = t.items[current.ParentID]
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// ImageURL returns the displayable URL for a file id.
func (t *Tree) ImageURL(fileID string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	url, ok := t.imageMap[fileID]
	return url, ok
}

// ImageMap returns a copy of the file-id-to-URL map.
func (t *Tree) ImageMap() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	m := make(map[string]string, len(t.imageMap))
	for id, url := range t.imageMap {
		m[id] = url
	}
	return m
}

// Items returns a copy of all items keyed by id.
func (t *Tree) Items() map[string]model.MediaItem {
	t.mu.RLock()
	defer t.mu.RUnlock()
	m := make(map[string]model.MediaItem, len(t.items))
	for id, item := range t.items {
		m[id] = item.Clone()
	}
	return m
}

// ReferenceChecker reports whether a media file is still referenced by
// other catalog data (menu item images, theme backgrounds). A non-empty
// holder blocks deletion.
type ReferenceChecker interface {
	MediaInUse(fileID string) (holder string, inUse bool)
}

// Manager issues tree mutations against the store. Local state is not
// separately reconciled; the store's next broadcast is canonical.
type Manager struct {
	store store.Media
	tree  *Tree
	refs  ReferenceChecker
}

// NewManager creates a Manager. refs may be nil, disabling the
// referenced-file delete guard.
func NewManager(st store.Media, tree *Tree, refs ReferenceChecker) *Manager {
	return &Manager{store: st, tree: tree, refs: refs}
}

// Watch subscribes the tree to store broadcasts and returns the
// unsubscribe handle. Broadcast errors are logged; the tree keeps its
// last-known state.
func (m *Manager) Watch() func() {
	return m.store.SubscribeMedia(func(snap store.MediaSnapshot, err error) {
		if err != nil {
			log.Printf("ERROR: media snapshot: %v", err)
			return
		}
		m.tree.Apply(snap)
	})
}

// Tree returns the manager's snapshot view.
func (m *Manager) Tree() *Tree { return m.tree }

// AddFile uploads data and creates a file entry under the given folder.
func (m *Manager) AddFile(ctx context.Context, name, mimeType string, data []byte, parentID string) (model.MediaItem, error) {
	parent, ok := m.tree.Item(parentID)
	if !ok {
		return model.MediaItem{}, ErrNotFound
	}
	if !parent.IsFolder() {
		return model.MediaItem{}, ErrNotFolder
	}

	item := model.MediaItem{
		ID:       uuid.NewString(),
		Name:     name,
		Kind:     enum.MediaKindFile,
		ParentID: parentID,
		MimeType: mimeType,
	}
	if _, err := m.store.UploadBlob(ctx, item.ID, mimeType, data); err != nil {
		return model.MediaItem{}, fmt.Errorf("upload %s: %w", name, err)
	}
	if err := m.store.PutItem(ctx, item); err != nil {
		return model.MediaItem{}, fmt.Errorf("create file %s: %w", name, err)
	}

	parent.Children = append(parent.Children, item.ID)
	if err := m.store.PutItem(ctx, parent); err != nil {
		return model.MediaItem{}, fmt.Errorf("attach file %s: %w", name, err)
	}
	return item, nil
}

// AddFolder creates an empty folder under the given parent.
func (m *Manager) AddFolder(ctx context.Context, name, parentID string) (model.MediaItem, error) {
	parent, ok := m.tree.Item(parentID)
	if !ok {
		return model.MediaItem{}, ErrNotFound
	}
	if !parent.IsFolder() {
		return model.MediaItem{}, ErrNotFolder
	}

	item := model.MediaItem{
		ID:       uuid.NewString(),
		Name:     name,
		Kind:     enum.MediaKindFolder,
		ParentID: parentID,
		Children: []string{},
	}
	if err := m.store.PutItem(ctx, item); err != nil {
		return model.MediaItem{}, fmt.Errorf("create folder %s: %w", name, err)
	}

	parent.Children = append(parent.Children, item.ID)
	if err := m.store.PutItem(ctx, parent); err != nil {
		return model.MediaItem{}, fmt.Errorf("attach folder %s: %w", name, err)
	}
	return item, nil
}

// Rename updates an item's display name. Empty-name policy is the
// caller's.
func (m *Manager) Rename(ctx context.Context, id, newName string) error {
	item, ok := m.tree.Item(id)
	if !ok {
		return ErrNotFound
	}
	item.Name = newName
	if err := m.store.PutItem(ctx, item); err != nil {
		return fmt.Errorf("rename %s: %w", id, err)
	}
	return nil
}

// Delete removes an item and, for folders, its entire subtree, freeing
// blob data for every file within. The root is refused, as is any file
// still referenced by catalog data. Descendants are removed deepest first
// and the parent detached last, so an interrupted cascade leaves skippable
// stragglers rather than orphans.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if id == model.MediaRootID {
		return ErrRootDelete
	}
	item, ok := m.tree.Item(id)
	if !ok {
		return nil
	}

	// Breadth-first collection of the whole subtree.
	var order []string
	queue := []string{id}
	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]
		order = append(order, currentID)
		if current, ok := m.tree.Item(currentID); ok && current.IsFolder() {
			queue = append(queue, current.Children...)
		}
	}

	if m.refs != nil {
		for _, deleteID := range order {
			if holder, inUse := m.refs.MediaInUse(deleteID); inUse {
				return fmt.Errorf("%w by %s", ErrInUse, holder)
			}
		}
	}

	for i := len(order) - 1; i >= 0; i-- {
		deleteID := order[i]
		if current, ok := m.tree.Item(deleteID); ok && !current.IsFolder() {
			if err := m.store.DeleteBlob(ctx, deleteID); err != nil {
				return fmt.Errorf("delete blob %s: %w", deleteID, err)
			}
		}
		if err := m.store.DeleteItem(ctx, deleteID); err != nil {
			return fmt.Errorf("delete item %s: %w", deleteID, err)
		}
	}

	if parent, ok := m.tree.Item(item.ParentID); ok && parent.IsFolder() {
		parent.Children = remove(parent.Children, id)
		if err := m.store.PutItem(ctx, parent); err != nil {
			return fmt.Errorf("detach %s: %w", id, err)
		}
	}
	return nil
}

// Move reparents an item. Self-moves and moves into the item's own subtree
// are rejected; the cycle guard walks the destination's ancestors and
// rejects the moment the moved item appears.
func (m *Manager) Move(ctx context.Context, id, newParentID string) error {
	if id == newParentID {
		return ErrCycle
	}
	item, ok := m.tree.Item(id)
	if !ok || item.ParentID == "" {
		return ErrNotFound
	}
	newParent, ok := m.tree.Item(newParentID)
	if !ok {
		return ErrNotFound
	}
	if !newParent.IsFolder() {
		return ErrNotFolder
	}

	ancestor := newParent
	for ancestor.ParentID != "" {
		if ancestor.ParentID == id {
			return ErrCycle
		}
		next, ok := m.tree.Item(ancestor.ParentID)
		if !ok {
			break
		}
		ancestor = next
	}

	if oldParent, ok := m.tree.Item(item.ParentID); ok && oldParent.IsFolder() {
		oldParent.Children = remove(oldParent.Children, id)
		if err := m.store.PutItem(ctx, oldParent); err != nil {
			return fmt.Errorf("detach %s: %w", id, err)
		}
	}
	newParent.Children = append(newParent.Children, id)
	if err := m.store.PutItem(ctx, newParent); err != nil {
		return fmt.Errorf("attach %s: %w", id, err)
	}
	item.ParentID = newParentID
	if err := m.store.PutItem(ctx, item); err != nil {
		return fmt.Errorf("reparent %s: %w", id, err)
	}
	return nil
}

// Duplicate copies a file into its own parent with a " (copy)" suffix and
// a fresh id. Folders are not duplicated.
func (m *Manager) Duplicate(ctx context.Context, id string) (model.MediaItem, error) {
	item, ok := m.tree.Item(id)
	if !ok {
		return model.MediaItem{}, ErrNotFound
	}
	if item.IsFolder() || item.ParentID == "" {
		return model.MediaItem{}, ErrNotFile
	}

	data, mimeType, err := m.store.GetBlob(ctx, id)
	if err != nil {
		return model.MediaItem{}, fmt.Errorf("read blob %s: %w", id, err)
	}
	return m.AddFile(ctx, item.Name+" (copy)", mimeType, data, item.ParentID)
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, candidate := range ids {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}
