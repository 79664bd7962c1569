// Package dragdrop validates and dispatches the move and combine
// intents arising from a drag gesture.
// 拖放狀態僅存在於一次手勢之間，不會被保存。
// Drag state lives only for the duration of one gesture.
package dragdrop

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/Kadajett/musicManager/internal/domain"
	"github.com/Kadajett/musicManager/internal/logger"
)

// Ops is the mutation surface the engine dispatches to on a valid drop.
// The local engine binds these to in-place filesystem operations; the
// cross-store engine binds them to transfer requests.
type Ops interface {
	// Move relocates source into the target directory
	Move(ctx context.Context, sourcePath, targetDir string) error

	// Combine creates newFolderName under parentPath and moves both
	// source and target into it
	Combine(ctx context.Context, sourcePath, targetPath, newFolderName, parentPath string) error
}

// Lookup resolves a path against the current listing. A false return
// means the entry is no longer present.
type Lookup func(path string) (domain.Entry, bool)

// State identifies the engine's position in the gesture
type State int

const (
	// StateIdle means no drag is in progress
	StateIdle State = iota
	// StateDragging means a source is held but no valid target hovered
	StateDragging
	// StateOver means a valid drop candidate is currently hovered
	StateOver
)

// Engine runs the drag gesture state machine for one listing owner.
// Not safe for concurrent use; the owning controller serializes access.
type Engine struct {
	ops     Ops
	lookup  Lookup
	refresh func(ctx context.Context) error
	log     logger.Logger

	state  State
	source string
	target string
}

// New creates an engine over the given mutation surface. lookup resolves
// paths against the owner's current listing; refresh reloads the owner's
// listing after a successful drop.
func New(ops Ops, lookup Lookup, refresh func(ctx context.Context) error) *Engine {
	return &Engine{
		ops:     ops,
		lookup:  lookup,
		refresh: refresh,
		log:     logger.With("component", "dragdrop"),
	}
}

// State returns the current gesture state
func (e *Engine) State() State {
	return e.state
}

// Source returns the path being dragged, empty when idle
func (e *Engine) Source() string {
	return e.source
}

// Target returns the active drop candidate, empty unless hovering one
func (e *Engine) Target() string {
	return e.target
}

// Begin starts a drag gesture from the entry at sourcePath
// Ignored if the path is not in the current listing
func (e *Engine) Begin(sourcePath string) {
	if _, ok := e.lookup(sourcePath); !ok {
		return
	}
	e.state = StateDragging
	e.source = sourcePath
	e.target = ""
}

// HoverTarget records targetPath as the drop candidate if the
// combination is valid; an invalid hover clears the candidate silently
func (e *Engine) HoverTarget(targetPath string) {
	if e.state == StateIdle {
		return
	}
	if e.CanDrop(e.source, targetPath) {
		e.state = StateOver
		e.target = targetPath
		return
	}
	e.state = StateDragging
	e.target = ""
}

// Leave clears the hovered candidate without ending the gesture
func (e *Engine) Leave() {
	if e.state == StateOver {
		e.state = StateDragging
		e.target = ""
	}
}

// Cancel abandons the gesture entirely
func (e *Engine) Cancel() {
	e.state = StateIdle
	e.source = ""
	e.target = ""
}

// CanDrop applies the drop compatibility rule against the current
// listing:
//   - file onto directory: move into the folder
//   - file onto a different file: combine into a new folder
//   - directory onto directory: move, unless the target is the source
//     itself or one of its descendants
//   - anything else is invalid; in particular a directory may never be
//     dropped onto a file
func (e *Engine) CanDrop(sourcePath, targetPath string) bool {
	source, ok := e.lookup(sourcePath)
	if !ok {
		return false
	}
	target, ok := e.lookup(targetPath)
	if !ok {
		return false
	}
	if source.Path == target.Path {
		return false
	}

	switch {
	case !source.IsDir && target.IsDir:
		return true
	case !source.IsDir && !target.IsDir:
		return true
	case source.IsDir && target.IsDir:
		return !isDescendant(source.Path, target.Path)
	default:
		return false
	}
}

// Drop finishes the gesture on targetPath. Both endpoints are
// re-validated against the listing first; a combination that is no
// longer valid ends the gesture as a silent no-op. On a valid drop
// exactly one backend operation is dispatched and, if it succeeds, the
// owner's listing is refreshed. A failed operation leaves the listing
// untouched.
func (e *Engine) Drop(ctx context.Context, targetPath string) error {
	if e.state == StateIdle {
		return nil
	}
	sourcePath := e.source
	e.Cancel()

	// Entries may have disappeared since drag-start
	if !e.CanDrop(sourcePath, targetPath) {
		e.log.Debug("drop rejected", "source", sourcePath, "target", targetPath)
		return nil
	}

	source, _ := e.lookup(sourcePath)
	target, _ := e.lookup(targetPath)

	var err error
	if !source.IsDir && !target.IsDir {
		parent := filepath.Dir(target.Path)
		name := defaultFolderName(source)
		e.log.Info("combining entries", "source", sourcePath, "target", targetPath, "folder", name)
		err = e.ops.Combine(ctx, source.Path, target.Path, name, parent)
	} else {
		e.log.Info("moving entry", "source", sourcePath, "target", targetPath)
		err = e.ops.Move(ctx, source.Path, target.Path)
	}
	if err != nil {
		e.log.Error("drop operation failed", "source", sourcePath, "target", targetPath, "error", err)
		return err
	}

	if e.refresh != nil {
		return e.refresh(ctx)
	}
	return nil
}

// defaultFolderName derives the combine folder's name from the dragged
// file, dropping the extension
func defaultFolderName(source domain.Entry) string {
	name := source.Name
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	if name == "" {
		name = source.Name
	}
	return name
}

// isDescendant reports whether target lies at or below source.
// The separator guard keeps "/music/ab" from matching "/music/a".
func isDescendant(sourcePath, targetPath string) bool {
	if targetPath == sourcePath {
		return true
	}
	return strings.HasPrefix(targetPath, sourcePath+string(filepath.Separator))
}
