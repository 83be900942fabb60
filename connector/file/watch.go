package file

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/signadot/itemscript/locator"
	"github.com/signadot/itemscript/value"
)

// Watch keeps an Item for the document at u in step with the file and
// delivers the Item's events to h until ctx is done. Events are for the
// whole document: the fragment of u is not applied.
func (c *Connector) Watch(ctx context.Context, u *locator.URL, h value.Handler) error {
	u = u.WithoutFragment().WithoutQuery()
	p, err := c.PathToFilesystem(u)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	// watch the directory so that replacement by rename is seen
	if err := w.Add(filepath.Dir(p)); err != nil {
		return err
	}
	it, err := c.read(u)
	if err != nil {
		return err
	}
	if it == nil {
		if it, err = value.NewItem(c.source(u), nil, c.itemOpts()...); err != nil {
			return err
		}
	}
	remove := it.AddHandler(h)
	defer remove()
	c.log.Debug("watching", "locator", u.String(), "file", p)

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != p {
				continue
			}
			c.refresh(it, p, ev)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.log.Warn("file watcher error", "file", p, "error", err)
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Connector) refresh(it *value.Item, p string, ev fsnotify.Event) {
	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		if it.Value() != nil {
			_, _ = it.RemovePath(nil)
		}
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		v, err := readFile(p)
		if err != nil {
			// a writer may be half way through
			c.log.Debug("file unreadable", "file", p, "error", err)
			return
		}
		if cur := it.Value(); cur != nil && value.Equal(cur, v) {
			return
		}
		if err := it.PutPath(nil, v); err != nil {
			c.log.Warn("file refresh", "file", p, "error", err)
		}
	}
}
