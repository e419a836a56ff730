package store

import (
	"context"
	"errors"
	"log/slog"

	daqerrors "github.com/dune-daq/daqgen/internal/errors"
	"github.com/dune-daq/daqgen/internal/watcher"
)

// Watch invalidates cached templates as their files change and reports each
// batch of changed names on Changes. It blocks until ctx is cancelled.
func (s *FileStore) Watch(ctx context.Context) error {
	if len(s.dirs) == 0 {
		return daqerrors.ValidationError("no template directories to watch", nil).
			WithSuggestion("set templates.search_path or " + EnvSearchPath)
	}

	w, err := watcher.NewDirWatcher(watcher.DefaultOptions())
	if err != nil {
		return daqerrors.InternalError("start template watcher", err)
	}

	s.active.Store(w)
	go s.consume(w)

	err = w.Start(ctx, s.dirs...)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func (s *FileStore) consume(w *watcher.DirWatcher) {
	for {
		select {
		case batch, ok := <-w.Events():
			if !ok {
				return
			}
			names := make([]string, 0, len(batch))
			seen := make(map[string]bool, len(batch))
			for _, ev := range batch {
				name := ev.Name()
				s.Invalidate(name)
				s.logger.Debug("template changed",
					slog.String("name", name),
					slog.String("op", ev.Operation.String()))
				if !seen[name] {
					seen[name] = true
					names = append(names, name)
				}
			}
			select {
			case s.changes <- names:
			default:
				s.dropped.Add(1)
				s.logger.Warn("template change notification dropped",
					slog.Int("names", len(names)))
			}
		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			s.logger.Warn("template watcher error", slog.String("error", err.Error()))
		}
	}
}

// Changes delivers the names of templates changed on disk while Watch runs.
func (s *FileStore) Changes() <-chan []string {
	return s.changes
}

// DroppedChanges returns how many change batches were lost because nobody
// was reading, in the watcher or on Changes.
func (s *FileStore) DroppedChanges() uint64 {
	n := s.dropped.Load()
	if w := s.active.Load(); w != nil {
		n += w.DroppedBatches()
	}
	return n
}
