// Package watch recompiles source files when they change on disk.
//
// FileWatcher wraps fsnotify with the behavior a compiler wants:
//
//   - Extension filtering: only source files (.lisp, .sexpr by default)
//     trigger callbacks; editor swap files and artifacts are ignored.
//   - Per-file debouncing: editors produce several filesystem events
//     per save, and a save burst collapses into one OnChange call after
//     a quiet period.
//   - Recursive watching: directories created under a watched tree are
//     picked up automatically.
//   - Retry with backoff: establishing the watch retries with doubling
//     delays, so a watcher racing a directory's creation settles once
//     the path appears.
//
// The watcher reports what changed, not what to do about it; the watch
// command and the server wire OnChange to a compile.
//
//	w, err := watch.NewFileWatcher(&watch.Config{
//		Path:      "src/",
//		Recursive: true,
//		OnChange:  func(path string) { compile(path) },
//	}, collector)
//	if err != nil {
//		return err
//	}
//	if err := w.Start(ctx); err != nil {
//		return err
//	}
//	defer w.Stop()
package watch
