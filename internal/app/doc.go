// Package app is the composition root for bookshelf.
//
// # Overview
//
// Setup loads the configuration and builds the pieces every command shares:
//
//   - a log/slog text logger writing to the configured log file (or to the
//     writer passed in Options for headless commands)
//   - a catalogapi.Client bound to api_bind with request_timeout
//   - a record.Sorter for sort_locale
//
// Run starts the interactive browser. List and Lookups mount the same
// catalog.Screen headlessly on a reactive.Loop and return the first settled
// snapshot.
//
// # Data Flow
//
//	Run()
//	  ├─> Setup()            config, logger, client, sorter
//	  ├─> prefs.Load()       theme and last sort key
//	  └─> ui.Run()           bubbletea program (blocks)
//	        └─> OnMount ─> StartPoller()  optional periodic Refresh
//
//	Env.List()
//	  ├─> reactive.NewLoop()
//	  ├─> loop.Do(Mount, SetWhere)
//	  ├─> store.Wait(!Loading)
//	  └─> loop.Do(Unmount)
//
// # Polling
//
// With refresh_interval set, StartPoller posts Screen.Refresh to the UI's
// dispatcher on every tick. While the source keeps failing the interval
// doubles per consecutive failure, up to five minutes.
package app
