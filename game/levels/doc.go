// Package levels manages the catalogue of puzzle levels on disk.
//
// Each level is a "<id>.txt" file in the map text format understood by the
// engine package. An optional levels.yaml fixes play order and display names:
//
//	levels:
//	  - id: first-steps
//	    name: First Steps
//	    description: One crate, one destination
//
// Levels missing from the manifest follow the listed ones in file name order.
//
// Usage:
//
//	manager, err := levels.NewManager("levels", logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	grid, err := manager.Load("first-steps")
//	next, ok := manager.Next("first-steps")
//
// Raw level text is cached; Load always parses a fresh grid since grids are
// mutated by play. Watch keeps the cache in sync with edits on disk.
package levels
