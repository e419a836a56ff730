// Package store resolves base FHiCL templates by file name.
//
// A FileStore searches an ordered list of directories and then an embedded
// fallback file system. The first match wins. Loaded text is kept in an LRU
// cache; Watch keeps the cache honest while templates are edited on disk.
package store
