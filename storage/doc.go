// Package storage provides store adapters and utilities for the loadability library.
//
// FunctionsStore builds a loadability.Store from plain function callbacks. Ready-made stores live
// in the memstorage and gocachestorage subpackages; storagetest holds the contract tests every
// store is expected to pass.
package storage
