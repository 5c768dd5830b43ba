package refpath

import (
	"sort"
	"strings"
)

// RefPathIndex maps absolute reference-path values to the artifact files
// that mention them. When an instance is renamed, the files needing an
// update are found in time proportional to the affected files rather than
// the tree size. Keys must be absolute paths; resolve relative forms with
// ResolveRelative before indexing.
type RefPathIndex struct {
	pathsToFiles map[string]map[string]bool
}

func NewRefPathIndex() *RefPathIndex {
	return &RefPathIndex{pathsToFiles: make(map[string]map[string]bool)}
}

// Add records that file carries a reference-path attribute with value
// refPath.
func (idx *RefPathIndex) Add(refPath, file string) {
	files := idx.pathsToFiles[refPath]
	if files == nil {
		files = make(map[string]bool)
		idx.pathsToFiles[refPath] = files
	}
	files[file] = true
}

// Remove drops one (refPath, file) association, for when an attribute is
// removed or its value changes.
func (idx *RefPathIndex) Remove(refPath, file string) {
	files := idx.pathsToFiles[refPath]
	if files == nil {
		return
	}
	delete(files, file)
	if len(files) == 0 {
		delete(idx.pathsToFiles, refPath)
	}
}

// RemoveAllForFile drops file from every entry. Used before re-indexing a
// file's remaining attributes.
func (idx *RefPathIndex) RemoveAllForFile(file string) {
	for refPath, files := range idx.pathsToFiles {
		delete(files, file)
		if len(files) == 0 {
			delete(idx.pathsToFiles, refPath)
		}
	}
}

// FindByPrefix returns the files carrying a reference path equal to prefix
// or below it, sorted and deduplicated. These are the files to rewrite when
// the instance at prefix is renamed.
func (idx *RefPathIndex) FindByPrefix(prefix string) []string {
	withSep := prefix + "/"
	seen := make(map[string]bool)
	for refPath, files := range idx.pathsToFiles {
		if refPath == prefix || strings.HasPrefix(refPath, withSep) {
			for file := range files {
				seen[file] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for file := range seen {
		out = append(out, file)
	}
	sort.Strings(out)
	return out
}

// RenameFile moves every association from oldFile to newFile, for when the
// artifact itself moves on disk.
func (idx *RefPathIndex) RenameFile(oldFile, newFile string) {
	for _, files := range idx.pathsToFiles {
		if files[oldFile] {
			delete(files, oldFile)
			files[newFile] = true
		}
	}
}

// UpdatePrefix rewrites every key equal to oldPrefix or below it so that it
// starts with newPrefix instead, merging file sets when the rewritten key
// already exists.
func (idx *RefPathIndex) UpdatePrefix(oldPrefix, newPrefix string) {
	withSep := oldPrefix + "/"
	var renames [][2]string
	for refPath := range idx.pathsToFiles {
		if refPath == oldPrefix {
			renames = append(renames, [2]string{refPath, newPrefix})
		} else if strings.HasPrefix(refPath, withSep) {
			renames = append(renames, [2]string{refPath, newPrefix + refPath[len(oldPrefix):]})
		}
	}
	for _, rename := range renames {
		files := idx.pathsToFiles[rename[0]]
		delete(idx.pathsToFiles, rename[0])
		dst := idx.pathsToFiles[rename[1]]
		if dst == nil {
			idx.pathsToFiles[rename[1]] = files
			continue
		}
		for file := range files {
			dst[file] = true
		}
	}
}

// Len returns the number of distinct reference paths indexed.
func (idx *RefPathIndex) Len() int {
	return len(idx.pathsToFiles)
}
