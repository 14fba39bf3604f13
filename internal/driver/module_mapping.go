package driver

import (
	"path/filepath"

	"corec/internal/project"
	"corec/internal/source"
)

// logicalPathForFile maps a loaded source file's on-disk path to the
// logical module-path-relative form buildModuleMeta/collectImports record,
// honoring an explicit project.ModuleMapping alias root when one applies
// and falling back to a baseDir-relative path otherwise.
func logicalPathForFile(path, baseDir string, mapping *project.ModuleMapping) string {
	if mapping != nil {
		if logical, ok := mapping.LogicalPath(path); ok {
			return logical
		}
	}
	rel := path
	if baseDir != "" {
		if relPath, err := source.RelativePath(path, baseDir); err == nil {
			rel = relPath
		}
	}
	return filepath.ToSlash(rel)
}

// logicalPathForDir is logicalPathForFile applied to a directory path.
func logicalPathForDir(path, baseDir string, mapping *project.ModuleMapping) string {
	return logicalPathForFile(path, baseDir, mapping)
}
