package driver

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"corec/internal/ast"
	"corec/internal/diag"
	"corec/internal/project"
	"corec/internal/source"
)

// buildModuleMeta extracts one project.ModuleMeta from a set of already
// loaded/built files sharing a directory, reading pragma/import data
// straight off builder's stores. Unlike the teacher's version this never
// touches disk: corec has no lexer/parser (spec.md §1), so every ast.File
// it sees arrives pre-built, and "does module path X exist" can only be
// answered by a caller-supplied module graph, not by stat-ing the
// filesystem — see collectImports below.
func buildModuleMeta(
	fs *source.FileSet,
	builder *ast.Builder,
	fileIDs []ast.FileID,
	baseDir string,
	mapping *project.ModuleMapping,
	reporter diag.Reporter,
) (*project.ModuleMeta, bool) {
	if builder == nil || len(fileIDs) == 0 {
		return nil, false
	}

	type moduleFile struct {
		id   ast.FileID
		node *ast.File
	}
	files := make([]moduleFile, 0, len(fileIDs))
	for _, id := range fileIDs {
		if node := builder.Files.Get(id); node != nil {
			files = append(files, moduleFile{id: id, node: node})
		}
	}
	if len(files) == 0 {
		return nil, false
	}

	dirPath := filepath.Dir(fs.Get(files[0].node.Span.File).Path)
	logicalDir := logicalPathForDir(dirPath, baseDir, mapping)
	normDir := filepath.ToSlash(logicalDir)
	dirName := filepath.Base(dirPath)
	if normDir != "" && normDir != "." {
		dirName = filepath.Base(normDir)
	}

	moduleName := ""
	var kind project.ModuleKind
	hasPragma := false
	pragmaKinds := make(map[project.ModuleKind]source.Span)
	explicitNames := make(map[string]source.Span)
	hasNoStd := false
	hasStd := false
	filesWithPragma := make(map[ast.FileID]source.Span)
	filesWithExplicit := make(map[ast.FileID]struct{})
	interner := builder.StringsInterner
	for _, mf := range files {
		node := mf.node
		if node == nil {
			continue
		}
		fileHasPragma := false
		if !node.Pragma.IsEmpty() {
			for _, entry := range node.Pragma.Entries {
				name, _ := interner.Lookup(entry.Name)
				switch name {
				case "module", "binary":
					hasPragma = true
					fileHasPragma = true
					entryKind := project.ModuleKindModule
					if name == "binary" {
						entryKind = project.ModuleKindBinary
					}
					pragmaKinds[entryKind] = entry.Span
					raw, _ := interner.Lookup(entry.Raw)
					if raw == "" {
						raw = name
					}
					if strings.Contains(raw, "::") {
						parts := strings.SplitN(raw, "::", 2)
						if len(parts) == 2 && parts[1] != "" {
							explicit := strings.TrimSpace(parts[1])
							explicit = strings.TrimRight(explicit, ";,")
							explicit = strings.TrimSpace(explicit)
							if explicit != "" {
								explicitNames[explicit] = entry.Span
							}
							filesWithExplicit[mf.id] = struct{}{}
						}
					}
				}
			}
		}
		if node.Pragma.Flags&ast.PragmaFlagNoStd != 0 {
			hasNoStd = true
		} else {
			hasStd = true
		}
		if fileHasPragma {
			filesWithPragma[mf.id] = node.Span
		}
	}
	if hasPragma && hasNoStd && hasStd && reporter != nil {
		reporter.Report(diag.ProjInconsistentNoStd, diag.SevError, files[0].node.Span, "pragma no_std must be consistent across all files in a module", nil, nil)
	}

	if hasPragma {
		if len(filesWithPragma) != len(files) && reporter != nil {
			for _, mf := range files {
				if _, ok := filesWithPragma[mf.id]; ok {
					continue
				}
				reporter.Report(diag.ProjMissingModulePragma, diag.SevError, mf.node.Span, "all files in a directory with pragma module/binary must declare a module pragma", nil, nil)
			}
		}
		if len(explicitNames) > 1 && reporter != nil {
			reporter.Report(diag.ProjInconsistentModuleName, diag.SevError, files[0].node.Span, "inconsistent module names within the same directory", nil, nil)
		}
		if len(explicitNames) == 1 && len(filesWithExplicit) != len(filesWithPragma) && reporter != nil {
			reporter.Report(diag.ProjInconsistentModuleName, diag.SevError, files[0].node.Span, "all files must use the same explicit module name", nil, nil)
		}
		if len(explicitNames) == 1 {
			for name := range explicitNames {
				moduleName = name
				break
			}
		}
		if moduleName == "" {
			moduleName = dirName
		}
		if !project.IsValidModuleIdent(moduleName) {
			if reporter != nil {
				msg := fmt.Sprintf("directory name %q is not a valid module identifier; specify an explicit name with ::", dirName)
				reporter.Report(diag.ProjInvalidModulePath, diag.SevError, files[0].node.Span, msg, nil, nil)
			}
			return nil, false
		}
		if len(pragmaKinds) > 1 && reporter != nil {
			reporter.Report(diag.ProjInvalidModulePath, diag.SevError, files[0].node.Span, "cannot mix module and binary pragmas in one directory", nil, nil)
		}
		if _, ok := pragmaKinds[project.ModuleKindBinary]; ok {
			kind = project.ModuleKindBinary
		} else {
			kind = project.ModuleKindModule
		}
	} else {
		filePath := logicalPathForFile(fs.Get(files[0].node.Span.File).Path, baseDir, mapping)
		if norm, err := project.NormalizeModulePath(filePath); err == nil {
			moduleName = filepath.Base(norm)
			normDir = filepath.Dir(norm)
			kind = project.ModuleKindModule
		} else {
			moduleName = filepath.Base(filePath)
			kind = project.ModuleKindModule
		}
	}

	pathSegments := []string{}
	if normDir != "" && normDir != "." {
		pathSegments = append(pathSegments, strings.Split(filepath.ToSlash(normDir), "/")...)
	}
	if len(pathSegments) == 0 || pathSegments[len(pathSegments)-1] != moduleName {
		pathSegments = append(pathSegments, moduleName)
	}
	fullPath, err := project.NormalizeModulePath(strings.Join(pathSegments, "/"))
	if err != nil {
		if reporter != nil {
			reporter.Report(
				diag.ProjInvalidModulePath,
				diag.SevError,
				files[0].node.Span,
				fmt.Sprintf("invalid module path %q: %v", strings.Join(pathSegments, "/"), err),
				nil,
				nil,
			)
		}
		return nil, false
	}

	imports := make([]project.ImportMeta, 0, 8)
	for _, mf := range files {
		node := mf.node
		if node == nil {
			continue
		}
		fileImports := collectImports(fs, builder, node, baseDir, mapping, reporter)
		imports = append(imports, fileImports...)
	}

	type fileInfo struct {
		path string
		span source.Span
		hash project.Digest
	}
	fileInfos := make([]fileInfo, 0, len(files))
	for _, mf := range files {
		node := mf.node
		if node == nil {
			continue
		}
		src := fs.Get(node.Span.File)
		filePath := logicalPathForFile(src.Path, baseDir, mapping)
		fileInfos = append(fileInfos, fileInfo{
			path: filepath.ToSlash(filePath),
			span: node.Span,
			hash: src.Hash,
		})
	}
	sort.Slice(fileInfos, func(i, j int) bool {
		return fileInfos[i].path < fileInfos[j].path
	})

	var contentHash project.Digest
	if len(fileInfos) == 1 {
		contentHash = fileInfos[0].hash
	} else {
		digests := make([]project.Digest, 0, len(fileInfos))
		for _, info := range fileInfos {
			digests = append(digests, info.hash)
		}
		contentHash = combineModuleContent(digests)
	}

	fileMetas := make([]project.ModuleFileMeta, 0, len(fileInfos))
	for _, info := range fileInfos {
		fileMetas = append(fileMetas, project.ModuleFileMeta{
			Path: info.path,
			Span: info.span,
			Hash: info.hash,
		})
	}

	meta := &project.ModuleMeta{
		Name:            moduleName,
		Path:            fullPath,
		Dir:             strings.Trim(filepath.ToSlash(normDir), "/"),
		Kind:            kind,
		NoStd:           hasNoStd && !hasStd,
		HasModulePragma: hasPragma,
		Span:            files[0].node.Span,
		Imports:         imports,
		Files:           fileMetas,
		ContentHash:     contentHash,
	}

	return meta, true
}

// collectImports reads every import item out of fileNode and resolves
// each to a normalized module path. The teacher's version filtered
// candidate paths (e.g. `import foo::bar;` naming either a `foo/bar.sg`
// file or a `bar` item re-exported from `foo`) by stat-ing the
// filesystem for each candidate; with no filesystem-backed module graph
// in corec, that disambiguation has nothing to check against, so every
// import is recorded at its most specific resolved path and leaves
// existence validation to whatever module graph the caller builds on top
// (see internal/project/dag).
func collectImports(
	fs *source.FileSet,
	builder *ast.Builder,
	fileNode *ast.File,
	baseDir string,
	mapping *project.ModuleMapping,
	reporter diag.Reporter,
) []project.ImportMeta {
	if builder == nil || fileNode == nil {
		return nil
	}
	fileSpan := fileNode.Span
	srcFile := fs.Get(fileSpan.File)

	modulePath := logicalPathForFile(srcFile.Path, baseDir, mapping)

	fullModulePath, err := project.NormalizeModulePath(modulePath)
	if err != nil {
		if reporter != nil {
			reporter.Report(
				diag.ProjInvalidModulePath,
				diag.SevError,
				fileSpan,
				fmt.Sprintf("invalid module path %q: %v", modulePath, err),
				nil,
				nil,
			)
		}
		return nil
	}

	interner := builder.StringsInterner
	imports := make([]project.ImportMeta, 0, len(fileNode.Items))

	for _, itemID := range fileNode.Items {
		item := builder.Items.Get(itemID)
		if item == nil || item.Kind != ast.ItemImport {
			continue
		}
		importItem, ok := builder.Items.Import(itemID)
		if !ok {
			continue
		}
		if len(importItem.Module) == 0 {
			continue
		}
		segments := make([]string, 0, len(importItem.Module))
		valid := true
		for _, segID := range importItem.Module {
			if segID == source.NoStringID {
				valid = false
				break
			}
			seg, ok := interner.Lookup(segID)
			if !ok {
				valid = false
				break
			}
			segments = append(segments, seg)
		}
		if !valid || len(segments) == 0 {
			continue
		}

		rawPath := strings.Join(segments, "/")
		normImport, err := project.ResolveImportPath(fullModulePath, baseDir, segments)
		if err != nil {
			if reporter != nil {
				reporter.Report(
					diag.ProjInvalidImportPath,
					diag.SevError,
					item.Span,
					fmt.Sprintf("invalid import path %q: %v", rawPath, err),
					nil,
					nil,
				)
			}
			continue
		}

		imports = append(imports, project.ImportMeta{
			Path: normImport,
			Span: item.Span,
		})
	}

	return imports
}

func combineModuleContent(parts []project.Digest) project.Digest {
	if len(parts) == 0 {
		return project.Digest{}
	}
	acc := parts[0]
	for i := 1; i < len(parts); i++ {
		acc = combineDigest(acc, parts[i])
	}
	return acc
}
