package service

import "strings"

// NormalizeFolderPath trims whitespace and any trailing slashes from a
// folder path. Root stays "/"; blank input normalizes to "/".
func NormalizeFolderPath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "/" {
		return "/"
	}
	trimmed = strings.TrimRight(trimmed, "/")
	if trimmed == "" {
		return "/"
	}
	return trimmed
}

// NormalizeFilePath resolves a caller-supplied target path to a full file
// path. A folder-style path ending in "/" gets the file name appended;
// anything else is used verbatim. Blank input stays blank so callers can
// reject it.
func NormalizeFilePath(path, fileName string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return trimmed
	}
	if strings.HasSuffix(trimmed, "/") {
		return trimmed + fileName
	}
	return trimmed
}

// FolderPrefix maps a normalized folder path to the LIKE-style prefix
// matching its subtree. Root already ends in "/" and is its own prefix.
func FolderPrefix(normalized string) string {
	if normalized == "/" {
		return "/"
	}
	return normalized + "/"
}

// JoinFolderPath joins a normalized folder path with a child segment
// without doubling the root slash.
func JoinFolderPath(parent, child string) string {
	if parent == "/" {
		return "/" + child
	}
	return parent + "/" + child
}
