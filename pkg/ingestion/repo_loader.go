// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package ingestion

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"log/slog"
)

var (
	// sshGitURLPattern admits git@host:path and ssh:// remotes.
	sshGitURLPattern = regexp.MustCompile(`^(git@|ssh://)[\w.\-@:/%]+$`)

	// shellMetaPattern matches bytes that must never reach an exec
	// argument assembled from a remote URL.
	shellMetaPattern = regexp.MustCompile(`[;&|$` + "`" + `\n\r\\]`)
)

// RepoSource names where a repository's contents come from: a remote git
// URL to clone, or a path already present on disk.
type RepoSource struct {
	Type  string // "git_url" or "local_path"
	Value string
}

// RepoLoader materializes a repository's file set for the pipeline.
// Remote sources are shallow-cloned into temp directories that live
// until Close.
type RepoLoader struct {
	logger     *slog.Logger
	tempDirs   []string
	tempDirsMu sync.Mutex
}

// NewRepoLoader constructs a loader.
func NewRepoLoader(logger *slog.Logger) *RepoLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &RepoLoader{logger: logger}
}

// Close removes every temp clone directory this loader created.
func (rl *RepoLoader) Close() error {
	rl.tempDirsMu.Lock()
	defer rl.tempDirsMu.Unlock()

	var lastErr error
	for _, dir := range rl.tempDirs {
		if err := os.RemoveAll(dir); err != nil {
			rl.logger.Warn("repo.cleanup.error", "dir", dir, "err", err)
			lastErr = err
		}
	}
	rl.tempDirs = nil
	return lastErr
}

// LoadResult is the materialized file set for one repository.
type LoadResult struct {
	RootPath    string // absolute repo root
	Files       []FileInfo
	FileCount   int
	TotalSize   int64
	Languages   map[string]int // language -> file count
	SkipReasons map[string]int // reason -> count ("excluded", "too_large", ...)
}

// FileInfo describes one candidate source file.
type FileInfo struct {
	Path     string // relative to repo root, slash-separated
	FullPath string // absolute
	Size     int64
	Language string // from extension; "" when unrecognized
}

// LoadRepository resolves source to a root directory (cloning if
// remote), walks it, and returns every file surviving the exclude globs
// and size limit along with per-language and skip statistics.
func (rl *RepoLoader) LoadRepository(source RepoSource, excludeGlobs []string, maxFileSize int64) (*LoadResult, error) {
	var rootPath string
	var err error

	switch source.Type {
	case "git_url":
		rootPath, err = rl.cloneGitRepo(source.Value)
		if err != nil {
			return nil, fmt.Errorf("clone git repo: %w", err)
		}
	case "local_path":
		rootPath, err = filepath.Abs(source.Value)
		if err != nil {
			return nil, fmt.Errorf("resolve local path: %w", err)
		}
		if err := validateLocalPath(rootPath); err != nil {
			return nil, fmt.Errorf("invalid local path: %w", err)
		}
		info, err := os.Stat(rootPath)
		if err != nil {
			return nil, fmt.Errorf("stat local path: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("local path is not a directory: %s", rootPath)
		}
	default:
		return nil, fmt.Errorf("unsupported repo source type: %q", source.Type)
	}

	rl.logger.Info("repo.load.start", "root", rootPath, "type", source.Type)

	files, skipReasons, err := rl.walkRepository(rootPath, excludeGlobs, maxFileSize)
	if err != nil {
		return nil, fmt.Errorf("walk repository: %w", err)
	}

	var totalSize int64
	languages := make(map[string]int)
	for _, f := range files {
		totalSize += f.Size
		if f.Language != "" {
			languages[f.Language]++
		}
	}

	rl.logger.Info("repo.load.complete", "files", len(files), "total_size", totalSize, "languages", languages)
	return &LoadResult{
		RootPath:    rootPath,
		Files:       files,
		FileCount:   len(files),
		TotalSize:   totalSize,
		Languages:   languages,
		SkipReasons: skipReasons,
	}, nil
}

// validateGitURL rejects URLs that could smuggle shell metacharacters or
// embedded credentials into the clone command.
func validateGitURL(gitURL string) error {
	if gitURL == "" {
		return fmt.Errorf("git URL is empty")
	}
	if shellMetaPattern.MatchString(gitURL) {
		return fmt.Errorf("git URL contains shell metacharacters")
	}

	switch {
	case strings.HasPrefix(gitURL, "http://"), strings.HasPrefix(gitURL, "https://"):
		parsed, err := url.Parse(gitURL)
		if err != nil {
			return fmt.Errorf("invalid URL: %w", err)
		}
		if parsed.Host == "" {
			return fmt.Errorf("git URL missing host")
		}
		if parsed.User != nil {
			if _, hasPassword := parsed.User.Password(); hasPassword {
				return fmt.Errorf("git URL must not embed a password")
			}
		}
		return nil
	case strings.HasPrefix(gitURL, "git@"), strings.HasPrefix(gitURL, "ssh://"):
		if !sshGitURLPattern.MatchString(gitURL) {
			return fmt.Errorf("malformed SSH git URL")
		}
		return nil
	case strings.HasPrefix(gitURL, "file://"):
		return nil
	}
	return fmt.Errorf("unsupported git URL scheme: want https://, git@, ssh:// or file://")
}

// cloneGitRepo shallow-clones gitURL into a fresh temp directory and
// registers it for cleanup at Close.
func (rl *RepoLoader) cloneGitRepo(gitURL string) (string, error) {
	if err := validateGitURL(gitURL); err != nil {
		return "", fmt.Errorf("invalid git URL: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "cie-ingest-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}

	logURL := gitURL
	if parsed, err := url.Parse(gitURL); err == nil {
		parsed.RawQuery = ""
		if parsed.User != nil {
			parsed.User = url.User("***")
		}
		logURL = parsed.String()
	}
	rl.logger.Info("repo.clone.start", "url", logURL, "dir", tmpDir)

	// #nosec G204 -- gitURL validated above
	cmd := exec.Command("git", "clone", "--depth", "1", "--quiet", gitURL, tmpDir)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", fmt.Errorf("git clone: %w", err)
	}

	rl.tempDirsMu.Lock()
	rl.tempDirs = append(rl.tempDirs, tmpDir)
	rl.tempDirsMu.Unlock()
	return tmpDir, nil
}

// validateLocalPath rejects traversal attempts, the filesystem root, and
// sensitive system directories. It does not pin to a base directory;
// callers with untrusted input should add their own allowlist.
func validateLocalPath(path string) error {
	if filepath.Clean(path) != path {
		return fmt.Errorf("path is not clean: %s", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve absolute path: %w", err)
	}
	if strings.Contains(abs, "..") || !filepath.IsAbs(abs) {
		return fmt.Errorf("path did not resolve cleanly: %s", abs)
	}
	if abs == "" || abs == "/" {
		return fmt.Errorf("refusing to load the filesystem root")
	}
	for _, sensitive := range []string{"/etc", "/sys", "/proc", "/dev", "/boot", "/root"} {
		if abs == sensitive || strings.HasPrefix(abs, sensitive+"/") {
			return fmt.Errorf("path is inside %s", sensitive)
		}
	}
	return nil
}

// walkRepository collects candidate files under rootPath. Excluded
// directories are pruned whole; unreadable entries are logged and
// skipped, never fatal.
func (rl *RepoLoader) walkRepository(rootPath string, excludeGlobs []string, maxFileSize int64) ([]FileInfo, map[string]int, error) {
	var files []FileInfo
	skipReasons := make(map[string]int)

	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			rl.logger.Warn("repo.walk.error", "path", path, "err", err)
			return nil
		}
		relPath, relErr := filepath.Rel(rootPath, path)
		if relErr != nil {
			return nil
		}

		if d.IsDir() {
			if shouldExclude(relPath, excludeGlobs) {
				skipReasons["excluded_dir"]++
				return filepath.SkipDir
			}
			return nil
		}
		if shouldExclude(relPath, excludeGlobs) {
			skipReasons["excluded"]++
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		if maxFileSize > 0 && info.Size() > maxFileSize {
			skipReasons["too_large"]++
			rl.logger.Warn("repo.walk.skip_large", "path", relPath, "size", info.Size(), "limit", maxFileSize)
			return nil
		}

		files = append(files, FileInfo{
			Path:     filepath.ToSlash(relPath),
			FullPath: path,
			Size:     info.Size(),
			Language: detectLanguageFromPath(relPath),
		})
		return nil
	})
	return files, skipReasons, err
}

// shouldExclude reports whether path matches any exclude glob.
func shouldExclude(path string, excludeGlobs []string) bool {
	normalized := filepath.ToSlash(path)
	for _, pattern := range excludeGlobs {
		if matchesGlob(normalized, pattern) {
			return true
		}
	}
	return false
}

// matchesGlob matches path against pattern with *, **, ? and character
// classes. A pattern without a leading ** still matches at any depth
// (implicit **/ prefix), which is what exclude lists like "vendor/**" or
// "*.min.js" expect.
func matchesGlob(path, pattern string) bool {
	pattern = filepath.ToSlash(pattern)

	// dir/** excludes the directory itself and everything beneath it, at
	// any depth.
	if strings.HasSuffix(pattern, "/**") {
		prefix := strings.TrimSuffix(pattern, "/**")
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
		parts := strings.Split(path, "/")
		for i := range parts {
			sub := strings.Join(parts[i:], "/")
			if sub == prefix || strings.HasPrefix(sub, prefix+"/") {
				return true
			}
		}
	}

	// Bare *.ext matches on extension alone.
	if strings.HasPrefix(pattern, "*.") && !strings.Contains(pattern, "/") {
		return strings.HasSuffix(path, pattern[1:])
	}

	if strings.HasPrefix(pattern, "**/") {
		suffix := pattern[3:]
		if path == suffix || strings.HasSuffix(path, "/"+suffix) {
			return true
		}
		if globMatch(path, suffix) {
			return true
		}
		parts := strings.Split(path, "/")
		for i := range parts {
			if globMatch(strings.Join(parts[i:], "/"), suffix) {
				return true
			}
		}
		return false
	}

	// Literal patterns match exactly, as a trailing component, or as a
	// directory prefix.
	if !strings.ContainsAny(pattern, "*?[") {
		return path == pattern || strings.HasSuffix(path, "/"+pattern) || strings.HasPrefix(path, pattern+"/")
	}

	if globMatch(path, pattern) {
		return true
	}
	parts := strings.Split(path, "/")
	for i := range parts {
		if globMatch(strings.Join(parts[i:], "/"), pattern) {
			return true
		}
	}
	return false
}

// globMatch matches a single path against a single pattern.
func globMatch(path, pattern string) bool {
	return globMatchAt(path, pattern, 0, 0)
}

func globMatchAt(path, pattern string, pi, pti int) bool {
	for pi < len(path) || pti < len(pattern) {
		if pti >= len(pattern) {
			return false
		}

		// ** crosses separators.
		if pti+1 < len(pattern) && pattern[pti] == '*' && pattern[pti+1] == '*' {
			next := pti + 2
			if next < len(pattern) && pattern[next] == '/' {
				next++
			}
			if next >= len(pattern) {
				return true
			}
			for i := pi; i <= len(path); i++ {
				if globMatchAt(path, pattern, i, next) {
					return true
				}
			}
			return false
		}

		// * stays within one component.
		if pattern[pti] == '*' {
			next := pti + 1
			if next >= len(pattern) {
				for i := pi; i <= len(path); i++ {
					if i == len(path) {
						return true
					}
					if path[i] == '/' {
						return false
					}
				}
				return false
			}
			for i := pi; i <= len(path); i++ {
				if i > pi && path[i-1] == '/' {
					break
				}
				if globMatchAt(path, pattern, i, next) {
					return true
				}
			}
			return false
		}

		if pattern[pti] == '?' {
			if pi >= len(path) || path[pi] == '/' {
				return false
			}
			pi++
			pti++
			continue
		}

		if pattern[pti] == '[' {
			if pi >= len(path) {
				return false
			}
			closeIdx := pti + 1
			if closeIdx < len(pattern) && (pattern[closeIdx] == '!' || pattern[closeIdx] == '^') {
				closeIdx++
			}
			if closeIdx < len(pattern) && pattern[closeIdx] == ']' {
				closeIdx++
			}
			for closeIdx < len(pattern) && pattern[closeIdx] != ']' {
				closeIdx++
			}
			if closeIdx >= len(pattern) {
				// Unterminated class: treat [ as a literal.
				if path[pi] != '[' {
					return false
				}
				pi++
				pti++
				continue
			}
			if !classMatch(path[pi], pattern[pti+1:closeIdx]) {
				return false
			}
			pi++
			pti = closeIdx + 1
			continue
		}

		if pi >= len(path) || path[pi] != pattern[pti] {
			return false
		}
		pi++
		pti++
	}
	return pi == len(path) && pti == len(pattern)
}

// classMatch evaluates one character against a [...] class body,
// honoring ranges and !/^ negation.
func classMatch(c byte, class string) bool {
	if class == "" {
		return false
	}
	negated := false
	idx := 0
	if class[0] == '!' || class[0] == '^' {
		negated = true
		idx = 1
	}
	matched := false
	for idx < len(class) {
		if idx+2 < len(class) && class[idx+1] == '-' {
			if c >= class[idx] && c <= class[idx+2] {
				matched = true
			}
			idx += 3
			continue
		}
		if c == class[idx] {
			matched = true
		}
		idx++
	}
	if negated {
		return !matched
	}
	return matched
}

// languageByExtension covers the languages the pipeline can parse plus a
// few the loader still counts for repository statistics.
var languageByExtension = map[string]string{
	".go":    "go",
	".py":    "python",
	".js":    "javascript",
	".jsx":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".java":  "java",
	".proto": "protobuf",
	".rs":    "rust",
	".rb":    "ruby",
	".c":     "c",
	".h":     "c",
	".cc":    "cpp",
	".cpp":   "cpp",
	".hpp":   "cpp",
	".cs":    "csharp",
	".kt":    "kotlin",
	".php":   "php",
	".swift": "swift",
	".sh":    "bash",
}

// detectLanguageFromPath maps a file extension to a language tag.
func detectLanguageFromPath(path string) string {
	return languageByExtension[strings.ToLower(filepath.Ext(path))]
}
