package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	// Get the directory containing the file
	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// ReadStatements returns the non-blank lines of a statement file with
// surrounding whitespace trimmed. Lines starting with '#' are comments.
func ReadStatements(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var stmts []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		stmts = append(stmts, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return stmts, nil
}

// ParseBindings parses "a=3,b=-10" into cell values. An empty string yields
// an empty map.
func ParseBindings(s string) (map[string]int16, error) {
	vals := make(map[string]int16)
	if strings.TrimSpace(s) == "" {
		return vals, nil
	}
	for _, pair := range strings.Split(s, ",") {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("binding %q: expected name=value", pair)
		}
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 16)
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", pair, err)
		}
		vals[name] = int16(v)
	}
	return vals, nil
}
