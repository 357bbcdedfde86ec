package libs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MergeMappings writes the sorted union of the lines of every existing input
// mapping file to out. It returns false, writing nothing, when no input exists.
func MergeMappings(out string, inputs ...string) (bool, error) {
	lines := make(map[string]struct{})
	found := false

	for _, in := range inputs {
		f, err := os.Open(in)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("failed to open mapping %s: %w", in, err)
		}
		found = true

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimRight(scanner.Text(), "\r")
			if line == "" {
				continue
			}
			lines[line] = struct{}{}
		}
		err = scanner.Err()
		f.Close()
		if err != nil {
			return false, fmt.Errorf("failed to read mapping %s: %w", in, err)
		}
	}

	if !found {
		return false, nil
	}

	sorted := make([]string, 0, len(lines))
	for l := range lines {
		sorted = append(sorted, l)
	}
	sort.Strings(sorted)

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return false, fmt.Errorf("failed to create directory for %s: %w", out, err)
	}
	var b strings.Builder
	for _, l := range sorted {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(out, []byte(b.String()), 0644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", out, err)
	}
	return true, nil
}
