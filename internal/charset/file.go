// Package charset loads character sets from files.
package charset

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadFile reads a character set from path. Lines are concatenated; blank
// lines and lines starting with '#' are skipped.
func LoadFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only character file.
			_ = cerr
		}
	}()

	var b strings.Builder
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		b.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	if len(Split(b.String())) == 0 {
		return "", fmt.Errorf("character file is empty")
	}
	return b.String(), nil
}
