package scanner

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrDomainList means the primary domain list could not be loaded. The scan
// does not start.
var ErrDomainList = errors.New("domain list unavailable")

// LoadDomains reads one domain per line, trimming whitespace and skipping
// blank lines. Order and duplicates are kept.
func LoadDomains(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var domains []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			domains = append(domains, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return domains, nil
}
