package dhcpdutil

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Accepts the environment variables.
type EnvironmentVariableSetter interface {
	Set(key, value string) error
}

// Sets the variables in the current process environment.
type processEnvironmentVariableSetter struct{}

// Constructs the setter writing to the process environment.
func NewProcessEnvironmentVariableSetter() EnvironmentVariableSetter {
	return &processEnvironmentVariableSetter{}
}

// Implements the EnvironmentVariableSetter interface.
func (s *processEnvironmentVariableSetter) Set(key, value string) error {
	return errors.Wrapf(os.Setenv(key, value), "cannot set the '%s' environment variable", key)
}

// Single entry of the environment file.
type environmentEntry struct {
	key   string
	value string
}

// Loads all entries from the environment file into the setters. The
// entries are set in the file order.
func LoadEnvironmentFileToSetter(path string, setters ...EnvironmentVariableSetter) error {
	entries, err := loadEnvironmentFile(path)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		for _, setter := range setters {
			if err = setter.Set(entry.key, entry.value); err != nil {
				return errors.WithMessagef(err, "cannot set value for key: '%s'", entry.key)
			}
		}
	}
	return nil
}

// Loads all entries from the environment file.
func loadEnvironmentFile(path string) ([]environmentEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open the '%s' environment file", path)
	}
	defer file.Close()
	return loadEnvironmentEntries(file)
}

// Loads all entries from a given reader. The later duplicates overwrite
// the values of the earlier entries but keep their positions.
func loadEnvironmentEntries(reader io.Reader) ([]environmentEntry, error) {
	var entries []environmentEntry
	indexes := make(map[string]int)
	scanner := bufio.NewScanner(reader)

	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		key, value, err := loadEnvironmentLine(scanner.Text())
		if err != nil {
			return nil, errors.WithMessagef(err, "invalid line %d of environment file", lineIdx)
		}
		if key == "" {
			// Comment or empty line.
			continue
		}
		if idx, ok := indexes[key]; ok {
			entries[idx].value = value
			continue
		}
		indexes[key] = len(entries)
		entries = append(entries, environmentEntry{key: key, value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "cannot read the environment file")
	}
	return entries, nil
}

// Parses a line of the environment file.
func loadEnvironmentLine(line string) (string, string, error) {
	line = strings.TrimSpace(line)

	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", nil
	}

	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", errors.Errorf("line must contain the key and value separated by the '=' sign")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", errors.Errorf("key cannot be empty")
	}

	return key, strings.TrimSpace(value), nil
}
