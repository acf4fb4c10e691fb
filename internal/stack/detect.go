// pattern: Imperative Shell

package stack

import (
	"errors"
	"fmt"
	"os"
)

// ErrInvalidPath is returned when the path to classify is missing, unreadable
// or not a directory.
var ErrInvalidPath = errors.New("invalid project path")

// Detect classifies the directory at path. It returns TagUnknown when nothing
// matches; it errors only when the directory itself cannot be inspected.
func Detect(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidPath, path, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrInvalidPath, path)
	}

	p, err := newProbe(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidPath, path, err)
	}

	for _, rule := range Rules {
		if tag, ok := rule.Detect(p); ok {
			return tag, nil
		}
	}
	return TagUnknown, nil
}
