package inventory

import "errors"

// Validation errors returned by Engine operations. Callers match them with
// errors.Is; the catalog is unchanged whenever one is returned.
var (
	ErrPathNotExist   = errors.New("path does not exist")
	ErrNotDirectory   = errors.New("path is not a directory")
	ErrAlreadyPresent = errors.New("project already in catalog")
	ErrNotCustom      = errors.New("project not found or not custom")
	ErrNotFound       = errors.New("project not found")
	ErrNoCatalog      = errors.New("no catalog yet, run a scan first")
)
