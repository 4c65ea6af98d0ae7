// Copyright 2025 Poiesic Systems
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


package core

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Extension returns the lower-cased file extension of filename, including
// the leading dot. Returns "" when the filename has no extension.
func Extension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// ValidateTenant validates a tenant identifier.
//
// Validation rules:
//   - must not be empty or whitespace-only
func ValidateTenant(tenantID string) error {
	if strings.TrimSpace(tenantID) == "" {
		return ErrEmptyTenant
	}
	return nil
}

// ValidateUpload performs the shared fast checks every loader runs before parsing.
//
// Validation rules:
//   - content must not be empty
//   - the filename's extension must be in the supported set
func ValidateUpload(content []byte, filename string, supported []string) error {
	if len(content) == 0 {
		return ErrEmptyFile
	}

	ext := Extension(filename)
	for _, s := range supported {
		if ext == s {
			return nil
		}
	}
	return fmt.Errorf("%w: got %q, expected one of %v", ErrUnsupportedExtension, ext, supported)
}
