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

import "errors"

// Domain validation errors
var (
	// ErrEmptyFile indicates an upload with no bytes.
	ErrEmptyFile = errors.New("file is empty")

	// ErrUnsupportedExtension indicates a file extension outside a loader's supported set.
	ErrUnsupportedExtension = errors.New("file extension not supported")

	// ErrMalformedDocument indicates content that fails to parse as the expected structure.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrEmptyTenant indicates a missing tenant identifier.
	ErrEmptyTenant = errors.New("tenant id cannot be empty")

	// ErrEmptyContent indicates an item with no content.
	ErrEmptyContent = errors.New("content cannot be empty")
)
