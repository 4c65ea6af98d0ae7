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


// Package memory defines the tenant-scoped memory store contract and the
// retrieval formatter.
//
// The Store interface is what the ingestion engine writes to and the
// conversation pipeline reads from. Its search response shape is treated
// as a best-effort, versioned contract: different backends (and different
// versions of the same backend) wrap their hit sequences differently, so
// FormatSearchResults normalizes whatever comes back through an explicit,
// ordered fallback chain instead of assuming a stable schema.
//
// The in-process BadgerDB implementation lives in memory/badgerstore.
//
// # Thread Safety
//
// Store implementations must be safe for concurrent use; the ingestion
// engine issues independent writes from multiple workers at once.
package memory
