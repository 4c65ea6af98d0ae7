package badgerstore

import (
	"fmt"
	"strings"

	"github.com/poiesic/recollect/core"
)

// Key prefix for memory item records. Keys are tenant-scoped so that a
// single prefix iteration covers exactly one tenant's items:
// memitem:<tenant>:<id>
const memoryItemPrefix = "memitem"

// tenantEscaper keeps the key separator out of the tenant segment.
// Tenant IDs may contain ":"; written raw, tenant "alice:sub" would
// fall under tenant "alice"'s iteration prefix.
var tenantEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

// makeItemKey generates the primary key for a memory item.
func makeItemKey(tenantID string, id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%s:%d", memoryItemPrefix, tenantEscaper.Replace(tenantID), id))
}

// makeTenantPrefix generates the iteration prefix covering all of a
// tenant's items.
func makeTenantPrefix(tenantID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", memoryItemPrefix, tenantEscaper.Replace(tenantID)))
}
