package membership

import "github.com/xraph/membership/id"

// ID is the identifier type for payment references, audit events and requests.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
