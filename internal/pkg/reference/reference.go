// internal/pkg/reference/reference.go
package reference

import "github.com/oklog/ulid/v2"

// Monotonic ULIDs keep references sortable by creation time, which the
// dashboards rely on for ordering.

func OrderNumber() string {
	return "ORD-" + ulid.Make().String()
}

func PaymentReference() string {
	return "PAY-" + ulid.Make().String()
}

func CertificateCode() string {
	return "GC-" + ulid.Make().String()
}
