// Package catalog defines the domain records of the circulation system:
// books, members, and loan transactions, together with the canonical code
// formats printed on QR labels and the overdue policy.
//
// The package is pure data and policy; it has no knowledge of storage or
// scanning.
package catalog
