// Package domain defines the core types shared across the access layer.
//
// User is the typed row of the user_data table; Record is the generic
// column-to-scalar row used by the raw query surface and the result cache.
// The package has no database or infrastructure dependencies.
package domain
