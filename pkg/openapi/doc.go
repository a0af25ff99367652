// Package openapi turns the request body of an OpenAPI 3 operation into form
// field descriptors. Objects become groups, arrays of objects become repeated
// groups and primitives map onto inputs by type, format and enum. Schema
// keywords such as minLength or pattern become validators.
//
// Documents are parsed with kin-openapi; the package exposes only field and
// definition types so callers never handle kin-openapi structs.
package openapi
