// internal/app/system/csvutil/limits.go
package csvutil

// Limits for mentee CSV uploads. A full intake for one academic year is
// a few thousand rows at most.
const (
	MaxUploadSize = 5 << 20 // 5 MB
	MaxRows       = 10000
)
