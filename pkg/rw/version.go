package rw

import "fmt"

// LibraryVersion unpacks the library id stored in a chunk header version
// field into the 0x3XYZZ form (3.X.Y.ZZ). Pre-3.1 streams stored the id
// directly shifted right by 8 bits.
func LibraryVersion(version uint32) uint32 {
	if version&0xFFFF0000 == 0 {
		return version << 8
	}
	return (((version >> 14) & 0x3FF00) + 0x30000) | ((version >> 16) & 0x3F)
}

// Build returns the build number packed in a version field, or 0 for
// pre-3.1 streams which carry none.
func Build(version uint32) uint32 {
	if version&0xFFFF0000 == 0 {
		return 0
	}
	return version & 0xFFFF
}

// VersionString formats a version field as "3.6.0.3".
func VersionString(version uint32) string {
	lib := LibraryVersion(version)
	return fmt.Sprintf("%d.%d.%d.%d",
		(lib>>16)&0xF, (lib>>12)&0xF, (lib>>8)&0xF, lib&0xFF)
}
