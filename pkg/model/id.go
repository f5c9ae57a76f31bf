package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// idLen is the number of hex characters kept from the SHA-256 digest.
// 64 bits is plenty for the entity counts a single repository produces.
const idLen = 16

// stableID derives a deterministic identifier from the given seed parts.
// The same parts always produce the same ID, which is what makes rescans of
// an unchanged tree byte-identical and therefore cacheable downstream.
func stableID(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(sum[:])[:idLen]
}

// AssemblyID derives the stable identifier for an assembly.
//
// Kind is part of the seed: two assemblies sharing a root (for example a
// scripts-kind bucket and a root-kind assembly, both rooted at ".") must
// still get distinct IDs.
func AssemblyID(name, rootRelPath string, kind Kind) string {
	return stableID("assembly", name, rootRelPath, string(kind))
}

// PackageID derives the stable identifier for a package. assemblyID is the
// owning assembly's ID or empty for unassigned packages; relPath is the
// package directory relative to the owning assembly root, or to the repo
// root when unassigned.
func PackageID(assemblyID, relPath, name string) string {
	return stableID("package", assemblyID, relPath, name)
}
