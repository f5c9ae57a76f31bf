// Package io provides JSON export and import for resolved repository
// models.
//
// The on-disk format is a single document wrapping the model with a schema
// version:
//
//	{
//	  "schema_version": 1,
//	  "model": {
//	    "repo_name": "...",
//	    "assemblies": [...],
//	    "packages": [...]
//	  }
//	}
//
// Export is deterministic: equal models produce byte-identical files, which
// makes exports diffable and safe to commit. Import validates referential
// integrity (unique package IDs, assembly member lists only naming packages
// present in the document) so downstream consumers can index by ID without
// re-checking.
package io
