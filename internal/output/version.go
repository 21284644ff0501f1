package output

// SchemaVersion is the version of the NDJSON result and error records.
// Bump it on any incompatible change so consumers can detect it.
const SchemaVersion = 1
