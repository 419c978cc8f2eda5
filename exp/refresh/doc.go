// Package refresh re-reads the Value attribute of every variable in a
// resolved member tree.
//
// Refresher walks only members that are already cached under the root; it
// never browses. Reads run concurrently up to a configurable limit and a
// failed read does not stop the others. Each Result lists the nodes whose
// value or status differs from the locally cached one.
//
// This package is EXPERIMENTAL and its API may change before v1.
package refresh
