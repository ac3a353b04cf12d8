// Package persistence stores per-device configuration snapshots: the
// desired configuration an operator assigned to an eNodeB and the last
// actual configuration read back from it.
//
// Two implementations are provided. FileStore keeps one JSON file per
// device and kind under a directory. SQLiteStore keeps both kinds in a
// single SQLite database.
package persistence
