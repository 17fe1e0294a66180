// Package service implements the tarea lifecycle: create, read, update,
// delete, and download workflows orchestrated across the key-value task
// store, the object store, and the notification topic.
//
// There is no transaction spanning the two stores. The workflows order
// their side effects so that validation happens before any mutation and
// attachment deletions complete before the task record is persisted;
// the remaining inconsistency windows are documented on each operation.
package service
