// Package store defines the persistence interfaces the service layer
// depends on: the key-value task store and the object store holding
// attachment bytes. Implementations live under internal/platform.
package store
