// Package domain contains the core entities and validation rules
// for the task management system.
package domain
