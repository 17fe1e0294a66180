// Package api provides HTTP handlers for the API.
package api
