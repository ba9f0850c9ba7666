// Package output writes extraction results to disk.
package output
