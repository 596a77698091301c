// Package constants centralizes shared file permissions and fetch limits so
// behaviour stays consistent across commands and packages.
package constants
