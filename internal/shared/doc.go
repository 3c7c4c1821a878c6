// Package shared holds code used by several packages that belongs to none
// of them. The testutil subpackage provides log capture and package archive
// fixtures for tests.
package shared
