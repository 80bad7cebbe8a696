// Package grading loads answer keys and scores read answers against them.
//
// A key file holds one or more named versions (one per sheet set). The
// special version "flat" treats the file's top-level mapping as the key.
// Grade is a pure function of the answers and the key: it iterates in
// question order and never depends on map ordering.
package grading
