// Package batch grades folders of answer sheets concurrently.
//
// Each sheet is independent: a file that cannot be decoded fails alone and
// the batch carries on. Results keep the order of the input paths.
package batch
