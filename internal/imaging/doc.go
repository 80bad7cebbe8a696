// Package imaging provides the raster primitives used by the answer-sheet
// grading pipeline.
//
// This package implements the low-level operations the OMR stages are built
// from: decoding sheets from disk, grayscale conversion, median filtering,
// Otsu thresholding, Canny edge detection, perspective warping and simple
// drawing for annotated output. All operations work with standard Go
// image.Image types and use a coordinate system where (0,0) is at the
// top-left corner, X increases rightward, and Y increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, Min is inclusive and Max is exclusive (image.Rectangle)
//
// Images produced by this package (edge maps, binary masks, warps) always
// have their bounds starting at (0,0), regardless of the input's origin.
//
// # Binary Masks
//
// Binary masks are *image.Gray values holding only 0 (background) and 255
// (foreground). BinarizeInverse produces masks where dark ink is foreground.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Individual image operations
// are stateless and can be called concurrently on different images.
//
// # Error Handling
//
// Loading failures wrap ErrUnreadableImage so callers can distinguish a bad
// input file from other failures with errors.Is. Perspective solving fails
// with ErrDegenerateTransform when the corner correspondences are singular.
package imaging
