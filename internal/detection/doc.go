// Package detection provides contour extraction and polygon geometry for
// binary images.
//
// The answer-sheet pipeline uses it twice: to find the sheet boundary among
// edge pixels, and to find bubble marks in the thresholded sheet.
//
// # Contours
//
// FindComponents groups 8-connected foreground pixels and keeps the member
// points, which is what polygon fitting needs. FindExternalContours keeps
// only outermost shapes: a component lying inside a hole of another one is
// merged into that container's filled region, and each returned contour
// carries a mask of exactly the area its outline encloses.
//
// # Polygons
//
// ConvexHull, PolygonArea, Perimeter and ApproxPolygon (Douglas-Peucker)
// turn a point cloud into a simplified outline; a four-vertex result is a
// quadrilateral candidate.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes use inclusive Min and exclusive Max
//
// # Performance Considerations
//
// Labeling is linear in the number of pixels. Filling a contour costs its
// bounding-box area, so very large components (an unrectified photo's
// background) dominate the runtime on pathological inputs.
package detection
