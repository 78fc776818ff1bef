// Package geometry holds the value types shared by the annotation audit:
// axis-aligned boxes in image pixel space and image dimensions.
//
// Coordinates follow the usual image convention: origin at the top-left,
// X grows rightward and Y grows downward. Values may be fractional since
// labeling tools export sub-pixel boxes.
package geometry
