// Package imaging provides the image-side operations of the annotation audit.
//
// It loads and normalizes source images, crops annotation boxes out of them
// and reduces a cropped region to a color profile (average color plus a
// small dominant-color palette). All operations work on standard Go image
// types and use a coordinate system where (0,0) is the top-left corner, X
// increases rightward and Y increases downward.
//
// # Normalized Images
//
// Every image that leaves this package is an *image.NRGBA whose bounds start
// at (0,0). NRGBA keeps the color channels unpremultiplied, so semi-transparent
// pixels contribute their stored RGB values to color statistics.
//
// # Color Profiles
//
// ProfileRegion clusters region pixels with k-means in RGB space. Clustering
// uses a seeded random source, so the same region and options always produce
// the same palette. Percentages in a palette always sum to 1.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Crop and profile functions are
// stateless and may run concurrently on the same source image, since they
// only read from it.
package imaging
