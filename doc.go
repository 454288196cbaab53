// Package imgcv provides a typed multi channel image container with a region
// of interest, generic per element transforms, color and depth conversion, and
// an arithmetic, logic and threshold operation family.
//
// Image[C, D] is parameterized by a color model C (Gray, Bgr, Bgra, Rgb, Rgba,
// Hsv, Ycc, Xyz) and an element type D (uint8 or float32). Pixel kernels live
// in internal/native and work on untyped raster headers; operations that the
// kernels only support on single channel data are run channel by channel.
//
// Images are read and written as PNG, JPEG, BMP, TIFF (GIF and WebP decode
// only) and as scanline OpenEXR for float data. MarshalBinary produces a
// compact self describing record, see package imgstore for a database of them.
//
// Contract violations such as mismatched sizes or an out of range region of
// interest panic with one of the exported sentinel errors, I/O returns errors.
package imgcv
