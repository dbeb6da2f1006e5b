// Package model provides the shared data types for reconciling detected
// layout regions with a document's native text layer.
//
// # Pages
//
// A [Page] carries its index and two dimension pairs: the size of the raster
// image the layout detector saw (pixels) and the size of the document page
// (points). Both must be strictly positive; [Page.Validate] reports a
// [ConfigurationError] otherwise.
//
// # Regions and Tokens
//
// A [Region] is a labeled, scored box in detector pixel space that also
// carries its point-space box once converted. A [Token] is a single word
// from the text layer, already in point space.
//
// Collaborator input arrives as [RawRegion] and [RawToken], whose pointer
// fields make a missing field distinguishable from a zero one:
//
//	region, err := raw.Region(pageIndex, i)
//	if errors.Is(err, model.ErrDataIntegrity) {
//	    // drop just this record
//	}
//
// # Geometry
//
//   - [Rect] - x0,y0,x1,y1 box with intersection, area and validity checks
//   - [Point] - 2D point
//   - [Matrix] - 2D affine transformation matrix
//
// # Errors
//
// The error taxonomy is [ConfigurationError] (page is skipped),
// [DataIntegrityError] (record is dropped) and [ErrGeometry] (box is ignored).
package model
