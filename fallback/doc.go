// Package fallback collects regions that the text layer left empty and
// prepares them for an image-based recognizer.
//
// [Track] is pure bookkeeping: it splits a page's regions into those with
// text and those without, and returns the empty ones with the page metadata
// a recognizer needs to locate them.
//
//	empty := fallback.Track(page, regions)
//	if len(empty.Regions) > 0 {
//	    pending = append(pending, empty)
//	}
//
// Recognition itself is external. [Run] only crops each empty region out of a
// caller-supplied page raster with a [Cropper], hands the PNG bytes to a
// [Recognizer] and normalizes what comes back.
package fallback
