// Package regions filters detected layout regions and sorts the survivors
// into semantic buckets.
//
// Classification is an explicit, total mapping from label to [Category]:
// every label maps to exactly one of [Text], [Table], [Math] or
// [Unclassified]. Unclassified labels are dropped without error, since the
// detector's label universe is open-ended.
//
//	tax, err := regions.NewTaxonomy(
//	    []string{"text", "title", "paragraph"},
//	    []string{"table"},
//	    []string{"formula", "equation"},
//	)
//	cfg := regions.FilterConfig{Threshold: 0.65, Unwanted: []string{"image"}, Taxonomy: tax}
//	classified, err := regions.Filter(page, detected, cfg)
//
// Filtering preserves detection order inside every bucket.
package regions
