package ocr

type config struct {
	languages []string
	mode      PageSegMode
}

func defaultConfig() config {
	return config{
		languages: []string{"eng"},
		mode:      PSM_SINGLE_BLOCK,
	}
}

// Option configures a Client.
type Option func(*config)

// WithLanguages sets the Tesseract language codes, e.g. "ell", "eng".
func WithLanguages(langs ...string) Option {
	return func(c *config) {
		c.languages = append([]string(nil), langs...)
	}
}

// WithPageSegMode sets the page segmentation mode. Region crops usually hold
// one block of text, which is the default.
func WithPageSegMode(mode PageSegMode) Option {
	return func(c *config) {
		c.mode = mode
	}
}
