package services

// Request error taxonomy. Handlers classify these with errors.As to pick the
// response status: InputError maps to 400, everything else to 500. A missing
// QR asset is deliberately not an error type; the layout engine recovers per
// item by drawing a placeholder.

// InputError reports a caller mistake: missing upload, unknown template,
// a CSV without usable rows.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return e.Msg }

// ParseError reports a CSV stream failure.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "parsing CSV: " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// GenerationError reports that a pipeline finished without producing any
// usable output, e.g. an invite batch whose PDFs are all empty.
type GenerationError struct {
	Msg string
}

func (e *GenerationError) Error() string { return e.Msg }

// FontError reports missing or unreadable font files. The request that hit
// it fails; the fonts are re-checked on the next request so an operator can
// fix the installation without a restart.
type FontError struct {
	File string
	Err  error
}

func (e *FontError) Error() string {
	if e.Err != nil {
		return "registering font " + e.File + ": " + e.Err.Error()
	}
	return "font file not found: " + e.File
}

func (e *FontError) Unwrap() error { return e.Err }
