package pipeline

// Defaults for document extraction. The model can be overridden via
// configuration.
const (
	// DefaultModelName is the Gemini model used for statement extraction.
	DefaultModelName = "gemini-2.5-flash"

	// defaultMIMEImage is assumed for inline documents that are neither
	// declared nor sniffed as PDF.
	defaultMIMEImage = "image/jpeg"

	// yieldEstimateRate is the placeholder yield heuristic applied by the
	// text-format adapters. OFX and the fixed-width bank layout carry no
	// yield or withholding detail, so 10% of the movement stands in until
	// the user adjusts it.
	yieldEstimateRate = 0.10
)
