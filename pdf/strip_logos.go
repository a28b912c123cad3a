package pdf

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// StripOptions configures logo detection.
type StripOptions struct {
	// Threshold is the minimum occurrence count for a logo. Zero means DefaultRepeatThreshold.
	Threshold int
	// Hasher defaults to PerceptionHasher.
	Hasher Hasher
}

// withDefaults fills zero values and validates the threshold.
func (o StripOptions) withDefaults() (StripOptions, error) {
	if o.Threshold == 0 {
		o.Threshold = DefaultRepeatThreshold
	}
	if o.Threshold < 2 {
		return o, inputErrorf("repeat threshold must be at least 2, got %d", o.Threshold)
	}
	if o.Hasher == nil {
		o.Hasher = PerceptionHasher{}
	}
	return o, nil
}

// StripResult summarizes a logo removal run.
type StripResult struct {
	// LogosDetected counts distinct logo fingerprints, not removed instances.
	LogosDetected int           `json:"logos_detected"`
	ImagesRemoved int           `json:"images_removed"`
	Logos         []Fingerprint `json:"-"`
	Skipped       []DecodeError `json:"-"`
}

// StripLogos removes every image whose fingerprint repeats at least Threshold times.
// Images that cannot be decoded are neither fingerprinted nor removed.
func StripLogos(doc Document, opts StripOptions) (*StripResult, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	scanned, skipped := scanImages(doc, opts.Hasher)

	fps := make([]Fingerprint, len(scanned))
	for i, s := range scanned {
		fps[i] = s.Fingerprint
	}
	logos := DetectDuplicates(fps, opts.Threshold)

	result := &StripResult{
		LogosDetected: logos.Len(),
		Logos:         logos.Sorted(),
		Skipped:       skipped,
	}
	for _, s := range scanned {
		if !logos.Contains(s.Fingerprint) {
			continue
		}
		if err := doc.DeleteImage(s.Ref); err != nil {
			logger.WithFields(logrus.Fields{
				"page":  s.Ref.Page + 1,
				"image": s.Ref.Name,
				"error": err,
			}).Warn("failed to remove logo instance")
			continue
		}
		result.ImagesRemoved++
	}

	logger.WithFields(logrus.Fields{
		"images":  len(scanned),
		"skipped": len(skipped),
		"logos":   result.LogosDetected,
		"removed": result.ImagesRemoved,
	}).Info("logo detection finished")
	return result, nil
}

// RemoveLogos runs open, strip and serialize over a PDF buffer.
// The input is returned unchanged when nothing was removed.
func RemoveLogos(data []byte, opts StripOptions) ([]byte, *StripResult, error) {
	if _, err := opts.withDefaults(); err != nil {
		return nil, nil, err
	}
	doc, err := OpenDocument(data)
	if err != nil {
		return nil, nil, err
	}
	result, err := StripLogos(doc, opts)
	if err != nil {
		return nil, nil, err
	}
	if result.ImagesRemoved == 0 {
		return data, result, nil
	}
	out, err := doc.Bytes()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to serialize cleaned document: %w", err)
	}
	return out, result, nil
}

// CleanResult holds both outputs of the logo removal pipeline.
type CleanResult struct {
	Cleaned         []byte
	Images          []byte
	LogosDetected   int
	ImagesRemoved   int
	ImagesExtracted int
}

// CleanDocument removes logos and renders the remaining images into a separate review document.
func CleanDocument(data []byte, opts StripOptions, layout Layout) (*CleanResult, error) {
	cleaned, stripped, err := RemoveLogos(data, opts)
	if err != nil {
		return nil, err
	}
	images, extracted, err := ExtractImages(cleaned, nil, layout)
	if err != nil {
		return nil, err
	}
	return &CleanResult{
		Cleaned:         cleaned,
		Images:          images,
		LogosDetected:   stripped.LogosDetected,
		ImagesRemoved:   stripped.ImagesRemoved,
		ImagesExtracted: extracted,
	}, nil
}
