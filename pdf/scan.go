package pdf

import "github.com/sirupsen/logrus"

// scannedImage is a decoded and fingerprinted image. Pixel data is not retained.
type scannedImage struct {
	Ref         ImageRef
	Fingerprint Fingerprint
	Width       int
	Height      int
}

// scanImages fingerprints every image of doc in page order.
// Images that fail to decode are reported and left out of the result.
func scanImages(doc Document, hasher Hasher) ([]scannedImage, []DecodeError) {
	var (
		scanned []scannedImage
		skipped []DecodeError
	)
	for page := 0; page < doc.PageCount(); page++ {
		refs, err := doc.PageImages(page)
		if err != nil {
			logger.WithFields(logrus.Fields{"page": page + 1, "error": err}).Warn("skipping page: cannot list images")
			continue
		}
		for _, ref := range refs {
			fp, w, h, err := fingerprintRef(ref, hasher)
			if err != nil {
				logger.WithFields(logrus.Fields{"page": page + 1, "image": ref.Name, "error": err}).Debug("skipping image")
				skipped = append(skipped, DecodeError{Page: ref.Page, Index: ref.Index, Name: ref.Name, Err: err})
				continue
			}
			ref.Data = nil
			scanned = append(scanned, scannedImage{Ref: ref, Fingerprint: fp, Width: w, Height: h})
		}
	}
	return scanned, skipped
}

func fingerprintRef(ref ImageRef, hasher Hasher) (Fingerprint, int, int, error) {
	img, _, err := DecodeImage(ref.Data)
	if err != nil {
		return 0, 0, 0, err
	}
	fp, err := hasher.Hash(img)
	if err != nil {
		return 0, 0, 0, err
	}
	b := img.Bounds()
	return fp, b.Dx(), b.Dy(), nil
}
