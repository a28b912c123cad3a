package pdf

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/sirupsen/logrus"
)

var logger = logrus.WithField("pkg", "pdf")

func init() {
	// Keep pdfcpu from creating a config directory under $HOME.
	api.DisableConfigDir()
}

// newConfiguration returns the pdfcpu configuration used for every read.
func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// CPUDocument is a Document backed by an in-memory pdfcpu context.
type CPUDocument struct {
	ctx    *model.Context
	closed bool
}

// OpenDocument parses data into a mutable document.
func OpenDocument(data []byte) (*CPUDocument, error) {
	if err := checkHeader(data); err != nil {
		return nil, err
	}
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), newConfiguration())
	if err != nil {
		return nil, &InputError{Msg: "failed to read PDF", Err: fmt.Errorf("%w: %w", ErrInvalidDocument, err)}
	}
	return &CPUDocument{ctx: ctx}, nil
}

// checkHeader verifies the %PDF- marker appears within the first 1024 bytes.
func checkHeader(data []byte) error {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	if !bytes.Contains(head, []byte("%PDF-")) {
		return &InputError{Msg: "invalid PDF file: header does not match", Err: ErrInvalidDocument}
	}
	return nil
}

func (d *CPUDocument) PageCount() int {
	return d.ctx.PageCount
}

// PageImages returns the image XObjects invoked by the page content stream.
// Images listed in a shared resource dictionary but not drawn on this page are not included.
func (d *CPUDocument) PageImages(page int) ([]ImageRef, error) {
	if page < 0 || page >= d.ctx.PageCount {
		return nil, fmt.Errorf("page %d out of range (document has %d pages)", page+1, d.ctx.PageCount)
	}
	pageNr := page + 1

	pd, _, _, err := d.ctx.PageDict(pageNr, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load page %d: %w", pageNr, err)
	}
	if pd == nil {
		return nil, nil
	}

	content, err := d.pageContent(pd)
	if err != nil {
		return nil, fmt.Errorf("failed to read content of page %d: %w", pageNr, err)
	}
	names := invokedXObjects(content)
	if len(names) == 0 {
		return nil, nil
	}

	byName := d.pageImageObjects(pageNr)

	var refs []ImageRef
	for _, name := range names {
		obj, ok := byName[name]
		if !ok {
			// Form XObjects and other non-image resources.
			continue
		}
		ref := ImageRef{
			Page:  page,
			Index: len(refs),
			Name:  name,
			ObjNr: obj.objNr,
		}
		img, err := pdfcpu.ExtractImage(d.ctx, obj.dict, false, name, obj.objNr, false)
		switch {
		case err != nil:
			// The ref keeps its position; its empty data fails to decode later.
			logger.WithFields(logrus.Fields{"page": pageNr, "image": name, "error": err}).Warn("image extraction failed")
		case img == nil || img.Reader == nil:
			logger.WithFields(logrus.Fields{"page": pageNr, "image": name}).Debug("image format not extractable")
		default:
			ref.FileType = img.FileType
			data, rerr := io.ReadAll(img)
			if rerr != nil {
				logger.WithFields(logrus.Fields{"page": pageNr, "image": name, "error": rerr}).Debug("failed to read image data")
			}
			ref.Data = data
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

type imageObject struct {
	objNr int
	dict  *types.StreamDict
}

// pageImageObjects maps the resource names of a page's image XObjects to their objects.
// The lowest object number wins when a name is bound twice.
func (d *CPUDocument) pageImageObjects(pageNr int) map[string]imageObject {
	objNrs := pdfcpu.ImageObjNrs(d.ctx, pageNr)
	sort.Ints(objNrs)

	byName := map[string]imageObject{}
	for _, objNr := range objNrs {
		obj, ok := d.ctx.Optimize.ImageObjects[objNr]
		if !ok || obj == nil || obj.ImageDict == nil {
			continue
		}
		name := obj.ResourceNames[pageNr-1]
		if name == "" {
			continue
		}
		if _, dup := byName[name]; !dup {
			byName[name] = imageObject{objNr: objNr, dict: obj.ImageDict}
		}
	}
	return byName
}

// DeleteImage strips every invocation of ref from its page content and drops it from page-owned resources.
func (d *CPUDocument) DeleteImage(ref ImageRef) error {
	if d.closed {
		return ErrDocumentClosed
	}
	pageNr := ref.Page + 1
	if ref.Page < 0 || ref.Page >= d.ctx.PageCount {
		return fmt.Errorf("page %d out of range (document has %d pages)", pageNr, d.ctx.PageCount)
	}

	pd, _, _, err := d.ctx.PageDict(pageNr, false)
	if err != nil {
		return fmt.Errorf("failed to load page %d: %w", pageNr, err)
	}
	if pd == nil {
		return fmt.Errorf("page %d has no page dictionary", pageNr)
	}
	content, err := d.pageContent(pd)
	if err != nil {
		return fmt.Errorf("failed to read content of page %d: %w", pageNr, err)
	}

	updated, n := removeXObjectCalls(content, ref.Name)
	if n == 0 {
		return fmt.Errorf("image %s not found on page %d", ref.Name, pageNr)
	}

	sd, err := d.ctx.NewStreamDictForBuf(updated)
	if err != nil {
		return fmt.Errorf("failed to create content stream: %w", err)
	}
	if err := sd.Encode(); err != nil {
		return fmt.Errorf("failed to encode content stream: %w", err)
	}
	ir, err := d.ctx.IndRefForNewObject(*sd)
	if err != nil {
		return fmt.Errorf("failed to add content stream: %w", err)
	}
	pd["Contents"] = *ir

	d.pruneXObject(pd, ref.Name)
	return nil
}

// pruneXObject removes name from the page's resources. The resource dictionaries are copied
// first because they are often shared between pages.
func (d *CPUDocument) pruneXObject(pd types.Dict, name string) {
	o, found := pd.Find("Resources")
	if !found {
		// Inherited resources belong to the page tree; the content rewrite is enough.
		return
	}
	res, err := d.ctx.DereferenceDict(o)
	if err != nil || res == nil {
		return
	}
	xobjs, err := d.ctx.DereferenceDict(res["XObject"])
	if err != nil || xobjs == nil {
		return
	}
	if _, ok := xobjs[name]; !ok {
		return
	}

	newXObjs := types.Dict{}
	for k, v := range xobjs {
		if k != name {
			newXObjs[k] = v
		}
	}
	newRes := types.Dict{}
	for k, v := range res {
		newRes[k] = v
	}
	newRes["XObject"] = newXObjs
	pd["Resources"] = newRes
}

// pageContent returns the decoded, concatenated content streams of a page.
func (d *CPUDocument) pageContent(pd types.Dict) ([]byte, error) {
	o, found := pd.Find("Contents")
	if !found || o == nil {
		return nil, nil
	}
	o, err := d.ctx.Dereference(o)
	if err != nil {
		return nil, err
	}

	switch obj := o.(type) {
	case types.StreamDict:
		if err := obj.Decode(); err != nil {
			return nil, err
		}
		return obj.Content, nil
	case types.Array:
		var buf bytes.Buffer
		for _, e := range obj {
			eo, err := d.ctx.Dereference(e)
			if err != nil {
				return nil, err
			}
			sd, ok := eo.(types.StreamDict)
			if !ok {
				continue
			}
			if err := sd.Decode(); err != nil {
				return nil, err
			}
			buf.Write(sd.Content)
			buf.WriteByte('\n')
		}
		return buf.Bytes(), nil
	}
	return nil, nil
}

// Bytes serializes the document. The document is closed afterwards.
func (d *CPUDocument) Bytes() ([]byte, error) {
	if d.closed {
		return nil, ErrDocumentClosed
	}
	d.closed = true

	var buf bytes.Buffer
	if err := api.WriteContext(d.ctx, &buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}
