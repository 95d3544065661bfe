package docx

import (
	"archive/zip"
	"bytes"
	"io"

	"docustream.dev/docustream/model"
)

// Bytes serializes the package. Entry order is preserved; modified XML parts
// and replaced media are rewritten, everything else is copied raw.
func (d *Document) Bytes() ([]byte, error) {
	dirty := make(map[string]*Part)
	for _, p := range d.parts() {
		if p.dirty {
			dirty[p.Name] = p
		}
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range d.files {
		var err error
		if p, ok := dirty[f.Name]; ok {
			var data []byte
			if data, err = p.xml.WriteToBytes(); err == nil {
				err = writeEntry(zw, f, data)
			}
		} else if data, ok := d.replaced[f.Name]; ok {
			err = writeEntry(zw, f, data)
		} else {
			err = copyEntry(zw, f)
		}
		if err != nil {
			return nil, model.WrapError(model.KindOutputPersistenceFailure, "write "+f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, model.WrapError(model.KindOutputPersistenceFailure, "close package", err)
	}
	return buf.Bytes(), nil
}

func writeEntry(zw *zip.Writer, f *zip.File, data []byte) error {
	hdr := &zip.FileHeader{
		Name:     f.Name,
		Method:   f.Method,
		Modified: f.Modified,
	}
	if hdr.Method != zip.Store {
		hdr.Method = zip.Deflate
	}
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func copyEntry(zw *zip.Writer, f *zip.File) error {
	hdr := f.FileHeader
	w, err := zw.CreateRaw(&hdr)
	if err != nil {
		return err
	}
	r, err := f.OpenRaw()
	if err != nil {
		return err
	}
	_, err = io.Copy(w, r)
	return err
}
