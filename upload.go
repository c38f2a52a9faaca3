package portalclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"sort"
)

// FormData is a multipart form body for Upload. Fields and files are written
// in insertion order.
type FormData struct {
	fields []formField
	files  []formFile
}

type formField struct {
	name, value string
}

type formFile struct {
	field, filename string
	content         io.Reader
}

// NewFormData returns a form with the given plain fields, written in key order.
func NewFormData(fields map[string]string) *FormData {
	f := &FormData{}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		f.Set(k, fields[k])
	}
	return f
}

// Set adds a plain field.
func (f *FormData) Set(name, value string) *FormData {
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

// AddFile adds a file part with the given content.
func (f *FormData) AddFile(field, filename string, content []byte) *FormData {
	return f.AddReader(field, filename, bytes.NewReader(content))
}

// AddReader adds a file part read from r when the request is built.
func (f *FormData) AddReader(field, filename string, r io.Reader) *FormData {
	f.files = append(f.files, formFile{field: field, filename: filename, content: r})
	return f
}

// encode writes the form and returns the body with its Content-Type,
// including the boundary.
func (f *FormData) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, field := range f.fields {
		if err := w.WriteField(field.name, field.value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %q: %w", field.name, err)
		}
	}
	for _, file := range f.files {
		part, err := w.CreateFormFile(file.field, file.filename)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form file %q: %w", file.field, err)
		}
		if _, err := io.Copy(part, file.content); err != nil {
			return nil, "", fmt.Errorf("failed to write form file %q: %w", file.field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
