package pdftext

import (
    "bytes"
    "fmt"

    "github.com/ledongthuc/pdf"
)

// Extract returns the plain text of each page of a PDF document, in
// page order. A page whose text cannot be decoded contributes an empty
// block instead of failing the whole document.
func Extract(doc []byte) (pages []string, err error) {
    // The underlying reader panics on some malformed files.
    defer func() {
        if rec := recover(); rec != nil {
            pages, err = nil, fmt.Errorf("pdf text: %v", rec)
        }
    }()

    r, err := pdf.NewReader(bytes.NewReader(doc), int64(len(doc)))
    if err != nil {
        return nil, fmt.Errorf("open pdf: %w", err)
    }
    total := r.NumPage()
    pages = make([]string, 0, total)
    for i := 1; i <= total; i++ {
        pg := r.Page(i)
        if pg.V.IsNull() {
            pages = append(pages, "")
            continue
        }
        text, err := pg.GetPlainText(nil)
        if err != nil {
            pages = append(pages, "")
            continue
        }
        pages = append(pages, text)
    }
    return pages, nil
}
