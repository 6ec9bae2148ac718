package bible

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
)

// Chapter is the ordered list of verse lines of one chapter.
type Chapter []string

type Book struct {
	Abbrev   string    `json:"abbrev"`
	Chapters []Chapter `json:"chapters"`
	Name     string    `json:"name"`
}

// Document is a whole translation as published upstream: an ordered array of
// books. It is never mutated after Decode returns.
type Document struct {
	Books []Book

	digest string
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode reads a complete JSON document. The upstream files start with a
// UTF-8 byte order mark which encoding/json rejects, so it is stripped.
func Decode(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("read document: %w", err)
	}
	return Parse(data)
}

// Parse decodes an in-memory document.
func Parse(data []byte) (Document, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return Document{}, errors.New("decode document: empty payload")
	}

	var books []Book
	if err := json.Unmarshal(data, &books); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}

	sum := blake3.Sum256(data)
	return Document{
		Books:  books,
		digest: hex.EncodeToString(sum[:]),
	}, nil
}

// Digest is the hex blake3 sum of the decoded payload, or "" for documents
// built in memory.
func (d Document) Digest() string {
	return d.digest
}

// LineCount returns the number of verse lines across every book.
func (d Document) LineCount() int {
	n := 0
	for _, b := range d.Books {
		for _, c := range b.Chapters {
			n += len(c)
		}
	}
	return n
}
