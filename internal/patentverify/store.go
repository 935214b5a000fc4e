package patentverify

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

const resultFileName = "verified_patents.json"

// ResultStore owns the per-compound result files under a results root.
// Appends are read-modify-write with no locking; a run is the only writer.
type ResultStore struct {
	root string
}

func NewResultStore(root string) *ResultStore {
	if strings.TrimSpace(root) == "" {
		root = DefaultResultsDir
	}
	return &ResultStore{root: root}
}

// OutputPath resolves the result file for a compound, with the compound
// name reduced to a filesystem-safe directory segment.
func (s *ResultStore) OutputPath(compound string) string {
	return filepath.Join(s.root, sanitizeCompound(compound), resultFileName)
}

// Load reads the current result file for a compound. A missing or corrupt
// file yields a fresh file seeded with the compound name.
func (s *ResultStore) Load(compound string) ResultFile {
	fresh := ResultFile{Compound: compound, VerifiedPatents: []VerifiedPatent{}}
	blob, err := os.ReadFile(s.OutputPath(compound))
	if err != nil {
		return fresh
	}
	var file ResultFile
	if err := json.Unmarshal(blob, &file); err != nil {
		return fresh
	}
	if file.VerifiedPatents == nil {
		file.VerifiedPatents = []VerifiedPatent{}
	}
	return file
}

// Append adds a record to the compound's result file unless a record with
// the same patent_id is already present, then rewrites the whole file.
// Duplicate appends are a no-op, never an overwrite.
func (s *ResultStore) Append(compound string, rec VerifiedPatent) error {
	if strings.TrimSpace(rec.PatentID) == "" {
		return errors.New("patent_id is required")
	}
	file := s.Load(compound)
	for _, existing := range file.VerifiedPatents {
		if existing.PatentID == rec.PatentID {
			return nil
		}
	}
	file.VerifiedPatents = append(file.VerifiedPatents, rec)
	return s.write(compound, file)
}

func (s *ResultStore) write(compound string, file ResultFile) error {
	path := s.OutputPath(compound)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	// Titles must survive verbatim, including ampersands and angle brackets.
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(file); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func sanitizeCompound(compound string) string {
	var b strings.Builder
	for _, r := range compound {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune(r)
		}
	}
	safe := strings.TrimRight(b.String(), " ")
	return strings.ReplaceAll(safe, " ", "_")
}
