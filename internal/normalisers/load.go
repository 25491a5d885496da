package normalisers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/houseplan-cli/internal/core/domain"
)

// LoadDocument reads a plan document from disk and detects its type.
func LoadDocument(path string) (domain.PlanDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.PlanDocument{}, fmt.Errorf("read %s: %w", path, err)
	}
	doc := domain.PlanDocument{
		Filename: filepath.Base(path),
		Data:     data,
	}
	doc.ContentType = DetectMIMEType(doc)
	return doc, nil
}
