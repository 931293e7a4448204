package generator

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vanshika/orders/backend/internal/domain"
)

// WriteRequests serializes reqs as an indented JSON array to path, creating
// parent directories as needed.
func WriteRequests(reqs []domain.TransactionRequest, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	if err := EncodeRequests(file, reqs); err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	return nil
}

// EncodeRequests writes reqs as an indented JSON array.
func EncodeRequests(w io.Writer, reqs []domain.TransactionRequest) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(reqs)
}

// ReadRequests loads a JSON array of requests from path.
func ReadRequests(path string) ([]domain.TransactionRequest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var reqs []domain.TransactionRequest
	if err := json.Unmarshal(raw, &reqs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return reqs, nil
}
