package fs

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bft-labs/herald/internal/domain"
)

// Default column names of the recipient source.
const (
	DefaultPhoneColumn   = "telefone"
	DefaultMessageColumn = "mensagem"
)

// RecipientCSV implements ports.RecipientSource for a CSV file with a header row.
type RecipientCSV struct {
	path          string
	phoneColumn   string
	messageColumn string
}

// NewRecipientCSV creates a source reading path. Empty column names fall
// back to the defaults.
func NewRecipientCSV(path, phoneColumn, messageColumn string) *RecipientCSV {
	if phoneColumn == "" {
		phoneColumn = DefaultPhoneColumn
	}
	if messageColumn == "" {
		messageColumn = DefaultMessageColumn
	}
	return &RecipientCSV{
		path:          path,
		phoneColumn:   phoneColumn,
		messageColumn: messageColumn,
	}
}

// Read loads every row. Rows with an empty phone are skipped.
func (s *RecipientCSV) Read(ctx context.Context) ([]domain.Recipient, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open recipients: %w", err)
	}
	defer f.Close()
	return s.decode(f)
}

func (s *RecipientCSV) decode(r io.Reader) ([]domain.Recipient, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s is empty", domain.ErrMissingRequiredColumn, s.path)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	phoneIdx, msgIdx := -1, -1
	for i, h := range header {
		switch h {
		case s.phoneColumn:
			phoneIdx = i
		case s.messageColumn:
			msgIdx = i
		}
	}
	if phoneIdx < 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrMissingRequiredColumn, s.phoneColumn)
	}
	if msgIdx < 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrMissingRequiredColumn, s.messageColumn)
	}

	var recipients []domain.Recipient
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}

		fields := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(rec) {
				fields[h] = rec[i]
			}
		}
		phone := domain.NormalizePhone(fields[s.phoneColumn])
		if phone == "" {
			continue
		}
		recipients = append(recipients, domain.Recipient{
			Phone:        phone,
			MessageValue: fields[s.messageColumn],
			Fields:       fields,
		})
	}
	return recipients, nil
}
