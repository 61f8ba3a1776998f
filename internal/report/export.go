package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/farmkeeper/internal/models"
	"github.com/dmitrijs2005/farmkeeper/internal/store"
)

// File is an in-memory export ready to be sent as a document.
type File struct {
	Name    string
	Content []byte
}

func exportName(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s_%s.%s", prefix, now.Format("20060102_150405"), uuid.NewString()[:8], ext)
}

// ExportCSV renders the farm table as a CSV file. Credentials are never
// included.
func ExportCSV(agg *store.Aggregate, now time.Time) (*File, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	head := []string{"name", "owner_email", "members", "start_date", "renewal_day", "price", "chat_id"}
	if err := w.Write(head); err != nil {
		return nil, fmt.Errorf("csv export: %w", err)
	}
	for _, f := range agg.Farms {
		row := []string{
			f.Name,
			f.OwnerEmail,
			strings.Join(f.Members, ";"),
			f.StartDate,
			strconv.Itoa(f.RenewalDay),
			strconv.FormatInt(f.Price, 10),
			strconv.FormatInt(f.ChatID, 10),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("csv export: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv export: %w", err)
	}
	return &File{Name: exportName("farms", "csv", now), Content: buf.Bytes()}, nil
}

// BackupJSON renders a timestamped snapshot of the farm data. Login entries
// stay in their encrypted form, so the backup is safe to store as-is.
func BackupJSON(agg *store.Aggregate, now time.Time) (*File, error) {
	snapshot := struct {
		ExportedAt string         `json:"exported_at"`
		Farms      []*models.Farm `json:"farms"`
	}{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Farms:      agg.Farms,
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json backup: %w", err)
	}
	return &File{Name: exportName("backup", "json", now), Content: data}, nil
}
