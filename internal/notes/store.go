// Package notes persists the user's trade analysis log as an append-only
// CSV file, UTF-8 with byte-order mark so spreadsheet tools open it
// correctly.
package notes

import (
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/ThomasTsao0704/stock-analysis-app/internal/errors"
	"github.com/ThomasTsao0704/stock-analysis-app/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// header is the fixed column layout of the note log.
var header = []string{
	"日期", "股票代號", "股票名稱", "分析內容", "預判",
	"目標價", "停損價", "信心度", "策略標籤", "市場情緒", "備註", "參考指標",
}

const entryDateLayout = "2006-01-02"

// tagSeparator joins multi-value tag fields into one cell.
const tagSeparator = ", "

// Store is the append-only note log. The file on disk is the sole source of
// truth: Store keeps no in-memory copy between calls.
type Store struct {
	path     string
	validate *validator.Validate
	logger   *slog.Logger
	mu       sync.Mutex
}

// NewStore opens the note log at path, creating it with a header row when
// absent.
func NewStore(path string, logger *slog.Logger) (*Store, error) {
	s := &Store{
		path:     path,
		validate: validator.New(),
		logger:   logger.With(slog.String("component", "note_store")),
	}
	if err := s.ensureFile(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) ensureFile() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return apperrors.NewPersistenceError("create note log directory", err)
	}
	if err := s.writeAll(nil); err != nil {
		return err
	}
	s.logger.Info("created note log", slog.String("path", s.path))
	return nil
}

// Append validates note and appends it to the log. Existing rows are never
// touched; the file is replaced atomically so a crash mid-write cannot
// truncate the log.
func (s *Store) Append(note domain.AnalysisNote) error {
	if err := s.validate.Struct(note); err != nil {
		return apperrors.NewValidationError("invalid analysis note", err)
	}
	if note.EntryDate.IsZero() {
		note.EntryDate = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.readRows()
	if err != nil {
		return err
	}
	existing = append(existing, toRow(note))
	if err := s.writeAll(existing); err != nil {
		return err
	}

	s.logger.Info("note appended",
		slog.String("code", note.Code),
		slog.Int("total", len(existing)))
	return nil
}

// LoadAll returns every note in the log in file order.
func (s *Store) LoadAll() ([]domain.AnalysisNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows()
	if err != nil {
		return nil, err
	}

	notes := make([]domain.AnalysisNote, 0, len(rows))
	for _, row := range rows {
		notes = append(notes, fromRow(row))
	}
	return notes, nil
}

// readRows returns the data rows (header excluded).
func (s *Store) readRows() ([][]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperrors.NewPersistenceError("read note log", err)
	}
	text := strings.TrimPrefix(string(data), string(utf8BOM))

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewPersistenceError("parse note log", err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}

// writeAll rewrites the whole log (header plus rows) via a temp file and an
// atomic rename.
func (s *Store) writeAll(rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".notes-*.csv")
	if err != nil {
		return apperrors.NewPersistenceError("create temp note log", err)
	}
	tmpPath := tmp.Name()

	write := func() error {
		if _, err := tmp.Write(utf8BOM); err != nil {
			return err
		}
		w := csv.NewWriter(tmp)
		if err := w.Write(header); err != nil {
			return err
		}
		for _, row := range rows {
			if err := w.Write(row); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	}

	if err := write(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return apperrors.NewPersistenceError("write note log", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return apperrors.NewPersistenceError("close note log", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return apperrors.NewPersistenceError("replace note log", err)
	}
	return nil
}

func toRow(n domain.AnalysisNote) []string {
	return []string{
		n.EntryDate.Format(entryDateLayout),
		strings.ToUpper(n.Code),
		n.Name,
		n.Thesis,
		n.Prediction,
		formatOptional(n.TargetPrice),
		formatOptional(n.StopLoss),
		strconv.Itoa(n.Confidence),
		strings.Join(n.Tags, tagSeparator),
		string(n.Sentiment),
		n.Notes,
		strings.Join(n.Indicators, tagSeparator),
	}
}

func fromRow(row []string) domain.AnalysisNote {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	n := domain.AnalysisNote{
		Code:       cell(1),
		Name:       cell(2),
		Thesis:     cell(3),
		Prediction: cell(4),
		Sentiment:  domain.MarketSentiment(cell(9)),
		Notes:      cell(10),
	}
	if t, err := time.Parse(entryDateLayout, cell(0)); err == nil {
		n.EntryDate = t
	}
	n.TargetPrice = parseOptional(cell(5))
	n.StopLoss = parseOptional(cell(6))
	if c, err := strconv.Atoi(cell(7)); err == nil {
		n.Confidence = c
	}
	n.Tags = splitTags(cell(8))
	n.Indicators = splitTags(cell(11))
	return n
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func parseOptional(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
