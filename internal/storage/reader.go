package storage

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"hnscrape/internal/domain"
)

// LoadRecords reads one method's records CSV back into domain types.
func (s *Store) LoadRecords(method domain.Method) ([]domain.PostRecord, error) {
	f, err := os.Open(s.recordsPath(method))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(stripBOM(f))
	var records []domain.PostRecord
	line := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s records: %w", method, err)
		}
		line++
		if line == 1 {
			continue // header
		}
		if len(row) < len(recordHeader) {
			continue
		}
		rec, err := parseRecordRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d of %s records: %w", line, method, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRecordRow(row []string) (domain.PostRecord, error) {
	postID, err := strconv.Atoi(row[1])
	if err != nil {
		return domain.PostRecord{}, fmt.Errorf("post_id: %w", err)
	}
	points, err := strconv.Atoi(row[4])
	if err != nil {
		return domain.PostRecord{}, fmt.Errorf("points: %w", err)
	}
	comments, err := strconv.Atoi(row[5])
	if err != nil {
		return domain.PostRecord{}, fmt.Errorf("comment_count: %w", err)
	}
	fetchedAt, err := time.Parse(time.RFC3339Nano, row[9])
	if err != nil {
		return domain.PostRecord{}, fmt.Errorf("fetched_at: %w", err)
	}
	return domain.PostRecord{
		Method:             domain.Method(row[0]),
		PostID:             postID,
		Title:              row[2],
		URL:                row[3],
		Points:             points,
		CommentCount:       comments,
		Author:             row[6],
		FirstComment:       row[7],
		FirstCommentAuthor: row[8],
		FetchedAt:          fetchedAt,
	}, nil
}

// LoadEvents reads one method's telemetry JSON.
func (s *Store) LoadEvents(method domain.Method) ([]domain.RequestEvent, error) {
	buf, err := os.ReadFile(s.eventsPath(method))
	if err != nil {
		return nil, err
	}
	var events []domain.RequestEvent
	if err := json.Unmarshal(buf, &events); err != nil {
		return nil, fmt.Errorf("decode %s events: %w", method, err)
	}
	return events, nil
}

// LoadRunTimes reads the persisted per-method wall-clock windows, keyed by
// method, in file order. The window is the one aggregate the report cannot
// rederive from the event list alone.
func (s *Store) LoadRunTimes() (map[domain.Method]float64, []domain.Method, error) {
	f, err := os.Open(s.metricsPath())
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(stripBOM(f))
	times := make(map[domain.Method]float64)
	var order []domain.Method
	line := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read metrics: %w", err)
		}
		line++
		if line == 1 || len(row) < 2 {
			continue
		}
		total, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("metrics row %d: %w", line, err)
		}
		m := domain.Method(row[0])
		times[m] = total
		order = append(order, m)
	}
	return times, order, nil
}

// stripBOM drops a UTF-8 byte order mark if the file starts with one.
func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	rn, _, err := br.ReadRune()
	if err != nil {
		return br
	}
	if rn != '\uFEFF' {
		br.UnreadRune()
	}
	return br
}
